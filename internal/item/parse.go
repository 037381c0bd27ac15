package item

import (
	"encoding/json"
	"fmt"

	"github.com/cambridge-collection/cudl-pack/internal/schema"
)

// Parse decodes and validates a package item JSON document.
func Parse(data []byte, opts schema.Options) (*Item, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse item JSON: %w", err)
	}
	if err := schema.ValidateItem(doc, opts); err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode unmarshals a package item without schema validation. Structural
// errors in polymorphic fields (such as an ambiguous @namespace) are still
// reported.
func Decode(data []byte) (*Item, error) {
	var it Item
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}
	return &it, nil
}

// Generate serialises it as JSON.
func Generate(it *Item) ([]byte, error) {
	return json.Marshal(it)
}
