package internalitem

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cambridge-collection/cudl-pack/internal/schema"
)

// GenerateOptions control Generate.
type GenerateOptions struct {
	// SkipValidation disables checking the result against the internal item
	// schema.
	SkipValidation bool

	// Indent is used for each indentation level. Output is compact when empty.
	Indent string
}

// Generate serialises it as JSON, validating the result unless disabled.
func Generate(it *Item, opts GenerateOptions) ([]byte, error) {
	out := *it
	if out.DescriptiveMetadata == nil {
		out.DescriptiveMetadata = []DescriptiveMetadataSection{}
	}
	if out.Pages == nil {
		out.Pages = []Page{}
	}
	if out.LogicalStructures == nil {
		out.LogicalStructures = []LogicalStructureNode{}
	}

	data, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode internal item: %w", err)
	}

	if !opts.SkipValidation {
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to re-read internal item: %w", err)
		}
		if err := schema.ValidateInternalItem(doc, schema.Options{Input: "generated internal item"}); err != nil {
			return nil, err
		}
	}

	if opts.Indent == "" {
		return data, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", opts.Indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse decodes and validates an internal item JSON document.
func Parse(data []byte, opts schema.Options) (*Item, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse internal item JSON: %w", err)
	}
	if err := schema.ValidateInternalItem(doc, opts); err != nil {
		return nil, err
	}

	var it Item
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("failed to decode internal item: %w", err)
	}
	return &it, nil
}
