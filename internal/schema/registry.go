// Package schema validates parsed JSON documents against the item schemas.
package schema

import (
	"embed"
	"fmt"

	"github.com/cambridge-collection/cudl-pack/internal/namespace"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema describes one of the embedded JSON Schemas.
type Schema struct {
	Name string // Short name used in error messages (e.g., "item")
	ID   string // The schema's $id
	File string // File name under schemas/
}

// registry holds the known schemas. Order is significant only for All.
var registry = []Schema{
	{Name: "item", ID: namespace.PackageItemSchema, File: "item.json"},
	{Name: "internal-item", ID: namespace.InternalItemSchema, File: "internal-item.json"},
}

// Names of the embedded schemas.
const (
	Item         = "item"
	InternalItem = "internal-item"
)

// All returns all known schemas in registration order.
func All() []Schema {
	schemas := make([]Schema, len(registry))
	copy(schemas, registry)
	return schemas
}

// Get returns a single schema by name.
func Get(name string) (*Schema, error) {
	for _, s := range registry {
		if s.Name == name {
			s := s
			return &s, nil
		}
	}
	return nil, fmt.Errorf("schema not found: %s", name)
}

// Source returns the raw JSON of a schema.
func (s Schema) Source() ([]byte, error) {
	content, err := schemaFS.ReadFile("schemas/" + s.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", s.Name, err)
	}
	return content, nil
}
