package item

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cambridge-collection/cudl-pack/internal/namespace"
)

// typed is the part of a resource or data entry common to every type.
type typed struct {
	Type  string   `json:"@type"`
	Roles []string `json:"@role,omitempty"`
}

// Resource is a typed page resource. Type-specific fields are kept in their
// JSON form and decoded on demand.
type Resource struct {
	Type string
	raw  json.RawMessage
}

// NewResource builds a Resource of the given type from type-specific fields.
func NewResource(typ string, fields map[string]any) (Resource, error) {
	obj := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		obj[k] = v
	}
	obj["@type"] = typ
	raw, err := json.Marshal(obj)
	if err != nil {
		return Resource{}, fmt.Errorf("failed to encode resource: %w", err)
	}
	return Resource{Type: typ, raw: raw}, nil
}

// Decode unmarshals the resource's fields into v.
func (r Resource) Decode(v any) error {
	if len(r.raw) == 0 {
		return errors.New("resource has no content")
	}
	return json.Unmarshal(r.raw, v)
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	var t typed
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("invalid page resource: %w", err)
	}
	r.Type = t.Type
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (r Resource) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return json.Marshal(typed{Type: r.Type})
	}
	return r.raw, nil
}

// ImageResource is a page resource of type cdl-page:image.
type ImageResource struct {
	ImageType string `json:"imageType"`
	Image     struct {
		ID string `json:"@id"`
	} `json:"image"`
}

// IIIF is the ImageType of images served by a IIIF image server.
const IIIF = "iiif"

// AsImage decodes r as an ImageResource if its expanded type is the page
// image type.
func (r Resource) AsImage(ns *namespace.Namespace) (ImageResource, bool, error) {
	var img ImageResource
	if ns.Expand(r.Type) != namespace.PageImage {
		return img, false, nil
	}
	if err := r.Decode(&img); err != nil {
		return img, false, fmt.Errorf("invalid image resource: %w", err)
	}
	return img, true, nil
}

// Data is an item-level typed data entry carrying arbitrary properties.
type Data struct {
	Type  string
	Roles []string
	raw   json.RawMessage
}

// NewData builds a Data entry of the given type and roles.
func NewData(typ string, roles []string, fields map[string]any) (Data, error) {
	obj := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		obj[k] = v
	}
	obj["@type"] = typ
	if len(roles) > 0 {
		obj["@role"] = roles
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return Data{}, fmt.Errorf("failed to encode data: %w", err)
	}
	return Data{Type: typ, Roles: roles, raw: raw}, nil
}

// Decode unmarshals the data entry's properties into v.
func (d Data) Decode(v any) error {
	if len(d.raw) == 0 {
		return errors.New("data has no content")
	}
	return json.Unmarshal(d.raw, v)
}

func (d *Data) UnmarshalJSON(data []byte) error {
	var t typed
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("invalid item data: %w", err)
	}
	d.Type = t.Type
	d.Roles = t.Roles
	d.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (d Data) MarshalJSON() ([]byte, error) {
	if len(d.raw) == 0 {
		return json.Marshal(typed{Type: d.Type, Roles: d.Roles})
	}
	return d.raw, nil
}

// LinkData is item data of type cdl-data:link.
type LinkData struct {
	Href struct {
		ID string `json:"@id"`
	} `json:"href"`
}

// PropertiesData is item data of type cdl-data:properties.
type PropertiesData struct {
	Properties map[string]any `json:"properties"`
}
