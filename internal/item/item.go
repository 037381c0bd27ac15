// Package item models package item documents: the externally authored
// description of a digitised library object.
package item

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cambridge-collection/cudl-pack/internal/namespace"
)

// Sentinel errors for the item package.
var (
	// ErrAmbiguousNamespace is returned when @namespace is neither a reference
	// string nor a map of CURIE prefix to URI prefix.
	ErrAmbiguousNamespace = errors.New("@namespace must be a reference string or a map of prefix to URI")

	// ErrInvalidPageReference is returned for page references that are
	// neither a page ID nor true.
	ErrInvalidPageReference = errors.New("page reference must be a page ID or true")

	// ErrInvalidAttributeValue is returned for attribute values that are
	// neither a string nor a list of strings.
	ErrInvalidAttributeValue = errors.New("attribute value must be a string or a list of strings")
)

// Item is a package item document.
type Item struct {
	Type         string                        `json:"@type,omitempty"`
	Namespace    *NamespaceDecl                `json:"@namespace,omitempty"`
	Pages        map[string]Page               `json:"pages"`
	Descriptions map[string]DescriptionSection `json:"descriptions"`
	Data         []Data                        `json:"data,omitempty"`
}

// MainDescription is the ID of the description every item must have.
const MainDescription = "main"

// NamespaceDecl is an item's @namespace: either a reference to a namespace
// document or an inline map.
type NamespaceDecl struct {
	Ref    string
	Inline namespace.Map
}

// InlineNamespace returns a declaration holding m.
func InlineNamespace(m namespace.Map) *NamespaceDecl {
	return &NamespaceDecl{Inline: m}
}

// NamespaceReference returns a declaration referring to ref.
func NamespaceReference(ref string) *NamespaceDecl {
	return &NamespaceDecl{Ref: ref}
}

// IsReference reports whether the declaration refers to an external document.
func (d *NamespaceDecl) IsReference() bool {
	return d != nil && d.Ref != ""
}

func (d *NamespaceDecl) UnmarshalJSON(data []byte) error {
	var ref string
	if err := json.Unmarshal(data, &ref); err == nil {
		if ref == "" {
			return fmt.Errorf("%w: empty reference", ErrAmbiguousNamespace)
		}
		*d = NamespaceDecl{Ref: ref}
		return nil
	}

	var m namespace.Map
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return fmt.Errorf("%w: %s", ErrAmbiguousNamespace, truncate(data))
	}
	*d = NamespaceDecl{Inline: m}
	return nil
}

func (d NamespaceDecl) MarshalJSON() ([]byte, error) {
	if d.Ref != "" {
		return json.Marshal(d.Ref)
	}
	if d.Inline == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.Inline)
}

// Page is a single page of an item.
type Page struct {
	Label     string     `json:"label"`
	Order     *string    `json:"order,omitempty"`
	Resources []Resource `json:"resources,omitempty"`
}

// PageReference identifies a page by ID, or is the boundary sentinel meaning
// the first (or last) page of the item.
type PageReference struct {
	id       string
	boundary bool
}

// Boundary is the reference to the first or last page of the item, depending
// on which end of a range it is used for.
var Boundary = PageReference{boundary: true}

// PageID returns a reference to the page with the given ID.
func PageID(id string) PageReference {
	return PageReference{id: id}
}

// IsBoundary reports whether r is the boundary sentinel.
func (r PageReference) IsBoundary() bool {
	return r.boundary
}

// ID returns the referenced page ID, or "" for the boundary sentinel.
func (r PageReference) ID() string {
	return r.id
}

// String renders the reference as it appears in a document.
func (r PageReference) String() string {
	if r.boundary {
		return "true"
	}
	return r.id
}

func (r *PageReference) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if !b {
			return fmt.Errorf("%w: false", ErrInvalidPageReference)
		}
		*r = Boundary
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil || id == "" {
		return fmt.Errorf("%w: %s", ErrInvalidPageReference, truncate(data))
	}
	*r = PageID(id)
	return nil
}

func (r PageReference) MarshalJSON() ([]byte, error) {
	if r.boundary {
		return []byte("true"), nil
	}
	return json.Marshal(r.id)
}

// PageRange is the span of pages a description covers.
type PageRange struct {
	FirstPage PageReference `json:"firstPage"`
	LastPage  PageReference `json:"lastPage"`
}

// DescriptionSection describes all or part of an item.
type DescriptionSection struct {
	Coverage   PageRange                       `json:"coverage"`
	Attributes map[string]DescriptionAttribute `json:"attributes,omitempty"`
}

// DescriptionAttribute is a single labelled descriptive value.
type DescriptionAttribute struct {
	Label string         `json:"label"`
	Value AttributeValue `json:"value"`
	Order *string        `json:"order,omitempty"`
}

// AttributeValue is either a single string or a list of strings.
type AttributeValue struct {
	scalar string
	list   []string
	isList bool
}

// Scalar returns a single-valued AttributeValue.
func Scalar(s string) AttributeValue {
	return AttributeValue{scalar: s}
}

// List returns a list-valued AttributeValue.
func List(values ...string) AttributeValue {
	l := make([]string, len(values))
	copy(l, values)
	return AttributeValue{list: l, isList: true}
}

// IsList reports whether the value is list-typed.
func (v AttributeValue) IsList() bool {
	return v.isList
}

// String returns a scalar value, or "" for a list.
func (v AttributeValue) String() string {
	return v.scalar
}

// Values returns the list elements, or a one-element list for a scalar.
func (v AttributeValue) Values() []string {
	if !v.isList {
		return []string{v.scalar}
	}
	l := make([]string, len(v.list))
	copy(l, v.list)
	return l
}

// First returns the scalar value or the first list element.
func (v AttributeValue) First() (string, bool) {
	if !v.isList {
		return v.scalar, true
	}
	if len(v.list) == 0 {
		return "", false
	}
	return v.list[0], true
}

func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Scalar(s)
		return nil
	}
	var l []string
	if err := json.Unmarshal(data, &l); err != nil || l == nil {
		return fmt.Errorf("%w: %s", ErrInvalidAttributeValue, truncate(data))
	}
	*v = AttributeValue{list: l, isList: true}
	return nil
}

func (v AttributeValue) MarshalJSON() ([]byte, error) {
	if v.isList {
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return json.Marshal(v.scalar)
}

// truncate shortens raw JSON for use in error messages.
func truncate(data []byte) string {
	const max = 80
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
