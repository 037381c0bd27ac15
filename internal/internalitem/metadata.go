package internalitem

import (
	"encoding/json"
	"fmt"
)

// topLevelKeys are the JSON keys of TopLevelProperties. Metadata entries may
// not use them.
var topLevelKeys = map[string]bool{
	"ID":                   true,
	"thumbnailUrl":         true,
	"thumbnailOrientation": true,
	"displayImageRights":   true,
	"downloadImageRights":  true,
	"imageReproPageURL":    true,
	"docAuthority":         true,
	"type":                 true,
	"manuscript":           true,
	"itemReferences":       true,
}

// IsTopLevelKey reports whether key is reserved for a top-level property of a
// descriptive metadata section.
func IsTopLevelKey(key string) bool {
	return topLevelKeys[key]
}

// ItemReference refers to another item.
type ItemReference struct {
	ID string `json:"ID"`
}

// TopLevelProperties are the fixed properties of a descriptive metadata
// section.
type TopLevelProperties struct {
	ID                   string          `json:"ID"`
	ThumbnailURL         string          `json:"thumbnailUrl,omitempty"`
	ThumbnailOrientation Orientation     `json:"thumbnailOrientation,omitempty"`
	DisplayImageRights   string          `json:"displayImageRights,omitempty"`
	DownloadImageRights  string          `json:"downloadImageRights,omitempty"`
	ImageReproPageURL    string          `json:"imageReproPageURL,omitempty"`
	DocAuthority         string          `json:"docAuthority,omitempty"`
	Type                 string          `json:"type,omitempty"`
	Manuscript           *bool           `json:"manuscript,omitempty"`
	ItemReferences       []ItemReference `json:"itemReferences,omitempty"`
}

// DescriptiveMetadataSection is the flattened form of one item description.
//
// In JSON the top-level properties and the metadata entries share a single
// object. Top-level properties win when both define a key.
type DescriptiveMetadataSection struct {
	TopLevelProperties

	// Metadata values are usually DisplayableMetadata, but may be any value
	// that encodes as a JSON object.
	Metadata map[string]any
}

func (s DescriptiveMetadataSection) MarshalJSON() ([]byte, error) {
	top, err := json.Marshal(s.TopLevelProperties)
	if err != nil {
		return nil, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(top, &merged); err != nil {
		return nil, err
	}

	for key, value := range s.Metadata {
		if _, exists := merged[key]; exists {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata %q: %w", key, err)
		}
		merged[key] = raw
	}
	return json.Marshal(merged)
}

func (s *DescriptiveMetadataSection) UnmarshalJSON(data []byte) error {
	var top TopLevelProperties
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	metadata := make(map[string]any, len(all))
	for key, value := range all {
		if !IsTopLevelKey(key) {
			metadata[key] = value
		}
	}
	*s = DescriptiveMetadataSection{TopLevelProperties: top, Metadata: metadata}
	return nil
}

// DisplayForm is one value of a multi-valued DisplayableMetadata.
type DisplayForm struct {
	DisplayForm string `json:"displayForm"`
}

// DisplayableMetadata is a labelled metadata value shown to users. It holds
// either a single DisplayForm or a list of Values.
type DisplayableMetadata struct {
	Display     bool
	Seq         int
	Label       string
	DisplayForm string
	Values      []DisplayForm
	Multiple    bool
	LinkType    string
}

// SingleValue returns displayable metadata holding one value.
func SingleValue(seq int, label, value string) DisplayableMetadata {
	return DisplayableMetadata{Display: true, Seq: seq, Label: label, DisplayForm: value}
}

// MultipleValues returns displayable metadata holding a list of values.
func MultipleValues(seq int, label string, values []string) DisplayableMetadata {
	forms := make([]DisplayForm, len(values))
	for i, v := range values {
		forms[i] = DisplayForm{DisplayForm: v}
	}
	return DisplayableMetadata{Display: true, Seq: seq, Label: label, Values: forms, Multiple: true}
}

func (m DisplayableMetadata) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"display": m.Display,
		"seq":     m.Seq,
		"label":   m.Label,
	}
	if m.Multiple {
		values := m.Values
		if values == nil {
			values = []DisplayForm{}
		}
		out["value"] = values
	} else {
		out["displayForm"] = m.DisplayForm
	}
	if m.LinkType != "" {
		out["linktype"] = m.LinkType
	}
	return json.Marshal(out)
}
