// Package output renders command results as JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format defines the output format for CLI commands.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultFormat is the default output format.
var DefaultFormat = FormatJSON

// globalFormat is set by the root command's --output flag.
var globalFormat = DefaultFormat

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// SetFormat sets the global output format.
func SetFormat(f Format) {
	globalFormat = f
}

// GetFormat returns the current global output format.
func GetFormat() Format {
	return globalFormat
}

// Output writes data to stdout in the configured format.
func Output(data any) error {
	return To(os.Stdout, globalFormat, "  ", data)
}

// To writes data to w in the given format. indent applies to JSON output;
// an empty indent writes compact JSON.
//
// YAML output is derived from the JSON encoding of data, so JSON field names
// and custom JSON marshalling apply to both formats.
func To(w io.Writer, format Format, indent string, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", indent)
		return enc.Encode(data)
	case FormatYAML:
		generic, err := toGeneric(data)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// FromJSON writes an already-encoded JSON document to w in the given
// format. JSON input is written unchanged.
func FromJSON(w io.Writer, format Format, data []byte) error {
	switch format {
	case FormatJSON:
		if _, err := w.Write(data); err != nil {
			return err
		}
		_, err := w.Write([]byte("\n"))
		return err
	case FormatYAML:
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func toGeneric(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}
