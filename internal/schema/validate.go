package schema

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidDocument is matched by every *ValidationError.
var ErrInvalidDocument = errors.New("document does not match schema")

// Options control how validation failures are reported.
type Options struct {
	// Input describes the thing being validated, e.g. the file it came from.
	// Defaults to "input".
	Input string

	// Terse omits the schema keyword location from each violation and joins
	// violations onto a single line.
	Terse bool
}

// Violation is a single schema rule that the document breaks.
type Violation struct {
	InstancePath string // JSON pointer into the document
	SchemaPath   string // keyword location in the schema
	Message      string
}

// ValidationError reports all violations found in a document.
type ValidationError struct {
	Input      string
	Schema     Schema
	Violations []Violation
	Terse      bool
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msg := fmt.Sprintf("%s%s %s", e.Schema.Name, v.InstancePath, v.Message)
		if !e.Terse {
			msg = fmt.Sprintf("%s (%s)", msg, v.SchemaPath)
		}
		lines[i] = msg
	}

	if e.Terse {
		return fmt.Sprintf("%s does not match the %s schema: %s", e.Input, e.Schema.Name, strings.Join(lines, "; "))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s does not match the %s schema:", e.Input, e.Schema.ID)
	for _, l := range lines {
		sb.WriteString("\n  - ")
		sb.WriteString(l)
	}
	return sb.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// compiled caches compiled schemas by name. Schemas are embedded, so
// compilation either always succeeds or always fails.
var compiled sync.Map

type compileResult struct {
	schema *jsonschema.Schema
	err    error
}

// compile returns the compiled form of s.
func compile(s Schema) (*jsonschema.Schema, error) {
	if r, ok := compiled.Load(s.Name); ok {
		res := r.(compileResult)
		return res.schema, res.err
	}

	var res compileResult
	res.schema, res.err = compileSource(s)
	compiled.Store(s.Name, res)
	return res.schema, res.err
}

func compileSource(s Schema) (*jsonschema.Schema, error) {
	content, err := s.Source()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(s.ID, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", s.Name, err)
	}
	schema, err := compiler.Compile(s.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", s.Name, err)
	}
	return schema, nil
}

// Validate checks doc, an untyped value as produced by encoding/json, against
// the named schema.
func Validate(name string, doc any, opts Options) error {
	s, err := Get(name)
	if err != nil {
		return err
	}
	compiledSchema, err := compile(*s)
	if err != nil {
		return err
	}

	err = compiledSchema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("failed to validate against %s schema: %w", s.Name, err)
	}

	input := opts.Input
	if input == "" {
		input = "input"
	}
	return &ValidationError{
		Input:      input,
		Schema:     *s,
		Violations: leafViolations(ve),
		Terse:      opts.Terse,
	}
}

// ValidateItem validates a parsed package item document.
func ValidateItem(doc any, opts Options) error {
	return Validate(Item, doc, opts)
}

// ValidateInternalItem validates a parsed internal item document.
func ValidateInternalItem(doc any, opts Options) error {
	return Validate(InternalItem, doc, opts)
}

// leafViolations flattens a validation error tree into its most specific
// causes.
func leafViolations(ve *jsonschema.ValidationError) []Violation {
	if len(ve.Causes) == 0 {
		return []Violation{{
			InstancePath: ve.InstanceLocation,
			SchemaPath:   ve.KeywordLocation,
			Message:      ve.Message,
		}}
	}
	var out []Violation
	for _, c := range ve.Causes {
		out = append(out, leafViolations(c)...)
	}
	return out
}
