// Package nsref resolves @namespace references: item namespace declarations
// that name a separate JSON document instead of holding the map inline.
package nsref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cambridge-collection/cudl-pack/internal/item"
	"github.com/cambridge-collection/cudl-pack/internal/namespace"
)

// Sentinel errors for the nsref package.
var (
	// ErrNotNamespaceMap is returned when a referenced document is not a JSON
	// object mapping CURIE prefixes to URI prefixes.
	ErrNotNamespaceMap = errors.New("resolved JSON value is not a namespace map")

	// ErrUnsupportedReference is returned when no resolver handles a
	// reference's scheme.
	ErrUnsupportedReference = errors.New("unsupported namespace reference")
)

// Resolver returns the namespace map a reference points to.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (namespace.Map, error)
}

// decodeMap parses a referenced namespace document.
func decodeMap(ref string, data []byte) (namespace.Map, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unable to load @namespace reference %s: not a valid JSON document: %w", ref, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unable to load @namespace reference %s: %w: %s", ref, ErrNotNamespaceMap, preview(data))
	}

	m := make(namespace.Map, len(obj))
	for prefix, v := range obj {
		uri, ok := v.(string)
		if !ok || prefix == "" || strings.Contains(prefix, ":") {
			return nil, fmt.Errorf("unable to load @namespace reference %s: %w: bad entry %q", ref, ErrNotNamespaceMap, prefix)
		}
		m[prefix] = uri
	}
	return m, nil
}

func preview(data []byte) string {
	const max = 60
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// SchemeResolver dispatches references to HTTP or File by scheme. Anything
// without an http or https scheme is treated as a file path.
type SchemeResolver struct {
	HTTP Resolver
	File Resolver
}

func (r *SchemeResolver) Resolve(ctx context.Context, ref string) (namespace.Map, error) {
	next := r.File
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		next = r.HTTP
	}
	if next == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedReference, ref)
	}
	return next.Resolve(ctx, ref)
}

// Loader builds the Namespace for an item's @namespace declaration.
type Loader struct {
	Resolver Resolver
}

// Load returns the Namespace for decl. An absent declaration yields the
// empty namespace; a reference is resolved with the Loader's Resolver.
func (l *Loader) Load(ctx context.Context, decl *item.NamespaceDecl) (*namespace.Namespace, error) {
	if decl == nil {
		return namespace.Empty(), nil
	}
	if !decl.IsReference() {
		return namespace.FromMap(decl.Inline), nil
	}
	if l.Resolver == nil {
		return nil, fmt.Errorf("%w: no resolver for %s", ErrUnsupportedReference, decl.Ref)
	}
	m, err := l.Resolver.Resolve(ctx, decl.Ref)
	if err != nil {
		return nil, err
	}
	return namespace.FromMap(m), nil
}
