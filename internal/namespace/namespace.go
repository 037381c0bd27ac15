// Package namespace expands and compacts CURIEs against an ordered list of
// prefix bindings.
//
// Expansion and compaction are both first-match-wins over the binding list, so
// the order of bindings is part of a Namespace's meaning. Bindings are scanned
// linearly; namespaces are expected to hold fewer than ten entries.
package namespace

import (
	"fmt"
	"sort"
	"strings"
)

// Map is a document-supplied mapping of CURIE prefix to URI prefix, as found
// in an item's @namespace declaration.
type Map map[string]string

// Binding associates a CURIE prefix with the URI prefix it abbreviates.
type Binding struct {
	// CuriePrefix is the part of a CURIE before the first colon.
	CuriePrefix string
	// URIPrefix is the base URI a CURIE suffix is appended to when expanding.
	URIPrefix string
}

// URI returns the full URI for suffix.
func (b Binding) URI(suffix string) string {
	return b.URIPrefix + suffix
}

// CURIE returns the compact form of suffix.
func (b Binding) CURIE(suffix string) string {
	return b.CuriePrefix + ":" + suffix
}

// Compact returns the CURIE form of uri. It fails if uri does not start with
// the binding's URI prefix.
func (b Binding) Compact(uri string) (string, error) {
	if !strings.HasPrefix(uri, b.URIPrefix) {
		return "", fmt.Errorf("uri is not prefixed by this curie's prefix: %q, uri: %q", b.URIPrefix, uri)
	}
	return b.CURIE(uri[len(b.URIPrefix):]), nil
}

// Namespace is an immutable, ordered list of bindings.
type Namespace struct {
	bindings []Binding
}

// New creates a Namespace that uses bindings in exactly the order given.
func New(bindings ...Binding) *Namespace {
	b := make([]Binding, len(bindings))
	copy(b, bindings)
	return &Namespace{bindings: b}
}

// FromMap creates a Namespace from a document-supplied map.
//
// The default bindings come first. The map's entries follow, ordered by URI
// prefix length descending, then URI prefix, then CURIE prefix, so the most
// specific binding wins when compacting.
func FromMap(m Map) *Namespace {
	entries := make([]Binding, 0, len(m))
	for prefix, uri := range m {
		entries = append(entries, Binding{CuriePrefix: prefix, URIPrefix: uri})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if len(a.URIPrefix) != len(b.URIPrefix) {
			return len(a.URIPrefix) > len(b.URIPrefix)
		}
		if a.URIPrefix != b.URIPrefix {
			return a.URIPrefix < b.URIPrefix
		}
		return a.CuriePrefix < b.CuriePrefix
	})

	return &Namespace{bindings: append(DefaultBindings(), entries...)}
}

// Empty returns a Namespace holding only the default bindings.
func Empty() *Namespace {
	return FromMap(nil)
}

// Bindings returns a copy of the namespace's bindings in match order.
func (n *Namespace) Bindings() []Binding {
	b := make([]Binding, len(n.bindings))
	copy(b, n.bindings)
	return b
}

// Expand returns the expanded form of curieOrURI if its prefix (the part
// before the first colon) matches a binding. Otherwise the value is returned
// unchanged; callers cannot assume the result is a full URI.
func (n *Namespace) Expand(curieOrURI string) string {
	prefix, suffix, found := strings.Cut(curieOrURI, ":")
	if !found {
		return curieOrURI
	}
	for _, b := range n.bindings {
		if b.CuriePrefix == prefix {
			return b.URI(suffix)
		}
	}
	return curieOrURI
}

// Compact returns the CURIE form of uri using the first binding whose URI
// prefix is a prefix of uri, or uri unchanged if none matches.
func (n *Namespace) Compact(uri string) string {
	for _, b := range n.bindings {
		if strings.HasPrefix(uri, b.URIPrefix) {
			return b.CURIE(uri[len(b.URIPrefix):])
		}
	}
	return uri
}
