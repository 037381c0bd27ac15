package hook

import "context"

// Key selects a chain in a WaterfallMap: either a specific expanded type URI
// or the fallback that applies to every type.
type Key struct {
	uri string
	any bool
}

// AnyType is the Key of the chain that runs for every type.
var AnyType = Key{any: true}

// TypeKey returns the Key for an expanded type URI.
func TypeKey(uri string) Key {
	return Key{uri: uri}
}

// IsAny reports whether k is AnyType.
func (k Key) IsAny() bool {
	return k.any
}

func (k Key) String() string {
	if k.any {
		return "*"
	}
	return k.uri
}

// WaterfallMap holds one Waterfall per type Key. The zero value is ready to use.
type WaterfallMap[T, C any] struct {
	chains map[Key]*Waterfall[T, C]
}

// For returns the chain for k, creating it if needed.
func (m *WaterfallMap[T, C]) For(k Key) *Waterfall[T, C] {
	if m.chains == nil {
		m.chains = make(map[Key]*Waterfall[T, C])
	}
	w, ok := m.chains[k]
	if !ok {
		w = &Waterfall[T, C]{}
		m.chains[k] = w
	}
	return w
}

// Get returns the chain for k if one has been created.
func (m *WaterfallMap[T, C]) Get(k Key) (*Waterfall[T, C], bool) {
	w, ok := m.chains[k]
	return w, ok
}

// Tap appends a handler to the chain for k.
func (m *WaterfallMap[T, C]) Tap(k Key, name string, fn WaterfallFunc[T, C]) {
	m.For(k).Tap(name, fn)
}

// CallTyped runs the chain for the expanded type uri, then the AnyType chain,
// threading the value through both.
func (m *WaterfallMap[T, C]) CallTyped(ctx context.Context, uri string, seed T, c C) (T, error) {
	value := seed
	for _, k := range []Key{TypeKey(uri), AnyType} {
		w, ok := m.Get(k)
		if !ok {
			continue
		}
		next, err := w.Call(ctx, value, c)
		if err != nil {
			return next, err
		}
		value = next
	}
	return value, nil
}
