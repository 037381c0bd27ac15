// Package identified carries map keys through list-oriented processing.
//
// Documents represent many collections as objects keyed by a synthetic ID.
// Identify turns such a map into a slice of (ID, Value) pairs so it can be
// sorted and transformed, and Index turns the slice back into a map.
package identified

import "sort"

// Identified is a value tagged with the key it had in its originating map.
type Identified[T any] struct {
	ID    string
	Value T
}

// Of pairs a value with an ID.
func Of[T any](id string, value T) Identified[T] {
	return Identified[T]{ID: id, Value: value}
}

// Identify returns one Identified entry per map entry. Entries are ordered by
// key so results are reproducible; callers that need a particular order must
// still sort explicitly.
func Identify[T any](m map[string]T) []Identified[T] {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]Identified[T], len(keys))
	for i, k := range keys {
		result[i] = Identified[T]{ID: k, Value: m[k]}
	}
	return result
}

// Index converts identified entries back into a map keyed by ID. Later entries
// overwrite earlier entries with the same ID.
func Index[T any](items []Identified[T]) map[string]T {
	result := make(map[string]T, len(items))
	for _, i := range items {
		result[i.ID] = i.Value
	}
	return result
}

// IDs returns the IDs of items in order.
func IDs[T any](items []Identified[T]) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
