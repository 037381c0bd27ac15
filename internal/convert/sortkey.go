package convert

import "strings"

// sortKey is a tuple of strings ordered element by element. Keys may differ
// in length; a missing element sorts after any present one.
type sortKey []string

func compareSortKeys(a, b sortKey) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(a):
			return 1
		case i >= len(b):
			return -1
		}
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}
