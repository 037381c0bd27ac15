package convert

import (
	"errors"
	"fmt"

	"github.com/cambridge-collection/cudl-pack/internal/item"
)

// Sentinel errors for the convert package.
var (
	// ErrInvalidCoverage is returned when a description's coverage cannot be
	// resolved and no plugin chose to ignore it. The error also matches a
	// *CoverageError with the details.
	ErrInvalidCoverage = errors.New("invalid description coverage")

	// ErrStructureInvariant is returned when a logical structure node cannot
	// be placed in the tree: either nodes arrived out of start order or the
	// node partially overlaps an existing node.
	ErrStructureInvariant = errors.New("logical structure invariant violated")

	// ErrPluginContract is returned when a plugin is used in a way it does
	// not support, such as tapping nil hooks or running without a required
	// dependency.
	ErrPluginContract = errors.New("plugin contract violation")

	// ErrPluginAlreadyRegistered is returned when a plugin name is registered
	// twice on one converter.
	ErrPluginAlreadyRegistered = errors.New("plugin already registered")

	// ErrUnknownPlugin is returned by PluginsByName for unrecognised names.
	ErrUnknownPlugin = errors.New("unknown plugin")

	// ErrNamespaceReference is returned when an item's @namespace is a
	// reference and the namespace plugin in use cannot resolve it.
	ErrNamespaceReference = errors.New("namespace references are not supported")
)

// CoverageErrorKind classifies a CoverageError.
type CoverageErrorKind int

const (
	// MissingPage means a coverage reference names a page that doesn't exist.
	MissingPage CoverageErrorKind = iota
	// EmptyRange means the first page comes after the last page.
	EmptyRange
)

func (k CoverageErrorKind) String() string {
	switch k {
	case MissingPage:
		return "missing page"
	case EmptyRange:
		return "empty range"
	default:
		return fmt.Sprintf("CoverageErrorKind(%d)", int(k))
	}
}

// CoverageError describes a description whose coverage doesn't resolve to a
// non-empty run of pages.
type CoverageError struct {
	DescriptionID string
	Kind          CoverageErrorKind

	// Field is "firstPage" or "lastPage" for MissingPage errors.
	Field     string
	Reference item.PageReference

	// Set for EmptyRange errors.
	First, Last           item.PageReference
	FirstIndex, LastIndex int
}

func (e *CoverageError) Error() string {
	if e.Kind == EmptyRange {
		return fmt.Sprintf("/descriptions/%s/coverage/firstPage (%s = %d) is after lastPage (%s = %d)",
			e.DescriptionID, e.First, e.FirstIndex, e.Last, e.LastIndex)
	}
	return fmt.Sprintf("/descriptions/%s/coverage/%s references a page that doesn't exist: %s",
		e.DescriptionID, e.Field, e.Reference)
}

// Pointer returns the JSON pointer of the offending coverage field.
func (e *CoverageError) Pointer() string {
	field := e.Field
	if e.Kind == EmptyRange {
		field = "firstPage"
	}
	return fmt.Sprintf("/descriptions/%s/coverage/%s", e.DescriptionID, field)
}
