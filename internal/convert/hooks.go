package convert

import (
	"github.com/cambridge-collection/cudl-pack/internal/hook"
	"github.com/cambridge-collection/cudl-pack/internal/identified"
	"github.com/cambridge-collection/cudl-pack/internal/internalitem"
	"github.com/cambridge-collection/cudl-pack/internal/item"
	"github.com/cambridge-collection/cudl-pack/internal/namespace"
)

// Hooks are the extension points of a single conversion. A fresh set is
// created for every call to Converter.Convert.
type Hooks struct {
	// CreateNamespace builds the namespace used to expand the item's CURIEs.
	// The first handler receives nil. If the chain returns nil the
	// conversion uses namespace.Empty().
	CreateNamespace hook.Waterfall[*namespace.Namespace, *item.Item]

	// Page runs once per page after its resources have been handled.
	Page hook.Waterfall[internalitem.Page, identified.Identified[item.Page]]

	// PageResource runs for each resource of each page, keyed by the
	// resource's expanded @type. The AnyType chain runs after the typed one.
	PageResource hook.WaterfallMap[internalitem.Page, PageResourceContext]

	// InvalidDescriptionCoverage runs when a description's coverage can't be
	// resolved. A handler returning IgnoreCoverageError drops the description
	// from the logical structures instead of failing the conversion.
	InvalidDescriptionCoverage hook.Bail[CoverageProblem, CoverageVerdict]

	// DescriptionTitle provides the label of a description's logical
	// structure node. DefaultTitle is used when no handler answers.
	DescriptionTitle hook.Bail[identified.Identified[item.DescriptionSection], string]

	// ItemData runs for each entry of the item's data list, keyed by the
	// entry's expanded @type. The AnyType chain runs after the typed one.
	ItemData hook.WaterfallMap[*internalitem.Item, ItemDataContext]

	// Postprocess runs last and may modify or replace the result.
	Postprocess hook.Waterfall[*internalitem.Item, *namespace.Namespace]
}

// NewHooks returns an empty hook set.
func NewHooks() *Hooks {
	return &Hooks{}
}

// PageResourceContext is passed to PageResource handlers.
type PageResourceContext struct {
	Resource  item.Resource
	Page      identified.Identified[item.Page]
	Namespace *namespace.Namespace
}

// ItemDataContext is passed to ItemData handlers.
type ItemDataContext struct {
	Data      item.Data
	Namespace *namespace.Namespace
}

// CoverageProblem is passed to InvalidDescriptionCoverage handlers.
type CoverageProblem struct {
	Err         *CoverageError
	Description identified.Identified[item.DescriptionSection]
}

// CoverageVerdict is a handler's decision about a coverage error.
type CoverageVerdict int

const (
	// ReportCoverageError fails the conversion with the coverage error.
	ReportCoverageError CoverageVerdict = iota
	// IgnoreCoverageError omits the description from the logical structures.
	IgnoreCoverageError
)

// DefaultTitle labels logical structure nodes with no title.
const DefaultTitle = "Untitled"
