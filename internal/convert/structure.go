package convert

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cambridge-collection/cudl-pack/internal/identified"
	"github.com/cambridge-collection/cudl-pack/internal/internalitem"
	"github.com/cambridge-collection/cudl-pack/internal/item"
)

// pageSpan is a resolved coverage range of 0-based page indexes.
type pageSpan struct {
	first, length int
}

func (s pageSpan) last() int {
	return s.first + s.length - 1
}

type coveredDescription struct {
	description identified.Identified[item.DescriptionSection]
	span        pageSpan
}

// createLogicalStructures builds the logical structure forest from the
// coverage of each description. pages must already be in sequence order.
func createLogicalStructures(descriptions map[string]item.DescriptionSection, pages []identified.Identified[item.Page], hooks *Hooks, logger *slog.Logger) ([]internalitem.LogicalStructureNode, error) {
	nodes := []internalitem.LogicalStructureNode{}
	if len(pages) == 0 {
		return nodes, nil
	}

	pageIndex := make(map[string]int, len(pages))
	for i, p := range pages {
		pageIndex[p.ID] = i
	}

	var covered []coveredDescription
	for _, d := range identified.Identify(descriptions) {
		span, cerr := resolveCoverage(d, pageIndex, len(pages))
		if cerr == nil {
			covered = append(covered, coveredDescription{description: d, span: span})
			continue
		}

		verdict, ok, err := hooks.InvalidDescriptionCoverage.Call(CoverageProblem{Err: cerr, Description: d})
		if err != nil {
			return nil, err
		}
		if !ok || verdict != IgnoreCoverageError {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCoverage, cerr)
		}
		logger.Warn("ignoring description with invalid coverage", "description", d.ID, "error", cerr.Error())
	}

	// Insertion relies on this order: a node's possible parents always
	// precede it.
	slices.SortStableFunc(covered, func(a, b coveredDescription) int {
		if c := cmp.Compare(a.span.first, b.span.first); c != 0 {
			return c
		}
		return cmp.Compare(b.span.length, a.span.length)
	})

	for _, cd := range covered {
		node, err := createLogicalStructure(cd, pages, hooks)
		if err != nil {
			return nil, err
		}
		if nodes, err = insertLogicalStructureNode(nodes, node); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// resolveCoverage converts a description's coverage to page indexes.
func resolveCoverage(d identified.Identified[item.DescriptionSection], pageIndex map[string]int, pageCount int) (pageSpan, *CoverageError) {
	first, last := d.Value.Coverage.FirstPage, d.Value.Coverage.LastPage

	firstIndex, ok := resolvePageReference(first, pageIndex, 0)
	if !ok {
		return pageSpan{}, &CoverageError{DescriptionID: d.ID, Kind: MissingPage, Field: "firstPage", Reference: first}
	}
	lastIndex, ok := resolvePageReference(last, pageIndex, pageCount-1)
	if !ok {
		return pageSpan{}, &CoverageError{DescriptionID: d.ID, Kind: MissingPage, Field: "lastPage", Reference: last}
	}

	length := lastIndex + 1 - firstIndex
	if length < 1 {
		return pageSpan{}, &CoverageError{
			DescriptionID: d.ID,
			Kind:          EmptyRange,
			First:         first,
			Last:          last,
			FirstIndex:    firstIndex,
			LastIndex:     lastIndex,
		}
	}
	return pageSpan{first: firstIndex, length: length}, nil
}

func resolvePageReference(ref item.PageReference, pageIndex map[string]int, boundary int) (int, bool) {
	if ref.IsBoundary() {
		return boundary, true
	}
	i, ok := pageIndex[ref.ID()]
	return i, ok
}

func createLogicalStructure(cd coveredDescription, pages []identified.Identified[item.Page], hooks *Hooks) (internalitem.LogicalStructureNode, error) {
	start, end := cd.span.first, cd.span.last()
	if start < 0 || end >= len(pages) {
		return internalitem.LogicalStructureNode{}, fmt.Errorf("%w: description %s covers pages %d-%d of %d",
			ErrStructureInvariant, cd.description.ID, start+1, end+1, len(pages))
	}

	title, ok, err := hooks.DescriptionTitle.Call(cd.description)
	if err != nil {
		return internalitem.LogicalStructureNode{}, fmt.Errorf("description %s title: %w", cd.description.ID, err)
	}
	if !ok || title == "" {
		title = DefaultTitle
	}

	startPage, endPage := pages[start], pages[end]
	return internalitem.LogicalStructureNode{
		DescriptiveMetadataID: cd.description.ID,
		Label:                 title,
		StartPagePosition:     start + 1,
		StartPageLabel:        startPage.Value.Label,
		StartPageID:           startPage.ID,
		EndPagePosition:       end + 1,
		EndPageLabel:          endPage.Value.Label,
		EndPageID:             endPage.ID,
	}, nil
}

// insertLogicalStructureNode adds node to the forest nodes, nesting it inside
// the earliest of the trailing nodes that contain it. Nodes must be inserted
// in ascending start order, and must not partially overlap.
func insertLogicalStructureNode(nodes []internalitem.LogicalStructureNode, node internalitem.LogicalStructureNode) ([]internalitem.LogicalStructureNode, error) {
	if len(nodes) > 0 {
		last := nodes[len(nodes)-1]
		if node.StartPagePosition < last.StartPagePosition {
			return nil, fmt.Errorf("%w: %s starts at page %d, before %s at page %d",
				ErrStructureInvariant, node.DescriptiveMetadataID, node.StartPagePosition,
				last.DescriptiveMetadataID, last.StartPagePosition)
		}
	}

	parent := -1
	for i := len(nodes) - 1; i >= 0 && nodes[i].Contains(node); i-- {
		parent = i
	}
	if parent >= 0 {
		children, err := insertLogicalStructureNode(nodes[parent].Children, node)
		if err != nil {
			return nil, err
		}
		nodes[parent].Children = children
		return nodes, nil
	}

	if len(nodes) > 0 {
		last := nodes[len(nodes)-1]
		if last.Overlaps(node) {
			return nil, fmt.Errorf("%w: %s (pages %d-%d) partially overlaps %s (pages %d-%d)",
				ErrStructureInvariant, node.DescriptiveMetadataID, node.StartPagePosition, node.EndPagePosition,
				last.DescriptiveMetadataID, last.StartPagePosition, last.EndPagePosition)
		}
	}
	return append(nodes, node), nil
}
