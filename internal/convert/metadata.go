package convert

import (
	"slices"

	"github.com/cambridge-collection/cudl-pack/internal/identified"
	"github.com/cambridge-collection/cudl-pack/internal/internalitem"
	"github.com/cambridge-collection/cudl-pack/internal/item"
)

// descriptionSortKey puts the main description first, then the rest by ID.
func descriptionSortKey(d identified.Identified[item.DescriptionSection]) sortKey {
	if d.ID == item.MainDescription {
		return sortKey{"0", d.ID}
	}
	return sortKey{"1", d.ID}
}

// attributeSortKey orders attributes by order, falling back to ID.
func attributeSortKey(a identified.Identified[item.DescriptionAttribute]) sortKey {
	if a.Value.Order != nil {
		return sortKey{*a.Value.Order, a.ID}
	}
	return sortKey{a.ID, a.ID}
}

// createDescriptiveMetadata flattens each description into a metadata section.
func createDescriptiveMetadata(descriptions map[string]item.DescriptionSection) []internalitem.DescriptiveMetadataSection {
	sorted := identified.Identify(descriptions)
	slices.SortStableFunc(sorted, func(a, b identified.Identified[item.DescriptionSection]) int {
		return compareSortKeys(descriptionSortKey(a), descriptionSortKey(b))
	})

	sections := make([]internalitem.DescriptiveMetadataSection, len(sorted))
	for i, d := range sorted {
		sections[i] = createDescriptiveMetadataSection(d)
	}
	return sections
}

func createDescriptiveMetadataSection(d identified.Identified[item.DescriptionSection]) internalitem.DescriptiveMetadataSection {
	attributes := identified.Identify(d.Value.Attributes)
	slices.SortStableFunc(attributes, func(a, b identified.Identified[item.DescriptionAttribute]) int {
		return compareSortKeys(attributeSortKey(a), attributeSortKey(b))
	})

	metadata := make(map[string]any, len(attributes))
	for i, a := range attributes {
		metadata[a.ID] = createDisplayableMetadata(i+1, a.Value)
	}
	avoidTopLevelKeys(metadata, identified.IDs(attributes))

	return internalitem.DescriptiveMetadataSection{
		TopLevelProperties: internalitem.TopLevelProperties{ID: d.ID},
		Metadata:           metadata,
	}
}

func createDisplayableMetadata(seq int, a item.DescriptionAttribute) internalitem.DisplayableMetadata {
	if a.Value.IsList() {
		return internalitem.MultipleValues(seq, a.Label, a.Value.Values())
	}
	return internalitem.SingleValue(seq, a.Label, a.Value.String())
}

// avoidTopLevelKeys moves entries whose keys are reserved for top-level
// section properties to a key prefixed with underscores. Keys are renamed in
// the given order, which is the attribute order.
func avoidTopLevelKeys(metadata map[string]any, order []string) {
	for _, key := range order {
		if !internalitem.IsTopLevelKey(key) {
			continue
		}
		if _, ok := metadata[key]; !ok {
			continue
		}
		renamed := "_" + key
		for {
			if _, exists := metadata[renamed]; !exists {
				break
			}
			renamed = "_" + renamed
		}
		metadata[renamed] = metadata[key]
		delete(metadata, key)
	}
}
