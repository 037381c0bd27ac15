package convert

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/cambridge-collection/cudl-pack/internal/identified"
	"github.com/cambridge-collection/cudl-pack/internal/internalitem"
	"github.com/cambridge-collection/cudl-pack/internal/item"
	"github.com/cambridge-collection/cudl-pack/internal/namespace"
)

// pageSortKey orders pages by (order, label, ID), or (label, ID) for pages
// without an order.
func pageSortKey(p identified.Identified[item.Page]) sortKey {
	if p.Value.Order != nil {
		return sortKey{*p.Value.Order, p.Value.Label, p.ID}
	}
	return sortKey{p.Value.Label, p.ID}
}

// sortPages returns pages in sequence order.
func sortPages(pages []identified.Identified[item.Page]) []identified.Identified[item.Page] {
	sorted := slices.Clone(pages)
	slices.SortStableFunc(sorted, func(a, b identified.Identified[item.Page]) int {
		return compareSortKeys(pageSortKey(a), pageSortKey(b))
	})
	return sorted
}

// convertPages converts sorted pages concurrently. Sequence numbers follow the
// input order regardless of completion order.
func convertPages(ctx context.Context, pages []identified.Identified[item.Page], ns *namespace.Namespace, hooks *Hooks, limit int) ([]internalitem.Page, error) {
	results := make([]internalitem.Page, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range pages {
		g.Go(func() error {
			converted, err := convertPage(gctx, i+1, p, ns, hooks)
			if err != nil {
				return fmt.Errorf("page %s: %w", p.ID, err)
			}
			results[i] = converted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func convertPage(ctx context.Context, sequence int, p identified.Identified[item.Page], ns *namespace.Namespace, hooks *Hooks) (internalitem.Page, error) {
	converted := internalitem.Page{
		PhysID:   p.ID,
		Label:    p.Value.Label,
		Sequence: sequence,
	}

	for _, r := range p.Value.Resources {
		if err := ctx.Err(); err != nil {
			return converted, err
		}
		var err error
		converted, err = hooks.PageResource.CallTyped(ctx, ns.Expand(r.Type), converted, PageResourceContext{
			Resource:  r,
			Page:      p,
			Namespace: ns,
		})
		if err != nil {
			return converted, fmt.Errorf("resource %s: %w", r.Type, err)
		}
	}

	return hooks.Page.Call(ctx, converted, p)
}
