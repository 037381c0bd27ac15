// Package convert converts package items into internal items.
//
// A Converter drives a fixed sequence of stages: namespace construction, page
// conversion, logical structure building, descriptive metadata flattening,
// item data handling and postprocessing. Plugins customise a conversion by
// tapping the Hooks created for it.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/cambridge-collection/cudl-pack/internal/identified"
	"github.com/cambridge-collection/cudl-pack/internal/internalitem"
	"github.com/cambridge-collection/cudl-pack/internal/item"
	"github.com/cambridge-collection/cudl-pack/internal/namespace"
)

// DefaultPageConcurrency is the number of pages converted at once when
// Config.PageConcurrency is unset.
const DefaultPageConcurrency = 8

// ConversionFunc taps the hooks of one conversion of it.
type ConversionFunc func(hooks *Hooks, it *item.Item) error

// Plugin is a named unit of conversion behaviour.
//
// Converter.Apply registers a plugin for every conversion the converter runs.
// Calling Tap directly applies the plugin to a single hook set.
type Plugin interface {
	Name() string
	Tap(hooks *Hooks, it *item.Item) error
}

// Config configures a Converter.
type Config struct {
	Logger *slog.Logger

	// PageConcurrency limits how many pages are converted at once.
	PageConcurrency int
}

// Converter converts package items to internal items.
type Converter struct {
	logger          *slog.Logger
	pageConcurrency int

	mu    sync.RWMutex
	taps  map[string]ConversionFunc
	order []string // registration order
}

// New creates a converter with no plugins.
func New(cfg Config) *Converter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.PageConcurrency
	if concurrency <= 0 {
		concurrency = DefaultPageConcurrency
	}
	return &Converter{
		logger:          logger,
		pageConcurrency: concurrency,
		taps:            make(map[string]ConversionFunc),
	}
}

// WithDefaultPlugins creates a converter with DefaultPlugins applied.
func WithDefaultPlugins(cfg Config) *Converter {
	c := New(cfg)
	for _, p := range DefaultPlugins() {
		// Default plugin names are distinct, so this can't fail.
		if err := c.Apply(p); err != nil {
			panic(err)
		}
	}
	return c
}

// Apply registers p for every subsequent conversion.
func (c *Converter) Apply(p Plugin) error {
	return c.OnConversion(p.Name(), p.Tap)
}

// OnConversion registers fn under name. fn is called at the start of every
// conversion, in registration order, to tap that conversion's hooks.
func (c *Converter) OnConversion(name string, fn ConversionFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.taps[name]; exists {
		return fmt.Errorf("%w: %s", ErrPluginAlreadyRegistered, name)
	}
	c.taps[name] = fn
	c.order = append(c.order, name)
	c.logger.Debug("registered conversion plugin", "plugin", name)
	return nil
}

// Plugins returns registered plugin names in registration order.
func (c *Converter) Plugins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Convert converts it to an internal item. it is not modified by the
// converter itself, though plugins receive it and are trusted not to.
func (c *Converter) Convert(ctx context.Context, it *item.Item) (*internalitem.Item, error) {
	logger := c.logger.With("conversion", uuid.NewString())

	hooks := NewHooks()
	if err := c.tap(hooks, it); err != nil {
		return nil, err
	}
	return convertItem(ctx, it, hooks, c.pageConcurrency, logger)
}

// tap fires the registered conversion functions against hooks.
func (c *Converter) tap(hooks *Hooks, it *item.Item) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, name := range c.order {
		if err := c.taps[name](hooks, it); err != nil {
			return fmt.Errorf("plugin %s: %w", name, err)
		}
	}
	return nil
}

func convertItem(ctx context.Context, it *item.Item, hooks *Hooks, pageConcurrency int, logger *slog.Logger) (*internalitem.Item, error) {
	ns, err := hooks.CreateNamespace.Call(ctx, nil, it)
	if err != nil {
		return nil, fmt.Errorf("failed to create namespace: %w", err)
	}
	if ns == nil {
		ns = namespace.Empty()
	}

	pages := sortPages(identified.Identify(it.Pages))
	logger.Debug("converting pages", "pages", len(pages))
	internalPages, err := convertPages(ctx, pages, ns, hooks, pageConcurrency)
	if err != nil {
		return nil, err
	}

	logger.Debug("building logical structures", "descriptions", len(it.Descriptions))
	structures, err := createLogicalStructures(it.Descriptions, pages, hooks, logger)
	if err != nil {
		return nil, err
	}

	out := &internalitem.Item{
		DescriptiveMetadata: createDescriptiveMetadata(it.Descriptions),
		Pages:               internalPages,
		LogicalStructures:   structures,
	}

	for _, d := range it.Data {
		out, err = hooks.ItemData.CallTyped(ctx, ns.Expand(d.Type), out, ItemDataContext{Data: d, Namespace: ns})
		if err != nil {
			return nil, fmt.Errorf("failed to handle item data %s: %w", d.Type, err)
		}
	}

	out, err = hooks.Postprocess.Call(ctx, out, ns)
	if err != nil {
		return nil, fmt.Errorf("postprocess failed: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: hooks returned no internal item", ErrPluginContract)
	}
	logger.Debug("conversion complete")
	return out, nil
}
