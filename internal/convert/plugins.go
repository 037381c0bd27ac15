package convert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cambridge-collection/cudl-pack/internal/hook"
	"github.com/cambridge-collection/cudl-pack/internal/identified"
	"github.com/cambridge-collection/cudl-pack/internal/internalitem"
	"github.com/cambridge-collection/cudl-pack/internal/item"
	"github.com/cambridge-collection/cudl-pack/internal/namespace"
)

// Plugin names.
const (
	InlineNamespacePluginName    = "InlineNamespacePlugin"
	ReferenceNamespacePluginName = "ReferenceNamespacePlugin"
	IIIFPageResourcePluginName   = "IIIFPageResourcePlugin"
	DescriptionTitlePluginName   = "DescriptionTitlePlugin"
	ItemPropertiesPluginName     = "ItemPropertiesPlugin"
	PageCountPluginName          = "PageCountPlugin"
)

// DefaultPlugins returns a new instance of each default plugin.
func DefaultPlugins() []Plugin {
	return []Plugin{
		&DescriptionTitlePlugin{},
		&IIIFPageResourcePlugin{},
		&InlineNamespacePlugin{},
	}
}

// PluginDeps holds the collaborators optional plugins may need.
type PluginDeps struct {
	Namespaces NamespaceLoader
}

// PluginsByName creates the named plugins.
func PluginsByName(names []string, deps PluginDeps) ([]Plugin, error) {
	plugins := make([]Plugin, 0, len(names))
	for _, name := range names {
		var p Plugin
		switch name {
		case InlineNamespacePluginName:
			p = &InlineNamespacePlugin{}
		case ReferenceNamespacePluginName:
			p = &ReferenceNamespacePlugin{Loader: deps.Namespaces}
		case IIIFPageResourcePluginName:
			p = &IIIFPageResourcePlugin{}
		case DescriptionTitlePluginName:
			p = &DescriptionTitlePlugin{}
		case ItemPropertiesPluginName:
			p = &ItemPropertiesPlugin{}
		case PageCountPluginName:
			p = &PageCountPlugin{}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

func requireHooks(name string, hooks *Hooks) error {
	if hooks == nil {
		return fmt.Errorf("%w: %s tapped nil hooks", ErrPluginContract, name)
	}
	return nil
}

// InlineNamespacePlugin creates the namespace from an item's inline
// @namespace map. Items with a namespace reference are rejected.
type InlineNamespacePlugin struct{}

func (p *InlineNamespacePlugin) Name() string { return InlineNamespacePluginName }

func (p *InlineNamespacePlugin) Tap(hooks *Hooks, _ *item.Item) error {
	if err := requireHooks(p.Name(), hooks); err != nil {
		return err
	}
	hooks.CreateNamespace.Tap(p.Name(), func(_ context.Context, _ *namespace.Namespace, it *item.Item) (*namespace.Namespace, error) {
		if it.Namespace.IsReference() {
			return nil, fmt.Errorf("%w: %s", ErrNamespaceReference, it.Namespace.Ref)
		}
		if it.Namespace == nil {
			return namespace.Empty(), nil
		}
		return namespace.FromMap(it.Namespace.Inline), nil
	})
	return nil
}

// NamespaceLoader resolves an item's namespace declaration.
type NamespaceLoader interface {
	Load(ctx context.Context, decl *item.NamespaceDecl) (*namespace.Namespace, error)
}

// ReferenceNamespacePlugin creates the namespace from an item's @namespace,
// resolving references with Loader.
type ReferenceNamespacePlugin struct {
	Loader NamespaceLoader
}

func (p *ReferenceNamespacePlugin) Name() string { return ReferenceNamespacePluginName }

func (p *ReferenceNamespacePlugin) Tap(hooks *Hooks, _ *item.Item) error {
	if err := requireHooks(p.Name(), hooks); err != nil {
		return err
	}
	if p.Loader == nil {
		return fmt.Errorf("%w: %s has no namespace loader", ErrPluginContract, p.Name())
	}
	hooks.CreateNamespace.Tap(p.Name(), func(ctx context.Context, _ *namespace.Namespace, it *item.Item) (*namespace.Namespace, error) {
		return p.Loader.Load(ctx, it.Namespace)
	})
	return nil
}

// IIIFPageResourcePlugin sets a page's IIIF image URL from its IIIF image
// resources.
type IIIFPageResourcePlugin struct{}

func (p *IIIFPageResourcePlugin) Name() string { return IIIFPageResourcePluginName }

func (p *IIIFPageResourcePlugin) Tap(hooks *Hooks, _ *item.Item) error {
	if err := requireHooks(p.Name(), hooks); err != nil {
		return err
	}
	hooks.PageResource.Tap(hook.TypeKey(namespace.PageImage), p.Name(), p.handleImage)
	return nil
}

func (p *IIIFPageResourcePlugin) handleImage(_ context.Context, page internalitem.Page, c PageResourceContext) (internalitem.Page, error) {
	img, ok, err := c.Resource.AsImage(c.Namespace)
	if err != nil {
		return page, err
	}
	if !ok || img.ImageType != item.IIIF {
		return page, nil
	}
	page.IIIFImageURL = img.Image.ID
	return page, nil
}

// DescriptionTitlePlugin titles descriptions with their title attribute,
// using the first value of a list.
type DescriptionTitlePlugin struct{}

func (p *DescriptionTitlePlugin) Name() string { return DescriptionTitlePluginName }

func (p *DescriptionTitlePlugin) Tap(hooks *Hooks, _ *item.Item) error {
	if err := requireHooks(p.Name(), hooks); err != nil {
		return err
	}
	hooks.DescriptionTitle.Tap(p.Name(), func(d identified.Identified[item.DescriptionSection]) (string, bool, error) {
		title, ok := d.Value.Attributes["title"]
		if !ok {
			return "", false, nil
		}
		v, ok := title.Value.First()
		return v, ok, nil
	})
	return nil
}

// ItemPropertiesPlugin copies recognised item-level properties from
// cdl-data:properties entries onto the internal item. Unrecognised
// properties are ignored.
type ItemPropertiesPlugin struct{}

func (p *ItemPropertiesPlugin) Name() string { return ItemPropertiesPluginName }

func (p *ItemPropertiesPlugin) Tap(hooks *Hooks, _ *item.Item) error {
	if err := requireHooks(p.Name(), hooks); err != nil {
		return err
	}
	hooks.ItemData.Tap(hook.TypeKey(namespace.DataProperties), p.Name(), p.handleProperties)
	return nil
}

func (p *ItemPropertiesPlugin) handleProperties(_ context.Context, it *internalitem.Item, c ItemDataContext) (*internalitem.Item, error) {
	var data item.PropertiesData
	if err := c.Data.Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid properties data: %w", err)
	}
	if len(data.Properties) == 0 {
		return it, nil
	}

	// Overlay the new values on the existing ones and decode the result, so
	// only known properties with valid types are accepted.
	current, err := json.Marshal(it.Properties)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]any)
	if err := json.Unmarshal(current, &merged); err != nil {
		return nil, err
	}
	for k, v := range data.Properties {
		merged[k] = v
	}
	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	var props internalitem.Properties
	if err := json.Unmarshal(encoded, &props); err != nil {
		return nil, fmt.Errorf("invalid item properties: %w", err)
	}

	out := *it
	out.Properties = props
	return &out, nil
}

// PageCountPlugin records the number of pages on the internal item.
type PageCountPlugin struct{}

func (p *PageCountPlugin) Name() string { return PageCountPluginName }

func (p *PageCountPlugin) Tap(hooks *Hooks, _ *item.Item) error {
	if err := requireHooks(p.Name(), hooks); err != nil {
		return err
	}
	hooks.Postprocess.Tap(p.Name(), func(_ context.Context, it *internalitem.Item, _ *namespace.Namespace) (*internalitem.Item, error) {
		n := len(it.Pages)
		it.NumberOfPages = &n
		return it, nil
	})
	return nil
}
