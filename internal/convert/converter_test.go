package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambridge-collection/cudl-pack/internal/hook"
	"github.com/cambridge-collection/cudl-pack/internal/internalitem"
	"github.com/cambridge-collection/cudl-pack/internal/item"
	"github.com/cambridge-collection/cudl-pack/internal/namespace"
	"github.com/cambridge-collection/cudl-pack/internal/schema"
)

func loadItem(t *testing.T, name string) *item.Item {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	it, err := item.Parse(data, schema.Options{Input: name})
	require.NoError(t, err)
	return it
}

func decodeItem(t *testing.T, doc string) *item.Item {
	t.Helper()
	it, err := item.Decode([]byte(doc))
	require.NoError(t, err)
	return it
}

func TestConvert_TwoPageItem(t *testing.T) {
	it := decodeItem(t, `{
		"pages": {"b": {"label": "p2"}, "a": {"label": "p1"}},
		"descriptions": {"main": {"coverage": {"firstPage": true, "lastPage": true}}}
	}`)

	got, err := New(Config{}).Convert(context.Background(), it)
	require.NoError(t, err)

	assert.Equal(t, []internalitem.Page{
		{Label: "p1", PhysID: "a", Sequence: 1},
		{Label: "p2", PhysID: "b", Sequence: 2},
	}, got.Pages)
	assert.Equal(t, []internalitem.LogicalStructureNode{{
		DescriptiveMetadataID: "main",
		Label:                 DefaultTitle,
		StartPagePosition:     1,
		StartPageLabel:        "p1",
		StartPageID:           "a",
		EndPagePosition:       2,
		EndPageLabel:          "p2",
		EndPageID:             "b",
	}}, got.LogicalStructures)
	require.Len(t, got.DescriptiveMetadata, 1)
	assert.Equal(t, "main", got.DescriptiveMetadata[0].ID)
}

func TestConvert_NoPlugins(t *testing.T) {
	it := loadItem(t, "package-item.json")

	got, err := New(Config{}).Convert(context.Background(), it)
	require.NoError(t, err)

	for _, p := range got.Pages {
		assert.Empty(t, p.IIIFImageURL, "page %s", p.PhysID)
	}
	require.Len(t, got.LogicalStructures, 1)
	assert.Equal(t, DefaultTitle, got.LogicalStructures[0].Label)
	assert.Nil(t, got.Embeddable)

	_, err = internalitem.Generate(got, internalitem.GenerateOptions{})
	assert.NoError(t, err)
}

func TestConvert_DefaultPlugins(t *testing.T) {
	it := loadItem(t, "package-item.json")

	got, err := WithDefaultPlugins(Config{}).Convert(context.Background(), it)
	require.NoError(t, err)

	assert.Equal(t, []internalitem.Page{
		{Label: "1r", PhysID: "p1", Sequence: 1, IIIFImageURL: "https://images.example.com/iiif/p1.jp2"},
		{Label: "1v", PhysID: "p2", Sequence: 2, IIIFImageURL: "https://images.example.com/iiif/p2.jp2"},
		{Label: "2r", PhysID: "p3", Sequence: 3},
	}, got.Pages)

	require.Len(t, got.LogicalStructures, 1)
	main := got.LogicalStructures[0]
	assert.Equal(t, "Letters", main.Label)
	require.Len(t, main.Children, 2)
	assert.Equal(t, "First letter", main.Children[0].Label)
	assert.Equal(t, "letter-1", main.Children[0].DescriptiveMetadataID)
	assert.Equal(t, DefaultTitle, main.Children[1].Label)

	ids := make([]string, len(got.DescriptiveMetadata))
	for i, s := range got.DescriptiveMetadata {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"main", "letter-1", "letter-2"}, ids)

	_, err = internalitem.Generate(got, internalitem.GenerateOptions{})
	assert.NoError(t, err)
}

func TestConvert_Idempotent(t *testing.T) {
	it := loadItem(t, "package-item.json")
	c := WithDefaultPlugins(Config{PageConcurrency: 2})

	first, err := c.Convert(context.Background(), it)
	require.NoError(t, err)
	second, err := c.Convert(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	a, err := internalitem.Generate(first, internalitem.GenerateOptions{})
	require.NoError(t, err)
	b, err := internalitem.Generate(second, internalitem.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestConvert_HooksAreFreshPerConversion(t *testing.T) {
	c := New(Config{})
	calls := 0
	require.NoError(t, c.OnConversion("counter", func(hooks *Hooks, _ *item.Item) error {
		assert.Equal(t, 0, hooks.Postprocess.Len())
		hooks.Postprocess.Tap("counter", func(_ context.Context, it *internalitem.Item, _ *namespace.Namespace) (*internalitem.Item, error) {
			calls++
			return it, nil
		})
		return nil
	}))

	it := decodeItem(t, `{"pages": {}, "descriptions": {"main": {"coverage": {"firstPage": true, "lastPage": true}}}}`)
	for i := 0; i < 3; i++ {
		_, err := c.Convert(context.Background(), it)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestConvert_ItemDataHooks(t *testing.T) {
	it := loadItem(t, "package-item.json")
	c := New(Config{})

	var seen []string
	require.NoError(t, c.OnConversion("recorder", func(hooks *Hooks, _ *item.Item) error {
		hooks.ItemData.Tap(hook.TypeKey(namespace.DataLink), "typed", func(_ context.Context, out *internalitem.Item, dc ItemDataContext) (*internalitem.Item, error) {
			seen = append(seen, "link:"+dc.Data.Type)
			return out, nil
		})
		hooks.ItemData.Tap(hook.AnyType, "any", func(_ context.Context, out *internalitem.Item, dc ItemDataContext) (*internalitem.Item, error) {
			seen = append(seen, "any:"+dc.Data.Type)
			return out, nil
		})
		return nil
	}))
	require.NoError(t, c.Apply(&InlineNamespacePlugin{}))

	_, err := c.Convert(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, []string{"any:cdl-data:properties", "link:cdl-data:link", "any:cdl-data:link"}, seen)
}

func TestConvert_ItemPropertiesAndPageCount(t *testing.T) {
	it := loadItem(t, "package-item.json")
	c := WithDefaultPlugins(Config{})
	require.NoError(t, c.Apply(&ItemPropertiesPlugin{}))
	require.NoError(t, c.Apply(&PageCountPlugin{}))

	got, err := c.Convert(context.Background(), it)
	require.NoError(t, err)

	require.NotNil(t, got.Embeddable)
	assert.True(t, *got.Embeddable)
	assert.Equal(t, "R", got.TextDirection)
	require.NotNil(t, got.NumberOfPages)
	assert.Equal(t, 3, *got.NumberOfPages)
}

func TestConvert_CoverageError(t *testing.T) {
	it := decodeItem(t, `{
		"pages": {"a": {"label": "p1"}},
		"descriptions": {"main": {"coverage": {"firstPage": "nope", "lastPage": true}}}
	}`)

	_, err := WithDefaultPlugins(Config{}).Convert(context.Background(), it)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCoverage))
	assert.EqualError(t, err, "invalid description coverage: /descriptions/main/coverage/firstPage references a page that doesn't exist: nope")

	var cerr *CoverageError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, MissingPage, cerr.Kind)
	assert.Equal(t, "/descriptions/main/coverage/firstPage", cerr.Pointer())
}

func TestConvert_PluginErrors(t *testing.T) {
	t.Run("namespace reference with inline plugin", func(t *testing.T) {
		it := decodeItem(t, `{"@namespace": "ns.json", "pages": {}, "descriptions": {}}`)
		_, err := WithDefaultPlugins(Config{}).Convert(context.Background(), it)
		assert.ErrorIs(t, err, ErrNamespaceReference)
	})

	t.Run("tap error", func(t *testing.T) {
		c := New(Config{})
		boom := errors.New("boom")
		require.NoError(t, c.OnConversion("broken", func(*Hooks, *item.Item) error { return boom }))
		_, err := c.Convert(context.Background(), &item.Item{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("postprocess drops item", func(t *testing.T) {
		c := New(Config{})
		require.NoError(t, c.OnConversion("nil", func(hooks *Hooks, _ *item.Item) error {
			hooks.Postprocess.Tap("nil", func(context.Context, *internalitem.Item, *namespace.Namespace) (*internalitem.Item, error) {
				return nil, nil
			})
			return nil
		}))
		_, err := c.Convert(context.Background(), &item.Item{})
		assert.ErrorIs(t, err, ErrPluginContract)
	})
}

func TestConverter_Apply(t *testing.T) {
	c := WithDefaultPlugins(Config{})
	assert.Equal(t, []string{DescriptionTitlePluginName, IIIFPageResourcePluginName, InlineNamespacePluginName}, c.Plugins())

	err := c.Apply(&IIIFPageResourcePlugin{})
	assert.ErrorIs(t, err, ErrPluginAlreadyRegistered)
	assert.Len(t, c.Plugins(), 3)
}

func TestCreateNamespace_DefaultsToEmpty(t *testing.T) {
	it := decodeItem(t, `{
		"pages": {"a": {"label": "p1", "resources": [{"@type": "cdl-page:image", "imageType": "iiif", "image": {"@id": "x"}}]}},
		"descriptions": {"main": {"coverage": {"firstPage": true, "lastPage": true}}}
	}`)

	// Without a namespace plugin the default vocabularies still resolve.
	c := New(Config{})
	require.NoError(t, c.Apply(&IIIFPageResourcePlugin{}))
	got, err := c.Convert(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Pages[0].IIIFImageURL)
}
