// Package pack turns package item documents into internal item documents:
// parse and validate, convert, then generate.
package pack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cambridge-collection/cudl-pack/internal/config"
	"github.com/cambridge-collection/cudl-pack/internal/convert"
	"github.com/cambridge-collection/cudl-pack/internal/internalitem"
	"github.com/cambridge-collection/cudl-pack/internal/item"
	"github.com/cambridge-collection/cudl-pack/internal/nsref"
	"github.com/cambridge-collection/cudl-pack/internal/schema"
)

// ErrSameDirectory is returned when output would overwrite the input files.
var ErrSameDirectory = errors.New("output directory must differ from input directory")

// Options configures a Packer.
type Options struct {
	Converter *convert.Converter
	Generate  internalitem.GenerateOptions
	Logger    *slog.Logger

	// Terse reports schema violations on a single line.
	Terse bool
}

// Packer converts item documents using a single Converter.
type Packer struct {
	converter *convert.Converter
	generate  internalitem.GenerateOptions
	terse     bool
	logger    *slog.Logger
}

// New creates a Packer. A nil Converter gets the default plugins.
func New(opts Options) *Packer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := opts.Converter
	if c == nil {
		c = convert.WithDefaultPlugins(convert.Config{Logger: logger})
	}
	return &Packer{
		converter: c,
		generate:  opts.Generate,
		terse:     opts.Terse,
		logger:    logger,
	}
}

// FromConfig builds a Packer from configuration: the default plugins when
// enabled, then the configured extra plugins in order.
//
// ReferenceNamespacePlugin replaces the default InlineNamespacePlugin, since
// its loader handles inline maps too and the inline plugin rejects references.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Packer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := convert.New(convert.Config{
		Logger:          logger,
		PageConcurrency: cfg.Conversion.PageConcurrency,
	})

	resolveReferences := slices.Contains(cfg.Conversion.Plugins, convert.ReferenceNamespacePluginName)

	var plugins []convert.Plugin
	if cfg.Conversion.DefaultPlugins {
		for _, p := range convert.DefaultPlugins() {
			if resolveReferences && p.Name() == convert.InlineNamespacePluginName {
				continue
			}
			plugins = append(plugins, p)
		}
	}
	extra, err := convert.PluginsByName(cfg.Conversion.Plugins, convert.PluginDeps{
		Namespaces: NamespaceLoader(cfg.Namespaces, logger),
	})
	if err != nil {
		return nil, err
	}
	plugins = append(plugins, extra...)

	for _, p := range plugins {
		if err := c.Apply(p); err != nil {
			return nil, err
		}
	}

	return New(Options{
		Converter: c,
		Generate: internalitem.GenerateOptions{
			SkipValidation: !cfg.Conversion.PostValidate,
			Indent:         cfg.Conversion.Indent,
		},
		Logger: logger,
	}), nil
}

// NamespaceLoader creates the loader used to resolve @namespace references.
func NamespaceLoader(cfg config.NamespacesCfg, logger *slog.Logger) *nsref.Loader {
	return &nsref.Loader{
		Resolver: &nsref.SchemeResolver{
			File: &nsref.FileResolver{Dir: cfg.ResolvedDir()},
			HTTP: nsref.NewHTTPResolver(nsref.HTTPConfig{
				Timeout:    cfg.HTTPTimeout(),
				MaxRetries: cfg.MaxRetries,
				Logger:     logger,
			}),
		},
	}
}

// Converter returns the Packer's converter.
func (p *Packer) Converter() *convert.Converter {
	return p.converter
}

// WithTerse returns a copy of p that reports schema violations on a single
// line when terse is set.
func (p *Packer) WithTerse(terse bool) *Packer {
	cp := *p
	cp.terse = terse
	return &cp
}

// Convert converts a package item JSON document. input names the document
// in error messages.
func (p *Packer) Convert(ctx context.Context, data []byte, input string) ([]byte, error) {
	it, err := item.Parse(data, schema.Options{Input: input, Terse: p.terse})
	if err != nil {
		return nil, err
	}

	out, err := p.converter.Convert(ctx, it)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}

	result, err := internalitem.Generate(out, p.generate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return result, nil
}

// ConvertFile converts the item at src and writes the result to dest,
// creating dest's directory if needed.
func (p *Packer) ConvertFile(ctx context.Context, src, dest string) error {
	start := time.Now()

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read item: %w", err)
	}

	out, err := p.Convert(ctx, data, src)
	if err != nil {
		return err
	}

	if err := writeFile(dest, out); err != nil {
		return err
	}
	p.logger.Debug("converted item", "source", src, "dest", dest, "duration", time.Since(start))
	return nil
}

// OutputPath returns where the conversion of src is written in outDir.
func OutputPath(outDir, src string) string {
	return filepath.Join(outDir, filepath.Base(src))
}

// CheckDirs rejects an output directory that is the input directory.
func CheckDirs(inDir, outDir string) error {
	in, err := filepath.Abs(inDir)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	if in == out {
		return fmt.Errorf("%w: %s", ErrSameDirectory, in)
	}
	return nil
}

// writeFile writes data to path via a temporary file so readers never see
// a partial document.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
