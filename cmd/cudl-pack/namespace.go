package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cambridge-collection/cudl-pack/internal/item"
	"github.com/cambridge-collection/cudl-pack/internal/namespace"
	"github.com/cambridge-collection/cudl-pack/internal/output"
	"github.com/cambridge-collection/cudl-pack/internal/pack"
	"github.com/cambridge-collection/cudl-pack/internal/svcctx"
)

var (
	nsItemFile string
	nsMapFile  string
)

// Mapping is one converted value.
type Mapping struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

var namespaceCmd = &cobra.Command{
	Use:     "namespace",
	Aliases: []string{"ns"},
	Short:   "Expand and compact CURIEs",
	Long: `Expand CURIEs to URIs, or compact URIs to CURIEs.

The namespace is the default vocabularies plus either the @namespace of an
item (--item) or a namespace document (--map). References in an item's
@namespace are resolved like the ReferenceNamespacePlugin does.`,
}

var namespaceExpandCmd = &cobra.Command{
	Use:   "expand <curie>...",
	Short: "Expand CURIEs to URIs",
	Example: `  cudl-pack namespace expand cdl-page:image
  cudl-pack ns expand ex:thing --item item.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mapValues(cmd, args, (*namespace.Namespace).Expand)
	},
}

var namespaceCompactCmd = &cobra.Command{
	Use:     "compact <uri>...",
	Short:   "Compact URIs to CURIEs",
	Example: `  cudl-pack namespace compact https://schemas.cudl.lib.cam.ac.uk/package/v1/item.json#/definitions/data/link`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mapValues(cmd, args, (*namespace.Namespace).Compact)
	},
}

func mapValues(cmd *cobra.Command, args []string, fn func(*namespace.Namespace, string) string) error {
	ns, err := loadNamespace(cmd)
	if err != nil {
		return err
	}
	mappings := make([]Mapping, len(args))
	for i, a := range args {
		mappings[i] = Mapping{Input: a, Output: fn(ns, a)}
	}
	return output.Output(mappings)
}

// loadNamespace builds the namespace selected by --item or --map.
func loadNamespace(cmd *cobra.Command) (*namespace.Namespace, error) {
	switch {
	case nsItemFile != "" && nsMapFile != "":
		return nil, fmt.Errorf("--item and --map are mutually exclusive")
	case nsMapFile != "":
		data, err := os.ReadFile(nsMapFile)
		if err != nil {
			return nil, err
		}
		var m namespace.Map
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%s is not a namespace document: %w", nsMapFile, err)
		}
		return namespace.FromMap(m), nil
	case nsItemFile != "":
		data, err := os.ReadFile(nsItemFile)
		if err != nil {
			return nil, err
		}
		it, err := item.Decode(data)
		if err != nil {
			return nil, err
		}
		return itemNamespace(cmd, it)
	default:
		return namespace.Empty(), nil
	}
}

// itemNamespace loads the namespace declared by it, resolving references.
func itemNamespace(cmd *cobra.Command, it *item.Item) (*namespace.Namespace, error) {
	ctx := cmd.Context()
	cfg := currentConfig(cmd)
	return pack.NamespaceLoader(cfg.Namespaces, svcctx.LoggerFrom(ctx)).Load(ctx, it.Namespace)
}

func init() {
	namespaceCmd.PersistentFlags().StringVar(&nsItemFile, "item", "", "use the @namespace of this package item")
	namespaceCmd.PersistentFlags().StringVar(&nsMapFile, "map", "", "use this namespace document (a JSON map of prefix to URI)")

	namespaceCmd.AddCommand(namespaceExpandCmd)
	namespaceCmd.AddCommand(namespaceCompactCmd)
	rootCmd.AddCommand(namespaceCmd)
}
