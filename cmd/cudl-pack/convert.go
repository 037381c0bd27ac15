package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cambridge-collection/cudl-pack/internal/output"
)

var (
	convertOut        string
	convertCompact    bool
	convertNoValidate bool
	convertTerse      bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [item.json]",
	Short: "Convert a package item to an internal item",
	Long: `Convert a single package item document to an internal item.

The item is read from the named file, or from stdin when the argument is
omitted or "-". The result is written to stdout unless --out is given.

Examples:
  cudl-pack convert item.json
  cudl-pack convert item.json --out internal/item.json
  cat item.json | cudl-pack convert -o yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		src := "-"
		if len(args) == 1 {
			src = args[0]
		}

		cfg := currentConfig(cmd)
		if convertCompact {
			cfg.Conversion.Indent = ""
		}
		if convertNoValidate {
			cfg.Conversion.PostValidate = false
		}
		p, err := newPacker(cmd, cfg)
		if err != nil {
			return err
		}
		p = p.WithTerse(convertTerse)

		if convertOut != "" && src != "-" {
			return p.ConvertFile(ctx, src, convertOut)
		}

		data, input, err := readInput(cmd, src)
		if err != nil {
			return err
		}
		result, err := p.Convert(ctx, data, input)
		if err != nil {
			return err
		}

		if convertOut != "" {
			return os.WriteFile(convertOut, result, 0o644)
		}
		return output.FromJSON(cmd.OutOrStdout(), output.GetFormat(), result)
	},
}

// readInput reads src, or stdin for "-". It returns the name used for the
// input in error messages.
func readInput(cmd *cobra.Command, src string) ([]byte, string, error) {
	if src == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, "stdin", nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, "", err
	}
	return data, src, nil
}

func init() {
	convertCmd.Flags().StringVar(&convertOut, "out", "", "write the internal item to this file")
	convertCmd.Flags().BoolVar(&convertCompact, "compact", false, "write compact JSON")
	convertCmd.Flags().BoolVar(&convertNoValidate, "no-validate", false, "skip validation of the generated internal item")
	convertCmd.Flags().BoolVar(&convertTerse, "terse", false, "report schema violations on one line")

	rootCmd.AddCommand(convertCmd)
}
