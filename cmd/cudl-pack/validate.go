package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cambridge-collection/cudl-pack/internal/internalitem"
	"github.com/cambridge-collection/cudl-pack/internal/item"
	"github.com/cambridge-collection/cudl-pack/internal/output"
	"github.com/cambridge-collection/cudl-pack/internal/schema"
)

var (
	validateInternal bool
	validateTerse    bool
)

// ValidationResult is the outcome of validating one file.
type ValidationResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate item documents against their schema",
	Long: `Validate package item documents, or internal item documents with
--internal, against the schema for their format.

Exits non-zero if any document is invalid.

Examples:
  cudl-pack validate items/*.json
  cudl-pack validate --internal out/item.json --terse`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := make([]ValidationResult, 0, len(args))
		invalid := 0
		for _, file := range args {
			r := ValidationResult{File: file, Valid: true}
			if err := validateFile(file); err != nil {
				r.Valid = false
				r.Error = err.Error()
				invalid++
			}
			results = append(results, r)
		}

		if err := output.To(cmd.OutOrStdout(), output.GetFormat(), "  ", results); err != nil {
			return err
		}
		if invalid > 0 {
			return fmt.Errorf("%d of %d documents invalid", invalid, len(args))
		}
		return nil
	},
}

func validateFile(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	opts := schema.Options{Input: file, Terse: validateTerse}

	if validateInternal {
		_, err = internalitem.Parse(data, opts)
		return err
	}

	// Decoding catches what the schema can't express, such as an ambiguous
	// @namespace.
	_, err = item.Parse(data, opts)
	return err
}

func init() {
	validateCmd.Flags().BoolVar(&validateInternal, "internal", false, "validate internal items instead of package items")
	validateCmd.Flags().BoolVar(&validateTerse, "terse", false, "report schema violations on one line")

	rootCmd.AddCommand(validateCmd)
}
