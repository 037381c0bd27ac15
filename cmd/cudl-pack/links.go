package main

import (
	"github.com/spf13/cobra"

	"github.com/cambridge-collection/cudl-pack/internal/item"
	"github.com/cambridge-collection/cudl-pack/internal/output"
	"github.com/cambridge-collection/cudl-pack/internal/schema"
)

var linkRoles []string

var linksCmd = &cobra.Command{
	Use:   "links <item.json>",
	Short: "List the links an item declares",
	Long: `List the href of every cdl-data:link entry in a package item that carries
all of the given roles. Roles may be CURIEs or URIs.

Examples:
  cudl-pack links item.json
  cudl-pack links item.json --role cdl-role:source`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, input, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		it, err := item.Parse(data, schema.Options{Input: input})
		if err != nil {
			return err
		}

		ns, err := itemNamespace(cmd, it)
		if err != nil {
			return err
		}

		hrefs, err := it.Links(ns, linkRoles...)
		if err != nil {
			return err
		}
		if hrefs == nil {
			hrefs = []string{}
		}
		return output.Output(hrefs)
	},
}

func init() {
	linksCmd.Flags().StringSliceVar(&linkRoles, "role", nil, "required role (repeatable)")

	rootCmd.AddCommand(linksCmd)
}
