package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cambridge-collection/cudl-pack/internal/config"
	"github.com/cambridge-collection/cudl-pack/internal/output"
	"github.com/cambridge-collection/cudl-pack/internal/svcctx"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cudl-pack configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration file",
	Long: `Write the default configuration to path, or to config.yaml in the
cudl-pack home directory when path is omitted. The home directory and its
namespaces directory are created if needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h := svcctx.HomeFrom(cmd.Context())

		path, exists := h.ConfigPath(), h.ConfigExists()
		if len(args) == 1 {
			path = args[0]
			_, err := os.Stat(path)
			exists = err == nil
		} else if err := h.EnsureExists(); err != nil {
			return err
		}

		if exists && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig(cmd)

		// Round trip through YAML so keys match the config file.
		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return err
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return err
		}
		return output.Output(doc)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
