package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cambridge-collection/cudl-pack/internal/config"
	"github.com/cambridge-collection/cudl-pack/internal/home"
	"github.com/cambridge-collection/cudl-pack/internal/logging"
	"github.com/cambridge-collection/cudl-pack/internal/output"
	"github.com/cambridge-collection/cudl-pack/internal/pack"
	"github.com/cambridge-collection/cudl-pack/internal/svcctx"
	"github.com/cambridge-collection/cudl-pack/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "cudl-pack",
	Short: "Convert package items into internal items",
	Long: `cudl-pack converts package item documents, the externally authored
description of a digitised library object, into the internal item format
used by the viewer.

A conversion:
  - orders pages and derives their image and transcription URLs
  - builds the nested logical structure from description page ranges
  - flattens descriptive metadata into displayable sections`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		output.SetFormat(format)

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}

		cm, err := config.NewManager(cfgFile, ".", h.Path())
		if err != nil {
			return err
		}
		cfg := cm.Get()

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		logger, err := logging.New(os.Stderr, level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		if f := cm.ConfigFile(); f != "" {
			logger.Debug("loaded config", "file", f)
		}

		cmd.SetContext(svcctx.WithServices(cmd.Context(), &svcctx.Services{
			Config: cm,
			Logger: logger,
			Home:   h,
		}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.cudl-pack/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "cudl-pack home directory (default: ~/.cudl-pack)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", string(output.DefaultFormat), "output format: json or yaml",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)",
	)

	rootCmd.AddCommand(versionCmd)
}

// currentConfig returns a copy of the loaded configuration, with the
// namespace directory defaulted to the home directory's.
func currentConfig(cmd *cobra.Command) config.Config {
	ctx := cmd.Context()
	cfg := *svcctx.ConfigFrom(ctx).Get()
	if cfg.Namespaces.Dir == "" {
		if h := svcctx.HomeFrom(ctx); h != nil {
			cfg.Namespaces.Dir = h.NamespacesPath()
		}
	}
	return cfg
}

// newPacker builds a Packer from cfg.
func newPacker(cmd *cobra.Command, cfg config.Config) (*pack.Packer, error) {
	return pack.FromConfig(&cfg, svcctx.LoggerFrom(cmd.Context()))
}
