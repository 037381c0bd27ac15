package main

import (
	"context"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/cambridge-collection/cudl-pack/internal/batch"
	"github.com/cambridge-collection/cudl-pack/internal/config"
	"github.com/cambridge-collection/cudl-pack/internal/pack"
	"github.com/cambridge-collection/cudl-pack/internal/svcctx"
	"github.com/cambridge-collection/cudl-pack/internal/watch"
)

var (
	watchPattern string
	watchInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <input-dir> <output-dir>",
	Short: "Reconvert items whenever they change",
	Long: `Watch a directory and convert each package item when it is written.

Changes to the config file are picked up without a restart: subsequent
conversions use the reloaded plugin and output settings.

Examples:
  cudl-pack watch items/ out/
  cudl-pack watch items/ out/ --initial`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := svcctx.LoggerFrom(ctx)
		inDir, outDir := args[0], args[1]
		if err := pack.CheckDirs(inDir, outDir); err != nil {
			return err
		}

		cfg := currentConfig(cmd)
		if cmd.Flags().Changed("pattern") {
			cfg.Batch.Pattern = watchPattern
		}

		p, err := newPacker(cmd, cfg)
		if err != nil {
			return err
		}
		var current atomic.Pointer[pack.Packer]
		current.Store(p)

		if cm := svcctx.ConfigFrom(ctx); cm.ConfigFile() != "" {
			cm.OnChange(func(*config.Config) {
				next, err := newPacker(cmd, currentConfig(cmd))
				if err != nil {
					logger.Error("ignoring config change", "error", err)
					return
				}
				current.Store(next)
				logger.Info("config reloaded", "file", cm.ConfigFile())
			})
			cm.WatchConfig()
		}

		handler := func(ctx context.Context, unit *batch.WorkUnit) error {
			return current.Load().ConvertFile(ctx, unit.Source, unit.Dest)
		}

		if watchInitial {
			if _, err := batch.Run(ctx, batch.Options{
				InputDir:  inDir,
				OutputDir: outDir,
				Pattern:   cfg.Batch.Pattern,
				Workers:   cfg.Batch.MaxWorkers,
				Logger:    logger,
				DestFunc:  pack.OutputPath,
			}, handler); err != nil {
				return err
			}
		}

		w, err := watch.New(watch.Config{
			Dir:       inDir,
			OutputDir: outDir,
			Pattern:   cfg.Batch.Pattern,
			Logger:    logger,
			Handler:   handler,
			DestFunc:  pack.OutputPath,
		})
		if err != nil {
			return err
		}
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "", "glob matched against file names (default: batch.pattern)")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "convert every matching item before watching")

	rootCmd.AddCommand(watchCmd)
}
