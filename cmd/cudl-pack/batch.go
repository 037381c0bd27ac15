package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cambridge-collection/cudl-pack/internal/batch"
	"github.com/cambridge-collection/cudl-pack/internal/output"
	"github.com/cambridge-collection/cudl-pack/internal/pack"
	"github.com/cambridge-collection/cudl-pack/internal/svcctx"
)

var (
	batchWorkers int
	batchPattern string
)

// BatchFailure describes a file that failed to convert.
type BatchFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// BatchReport summarises a batch conversion.
type BatchReport struct {
	Converted int            `json:"converted"`
	Failed    []BatchFailure `json:"failed"`
	Duration  string         `json:"duration"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <input-dir> <output-dir>",
	Short: "Convert every item in a directory",
	Long: `Convert every package item in a directory, writing internal items with
the same file names to the output directory.

Files are converted concurrently by batch.max_workers workers. Failures are
reported per file and do not stop the batch.

Examples:
  cudl-pack batch items/ out/
  cudl-pack batch items/ out/ --workers 8 --pattern 'MS-*.json'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inDir, outDir := args[0], args[1]
		if err := pack.CheckDirs(inDir, outDir); err != nil {
			return err
		}

		cfg := currentConfig(cmd)
		if cmd.Flags().Changed("workers") {
			cfg.Batch.MaxWorkers = batchWorkers
		}
		if cmd.Flags().Changed("pattern") {
			cfg.Batch.Pattern = batchPattern
		}

		p, err := newPacker(cmd, cfg)
		if err != nil {
			return err
		}

		summary, err := batch.Run(ctx, batch.Options{
			InputDir:  inDir,
			OutputDir: outDir,
			Pattern:   cfg.Batch.Pattern,
			Workers:   cfg.Batch.MaxWorkers,
			Logger:    svcctx.LoggerFrom(ctx),
			DestFunc:  pack.OutputPath,
		}, convertUnit(p))
		if err != nil {
			return err
		}

		report := BatchReport{
			Converted: summary.Converted,
			Failed:    make([]BatchFailure, 0, len(summary.Failed)),
			Duration:  summary.Duration.String(),
		}
		for _, f := range summary.Failed {
			report.Failed = append(report.Failed, BatchFailure{File: f.Unit.Source, Error: f.Err.Error()})
		}
		if err := output.Output(report); err != nil {
			return err
		}
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d of %d items failed to convert", len(report.Failed), summary.Total())
		}
		return nil
	},
}

// convertUnit adapts p to a batch handler.
func convertUnit(p *pack.Packer) batch.Handler {
	return func(ctx context.Context, unit *batch.WorkUnit) error {
		return p.ConvertFile(ctx, unit.Source, unit.Dest)
	}
}

func init() {
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "files converted at once (default: batch.max_workers)")
	batchCmd.Flags().StringVar(&batchPattern, "pattern", "", "glob matched against file names (default: batch.pattern)")

	rootCmd.AddCommand(batchCmd)
}
