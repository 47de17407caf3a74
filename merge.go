package main

import (
	"fmt"
	"io"
	"time"

	"github.com/nconklindev/scanmerge/internal/config"
	"github.com/nconklindev/scanmerge/internal/logger"
	"github.com/nconklindev/scanmerge/internal/merger"
	"github.com/nconklindev/scanmerge/internal/progress"
	"github.com/nconklindev/scanmerge/internal/types"
	"github.com/nconklindev/scanmerge/internal/ui"

	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge [report.xlsx...]",
		Short: "Merge scan reports without the interactive UI",
		Example: `  scanmerge merge site_a.xlsx site_b.xlsx
  scanmerge merge -o combined.xlsx reports/*.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer logger.Close()

			if output == "" {
				output = cfg.DefaultFilename(time.Now())
			}
			outputFile := cfg.OutputPath(output)

			if err := merger.CheckInputs(args, outputFile); err != nil {
				logger.Warn("Please pass scan report files and an output filename")
				return err
			}
			if err := cfg.EnsureOutputDir(); err != nil {
				return err
			}

			result, err := runMerge(cmd.ErrOrStderr(), args, outputFile)
			if err != nil {
				logger.Error("An error occurred while merging files: %v", err)
				return err
			}

			printSummary(cmd.OutOrStdout(), cfg, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output filename (default: <prefix><date>.xlsx in the output dir)")

	return cmd
}

// runMerge merges on a goroutine while the progress bar drains its channel
func runMerge(console io.Writer, inputs []string, outputFile string) (*types.MergeResult, error) {
	progressChan := make(chan float64, 100)
	bar := progress.New(console, "[Merging]")

	var (
		result *types.MergeResult
		err    error
	)
	go func() {
		result, err = merger.MergeFiles(inputs, outputFile, progressChan)
		close(progressChan)
	}()

	bar.Track(progressChan)
	_ = bar.Finish()

	return result, err
}

func printSummary(w io.Writer, cfg *config.Config, result *types.MergeResult) {
	fmt.Fprintln(w, ui.SuccessStyle.Render("✓ Files merged successfully!"))
	fmt.Fprintf(w, "Output: %s\n", result.OutputFile)
	for _, sheet := range result.Sheets {
		fmt.Fprintf(w, "  %-31s %6d rows\n", sheet.Name, sheet.Rows-sheet.Separators)
	}
	fmt.Fprintf(w, "Rows merged: %d from %d file(s)\n", result.TotalRows(), len(result.InputFiles))

	if logger.IsVerbose() {
		fmt.Fprintf(w, "Log: %s (output dir %s)\n", logger.GetLogFilePath(), cfg.Output.Dir)
	}
}
