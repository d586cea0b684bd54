package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/cdrflow/cdrflow/internal/cli"
	"github.com/cdrflow/cdrflow/internal/common"
	"github.com/cdrflow/cdrflow/internal/pipeline"
)

func runCmd() *cobra.Command {
	var showErrors bool

	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Run the classification pipeline",
		Long: `Fetch CDR files from the configured source, classify and cost every
call record, and write per-contract and summary report artifacts.

With no arguments, every file the source lists (after pattern
filtering) is processed. Naming files restricts the run to them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, settings, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var bar *progressbar.ProgressBar
			progress := func(done, total int) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetWriter(os.Stderr),
						progressbar.OptionShowCount(),
						progressbar.OptionSetWidth(40),
						progressbar.OptionSetDescription("Processing files..."),
					)
				}
				_ = bar.Set(done)
			}

			engine, err := buildEngine(store, settings, pipeline.WithProgress(progress))
			if err != nil {
				return err
			}

			result, err := engine.Run(ctx, args)
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(os.Stderr)
			}
			if err != nil {
				if errors.Is(err, common.ErrRunInProgress) {
					fmt.Println(cli.WarningStyle.Render("A run is already in progress; try again later."))
					return nil
				}
				printRunResult(result, showErrors)
				return err
			}

			printRunResult(result, showErrors)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showErrors, "show-errors", false, "print every collected row/file error")
	return cmd
}

func printRunResult(result *pipeline.RunResult, showErrors bool) {
	if result == nil {
		return
	}

	fmt.Println(cli.TitleStyle.Render("Pipeline run " + result.State.String()))
	fmt.Printf("  Period:          %s\n", result.Period)
	fmt.Printf("  Processed files: %d\n", result.ProcessedFiles)
	fmt.Printf("  Records:         %d\n", result.TotalRecords)
	if result.OpaqueFiles > 0 {
		fmt.Printf("  Opaque files:    %d\n", result.OpaqueFiles)
	}

	switch {
	case result.ErrorCount() == 0:
		fmt.Println(cli.SuccessStyle.Render("  No errors."))
	default:
		fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("  Errors:          %d (%d files, %d rows)",
			result.ErrorCount(), len(result.FileErrors), len(result.RowErrors))))
	}

	if showErrors {
		for _, fe := range result.FileErrors {
			fmt.Println(cli.ErrorStyle.Render("    file:  " + fe.Error()))
		}
		for _, re := range result.RowErrors {
			fmt.Println(cli.SubtleStyle.Render("    row:   " + re.Error()))
		}
	}

	if len(result.GeneratedFiles) > 0 {
		fmt.Println(cli.InfoStyle.Render("  Artifacts:"))
		for _, f := range result.GeneratedFiles {
			fmt.Printf("    %s\n", f)
		}
	}
}
