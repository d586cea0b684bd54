package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cdrflow/cdrflow/internal/cli"
	"github.com/cdrflow/cdrflow/internal/config"
)

func filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Inspect the configured file source",
	}

	cmd.AddCommand(listFilesCmd())

	return cmd
}

func listFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List files available from the configured source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			settings, err := config.Load()
			if err != nil {
				return err
			}

			src, err := buildSource(settings)
			if err != nil {
				return err
			}

			names, err := src.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list source files: %w", err)
			}

			if len(names) == 0 {
				fmt.Println(cli.InfoStyle.Render("No files match the configured source pattern."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d files available", len(names))))
			for _, name := range names {
				fmt.Println("  " + name)
			}
			return nil
		},
	}
}
