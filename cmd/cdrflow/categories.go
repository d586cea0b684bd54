package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cdrflow/cdrflow/internal/cli"
	"github.com/cdrflow/cdrflow/internal/model"
	"github.com/cdrflow/cdrflow/internal/registry"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage call classification categories",
		Long:  `List, add, update, activate/deactivate, import, and export the categories used to classify call types.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(setActiveCategoryCmd("activate", true))
	cmd.AddCommand(setActiveCategoryCmd("deactivate", false))
	cmd.AddCommand(conflictsCmd())
	cmd.AddCommand(statsCmd())
	cmd.AddCommand(validateCategoriesCmd())
	cmd.AddCommand(exportCategoriesCmd())
	cmd.AddCommand(importCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found. Use 'cdrflow categories add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintln(w, "NAME\tPRICE/MIN\tMARKUP\tACTIVE\tPATTERNS")
			for _, cat := range categories {
				markup := "-"
				if cat.MarkupPercent != nil {
					markup = fmt.Sprintf("%.1f%%", *cat.MarkupPercent)
				}
				active := "yes"
				if !cat.IsActive {
					active = "no"
				}
				fmt.Fprintf(w, "%s\t%.4f %s\t%s\t%s\t%s\n",
					cat.Name, cat.PricePerMinute, cat.Currency, markup, active,
					strings.Join(cat.Patterns, ", "))
			}

			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		displayName string
		description string
		currency    string
		patterns    []string
		price       float64
		markup      float64
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			cat := model.Category{
				Name:           args[0],
				DisplayName:    displayName,
				Description:    description,
				Currency:       currency,
				Patterns:       patterns,
				PricePerMinute: price,
				IsActive:       true,
			}
			if cmd.Flags().Changed("markup") {
				cat.MarkupPercent = &markup
			}
			if cat.DisplayName == "" {
				cat.DisplayName = cat.Name
			}

			if err := registry.New(store).Add(ctx, cat); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Category %s added.", strings.ToUpper(args[0]))))
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "human-readable name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&currency, "currency", "EUR", "price currency")
	cmd.Flags().StringSliceVar(&patterns, "pattern", nil, "matching pattern (repeatable)")
	cmd.Flags().Float64Var(&price, "price", 0, "price per minute")
	cmd.Flags().Float64Var(&markup, "markup", 0, "markup percent override")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		displayName string
		description string
		currency    string
		patterns    []string
		price       float64
		markup      float64
		clearMarkup bool
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update an existing category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var fields registry.Fields
			if cmd.Flags().Changed("display-name") {
				fields.DisplayName = &displayName
			}
			if cmd.Flags().Changed("description") {
				fields.Description = &description
			}
			if cmd.Flags().Changed("currency") {
				fields.Currency = &currency
			}
			if cmd.Flags().Changed("pattern") {
				fields.Patterns = &patterns
			}
			if cmd.Flags().Changed("price") {
				fields.PricePerMinute = &price
			}
			if cmd.Flags().Changed("markup") {
				fields.MarkupPercent = &markup
			}
			fields.ClearMarkup = clearMarkup

			if err := registry.New(store).Update(ctx, args[0], fields); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Category %s updated.", strings.ToUpper(args[0]))))
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "human-readable name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&currency, "currency", "", "price currency")
	cmd.Flags().StringSliceVar(&patterns, "pattern", nil, "matching pattern (replaces the full list)")
	cmd.Flags().Float64Var(&price, "price", 0, "price per minute")
	cmd.Flags().Float64Var(&markup, "markup", 0, "markup percent override")
	cmd.Flags().BoolVar(&clearMarkup, "clear-markup", false, "remove the markup override")

	return cmd
}

func setActiveCategoryCmd(verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <name>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := registry.New(store).SetActive(ctx, args[0], active); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Category %s %sd.", strings.ToUpper(args[0]), verb)))
			return nil
		},
	}
}

func conflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Detect overlapping patterns between active categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			snapshot, err := registry.New(store).Snapshot(ctx)
			if err != nil {
				return err
			}

			conflicts := snapshot.DetectConflicts()
			if len(conflicts) == 0 {
				fmt.Println(cli.SuccessStyle.Render("No pattern conflicts detected."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintln(w, "SEVERITY\tCATEGORY A\tPATTERN A\tCATEGORY B\tPATTERN B")
			for _, c := range conflicts {
				severity := string(c.Severity)
				switch c.Severity {
				case registry.SeverityHigh:
					severity = cli.ErrorStyle.Render(severity)
				case registry.SeverityMedium:
					severity = cli.WarningStyle.Render(severity)
				default:
					severity = cli.SubtleStyle.Render(severity)
				}
				fmt.Fprintf(w, "%s\t%s\t%q\t%s\t%q\n",
					severity, c.CategoryA, c.PatternA, c.CategoryB, c.PatternB)
			}

			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show registry statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := registry.New(store).Stats(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Category registry"))
			fmt.Printf("  Categories: %d (%d active, %d inactive)\n",
				st.TotalCategories, st.ActiveCategories, st.InactiveCategories)
			fmt.Printf("  Patterns:   %d\n", st.TotalPatterns)
			fmt.Printf("  Price/min:  min %.4f, max %.4f, avg %.4f\n",
				st.PriceMin, st.PriceMax, st.PriceAvg)
			fmt.Printf("  Currencies: %s\n", strings.Join(st.Currencies, ", "))
			return nil
		},
	}
}

func validateCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Run a full consistency sweep over the category set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			errs, err := registry.New(store).ValidateAll(ctx)
			if err != nil {
				return err
			}

			if len(errs) == 0 {
				fmt.Println(cli.SuccessStyle.Render("All categories are valid."))
				return nil
			}

			for _, e := range errs {
				fmt.Println(cli.ErrorStyle.Render("  " + e.Error()))
			}
			return fmt.Errorf("%d categories failed validation", len(errs))
		},
	}
}

func exportCategoriesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the category set as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			data, err := registry.New(store).Export(ctx)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Println(cli.SuccessStyle.Render("Categories exported to " + output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func importCategoriesCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import categories from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := registry.New(store).Import(ctx, data, !replace); err != nil {
				return err
			}

			mode := "merged into"
			if replace {
				mode = "replaced"
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Categories %s the registry.", mode)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "replace the whole registry instead of merging")
	return cmd
}
