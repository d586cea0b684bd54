package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cdrflow/cdrflow/internal/cli"
	"github.com/cdrflow/cdrflow/internal/common"
	"github.com/cdrflow/cdrflow/internal/config"
	"github.com/cdrflow/cdrflow/internal/model"
	"github.com/cdrflow/cdrflow/internal/report"
)

func reportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect generated report artifacts",
	}

	cmd.AddCommand(listReportsCmd())
	cmd.AddCommand(showReportCmd())

	return cmd
}

func openReportStore() (*report.Store, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	return report.NewStore(settings.ReportsDir)
}

func listReportsCmd() *cobra.Command {
	var (
		kind     string
		contract string
		period   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored report artifacts",
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := openReportStore()
			if err != nil {
				return err
			}

			filter := report.ListFilter{
				Kind:         model.ReportKind(kind),
				ContractCode: contract,
				Period:       period,
			}
			items, err := store.List(filter)
			if err != nil {
				return err
			}

			if len(items) == 0 {
				fmt.Println(cli.InfoStyle.Render("No reports found."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintln(w, "FILE\tKIND\tCONTRACT\tPERIOD\tSIZE\tMODIFIED")
			for _, md := range items {
				code := md.ContractCode
				if code == "" {
					code = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					md.Filename, md.Kind, code, md.Period, md.Size,
					md.ModTime.Format("2006-01-02 15:04:05"))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind (contract or summary)")
	cmd.Flags().StringVar(&contract, "contract", "", "filter by contract code")
	cmd.Flags().StringVar(&period, "period", "", "filter by period (YYYY-MM)")

	return cmd
}

func showReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <filename>",
		Short: "Display one report artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := openReportStore()
			if err != nil {
				return err
			}

			r, err := store.Read(args[0])
			switch {
			case errors.Is(err, common.ErrNotFound):
				return fmt.Errorf("report %s not found", args[0])
			case errors.Is(err, common.ErrCorruptArtifact):
				return fmt.Errorf("report %s is corrupt: %w", args[0], err)
			case err != nil:
				return err
			}

			switch rep := r.(type) {
			case *model.ContractReport:
				printContractReport(rep)
			case *model.SummaryReport:
				printSummaryReport(rep)
			}
			return nil
		},
	}
}

func printContractReport(r *model.ContractReport) {
	fmt.Println(cli.TitleStyle.Render("Contract report " + r.ContractCode))
	fmt.Printf("  Client:    %s\n", r.ClientCity)
	fmt.Printf("  Generated: %s\n", r.GenerationDate)
	fmt.Printf("  Calls:     %d\n", r.TotalCalls)
	fmt.Printf("  Duration:  %.2f min\n", r.TotalDurationMinutes)
	fmt.Printf("  Cost:      %.2f\n", r.TotalCost)

	if len(r.CallTypesBreakdown) > 0 {
		fmt.Println(cli.BoldStyle.Render("\n  By category"))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  CATEGORY\tCALLS\tSECONDS\tCOST\tCOST/MIN")
		for _, name := range sortedKeys(r.CallTypesBreakdown) {
			e := r.CallTypesBreakdown[name]
			fmt.Fprintf(w, "  %s\t%d\t%d\t%.4f\t%.4f\n",
				name, e.Calls, e.DurationSeconds, e.Cost, e.CostPerMinute)
		}
		w.Flush()
	}

	if len(r.DailyBreakdown) > 0 {
		fmt.Println(cli.BoldStyle.Render("\n  By day"))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  DAY\tCALLS\tMINUTES\tCOST")
		for _, day := range sortedKeys(r.DailyBreakdown) {
			e := r.DailyBreakdown[day]
			fmt.Fprintf(w, "  %s\t%d\t%.2f\t%.2f\n", day, e.Calls, e.DurationMinutes, e.Cost)
		}
		w.Flush()
	}
}

func printSummaryReport(r *model.SummaryReport) {
	fmt.Println(cli.TitleStyle.Render("Run summary"))
	fmt.Printf("  Generated: %s\n", r.GenerationDate)
	fmt.Printf("  Contracts: %d\n", r.ContractsProcessed)
	fmt.Printf("  Calls:     %d\n", r.TotalCalls)
	fmt.Printf("  Duration:  %.2f min\n", r.TotalDurationMinutes)
	fmt.Printf("  Cost:      %.2f\n", r.TotalCost)

	if len(r.CallTypesBreakdown) > 0 {
		fmt.Println(cli.BoldStyle.Render("\n  By category"))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  CATEGORY\tCALLS\tMINUTES\tCOST")
		for _, name := range sortedKeys(r.CallTypesBreakdown) {
			e := r.CallTypesBreakdown[name]
			fmt.Fprintf(w, "  %s\t%d\t%.2f\t%.2f\n", name, e.Calls, e.DurationMinutes, e.Cost)
		}
		w.Flush()
	}

	printRanking("Top by cost", r.TopContracts.TopByCost)
	printRanking("Top by calls", r.TopContracts.TopByCalls)
}

func printRanking(title string, entries []model.TopContract) {
	if len(entries) == 0 {
		return
	}
	fmt.Println(cli.BoldStyle.Render("\n  " + title))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  CONTRACT\tCLIENT\tCALLS\tCOST")
	for _, e := range entries {
		fmt.Fprintf(w, "  %s\t%s\t%d\t%.2f\n", e.ContractCode, e.ClientCity, e.TotalCalls, e.TotalCost)
	}
	w.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
