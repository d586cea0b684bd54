package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cdrflow/cdrflow/internal/cli"
	"github.com/cdrflow/cdrflow/internal/model"
)

func contractsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "Manage billing contracts",
		Long:  `List and edit the contracts that carry per-category price overrides and markup.`,
	}

	cmd.AddCommand(listContractsCmd())
	cmd.AddCommand(setContractCmd())

	return cmd
}

func listContractsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all contracts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			contracts, err := store.ListContracts(ctx)
			if err != nil {
				return fmt.Errorf("failed to get contracts: %w", err)
			}

			if len(contracts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No contracts found. Use 'cdrflow contracts set' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintln(w, "CODE\tCLIENT\tMARKUP\tOVERRIDES")
			for _, c := range contracts {
				markup := "-"
				if c.MarkupPercent != nil {
					markup = fmt.Sprintf("%.1f%%", *c.MarkupPercent)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					c.Code, c.ClientLabel, markup, formatOverrides(c.PriceOverrides))
			}

			return nil
		},
	}
}

func setContractCmd() *cobra.Command {
	var (
		clientLabel string
		overrides   []string
		markup      float64
	)

	cmd := &cobra.Command{
		Use:   "set <code>",
		Short: "Create or update a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			code := strings.TrimSpace(args[0])
			if code == "" {
				return fmt.Errorf("contract code is required")
			}

			contract, err := store.GetContract(ctx, code)
			if err != nil {
				return fmt.Errorf("failed to get contract: %w", err)
			}
			if contract == nil {
				contract = &model.Contract{Code: code}
			}

			if cmd.Flags().Changed("client") {
				contract.ClientLabel = clientLabel
			}
			if cmd.Flags().Changed("markup") {
				contract.MarkupPercent = &markup
			}
			if len(overrides) > 0 {
				if contract.PriceOverrides == nil {
					contract.PriceOverrides = make(map[string]float64, len(overrides))
				}
				for _, o := range overrides {
					name, price, err := parseOverride(o)
					if err != nil {
						return err
					}
					contract.PriceOverrides[name] = price
				}
			}

			if err := store.UpsertContract(ctx, *contract); err != nil {
				return fmt.Errorf("failed to save contract: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Contract %s saved.", code)))
			return nil
		},
	}

	cmd.Flags().StringVar(&clientLabel, "client", "", "client label for the contract")
	cmd.Flags().Float64Var(&markup, "markup", 0, "markup percent override")
	cmd.Flags().StringSliceVar(&overrides, "override", nil, "per-category price override as CATEGORY=PRICE (repeatable)")

	return cmd
}

// parseOverride splits a CATEGORY=PRICE flag value.
func parseOverride(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.ToUpper(strings.TrimSpace(name))
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid override %q: expected CATEGORY=PRICE", s)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || price < 0 {
		return "", 0, fmt.Errorf("invalid override price in %q", s)
	}
	return name, price, nil
}

func formatOverrides(overrides map[string]float64) string {
	if len(overrides) == 0 {
		return "-"
	}
	pairs := make([]string, 0, len(overrides))
	for name, price := range overrides {
		pairs = append(pairs, fmt.Sprintf("%s=%.4f", name, price))
	}
	// Map order is random; keep the listing stable.
	for i := 0; i < len(pairs); i++ {
		for j := i + 1; j < len(pairs); j++ {
			if pairs[j] < pairs[i] {
				pairs[i], pairs[j] = pairs[j], pairs[i]
			}
		}
	}
	return strings.Join(pairs, ", ")
}
