package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sehyunpark/moneybook/internal/cli"
	"github.com/sehyunpark/moneybook/internal/common"
	"github.com/sehyunpark/moneybook/internal/model"
	"github.com/sehyunpark/moneybook/internal/report"
)

func statsCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show income/expense statistics",
		Long:  `Totals, per-section breakdowns and monthly sums over all entries, or over one month with --month.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			transactions, err := store.GetTransactions(ctx)
			if err != nil {
				return common.NewUserError("Failed to load transactions", err)
			}
			if month != "" {
				transactions = report.FilterMonth(transactions, month)
			}

			if len(transactions) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions to summarize."))
				return nil
			}

			summary := report.Summarize(transactions)
			fmt.Println(cli.TitleStyle.Render(cli.ChartIcon + " Summary"))
			fmt.Printf("  %s ₩%d\n", cli.BoldStyle.Render("수입"), summary.TotalIncome)
			fmt.Printf("  %s ₩%d\n", cli.BoldStyle.Render("지출"), summary.TotalExpense)
			fmt.Printf("  %s ₩%d (%d entries)\n\n", cli.BoldStyle.Render("잔액"), summary.Balance(), summary.Count)

			for _, txnType := range []model.CategoryType{model.CategoryTypeIncome, model.CategoryTypeExpense} {
				totals := report.BySection(transactions, txnType)
				if len(totals) == 0 {
					continue
				}
				fmt.Println(cli.TitleStyle.Render(txnType.Localized() + " by 관"))
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				for _, row := range totals {
					fmt.Fprintf(w, "  %s\t₩%d\n", row.Section, row.Amount)
				}
				_ = w.Flush()
				fmt.Println()
			}

			if month == "" {
				months := report.ByMonth(transactions)
				if len(months) > 0 {
					fmt.Println(cli.TitleStyle.Render("Monthly"))
					w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
					fmt.Fprintf(w, "  %s\t%s\t%s\n",
						cli.BoldStyle.Render("월"),
						cli.BoldStyle.Render("수입"),
						cli.BoldStyle.Render("지출"))
					for _, row := range months {
						fmt.Fprintf(w, "  %s\t₩%d\t₩%d\n", row.Month, row.Income, row.Expense)
					}
					_ = w.Flush()
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "restrict to one month (yyyy-mm)")
	return cmd
}
