package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sehyunpark/moneybook/internal/cli"
	"github.com/sehyunpark/moneybook/internal/common"
	"github.com/sehyunpark/moneybook/internal/csvio"
	"github.com/sehyunpark/moneybook/internal/model"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Manage income and expense entries",
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())
	cmd.AddCommand(clearTransactionsCmd())
	cmd.AddCommand(importTransactionsCmd())
	cmd.AddCommand(exportTransactionsCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, most recent first",
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

			if len(transactions) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions found."))
				return nil
			}
			if limit > 0 && len(transactions) > limit {
				transactions = transactions[:limit]
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("날짜"),
				cli.BoldStyle.Render("유형"),
				cli.BoldStyle.Render("관"),
				cli.BoldStyle.Render("항"),
				cli.BoldStyle.Render("목"),
				cli.BoldStyle.Render("금액"),
				cli.BoldStyle.Render("메모"),
				cli.BoldStyle.Render("ID"))
			for _, txn := range transactions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t₩%d\t%s\t%s\n",
					csvio.NormalizeDate(txn.Date), txn.Type.Localized(),
					txn.Section, txn.Category, txn.Subcategory,
					txn.Amount, txn.Memo,
					cli.SubtleStyle.Render(txn.ID))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n entries (0 = all)")
	return cmd
}

func transactionFlags(cmd *cobra.Command, date, typeFlag, section, category, subcategory, amount, memo *string) {
	cmd.Flags().StringVar(date, "date", "", "entry date (yyyy-mm-dd, dd/mm/yyyy or yyyy.mm.dd)")
	cmd.Flags().StringVar(typeFlag, "type", "", "income or expense (수입/지출)")
	cmd.Flags().StringVar(section, "section", "", "section label (관)")
	cmd.Flags().StringVar(category, "category", "", "category label (항)")
	cmd.Flags().StringVar(subcategory, "subcategory", "", "subcategory label (목), optional")
	cmd.Flags().StringVar(amount, "amount", "", "amount; thousands separators allowed")
	cmd.Flags().StringVar(memo, "memo", "", "free-text memo, optional")
}

func buildTransaction(date, typeFlag, section, category, subcategory, amount, memo string) (model.Transaction, error) {
	txnType, err := model.ParseCategoryType(typeFlag)
	if err != nil {
		return model.Transaction{}, err
	}
	value, err := model.ParseAmount(amount)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		Date:        date,
		Type:        txnType,
		Section:     section,
		Category:    category,
		Subcategory: subcategory,
		Amount:      value,
		Memo:        memo,
	}, nil
}

func addTransactionCmd() *cobra.Command {
	var date, typeFlag, section, category, subcategory, amount, memo string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			txn, err := buildTransaction(date, typeFlag, section, category, subcategory, amount, memo)
			if err != nil {
				return err
			}

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			created, err := store.AddTransaction(ctx, txn)
			if err != nil {
				return common.NewUserError("Failed to add transaction", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %s entry of ₩%d on %s",
				created.Type.Localized(), created.Amount, created.Date)))
			return nil
		},
	}

	transactionFlags(cmd, &date, &typeFlag, &section, &category, &subcategory, &amount, &memo)
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func updateTransactionCmd() *cobra.Command {
	var date, typeFlag, section, category, subcategory, amount, memo string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an entry by id",
		Long:  `Full-record replace: every field of the entry is rewritten from the flags, so supply the complete record.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			txn, err := buildTransaction(date, typeFlag, section, category, subcategory, amount, memo)
			if err != nil {
				return err
			}

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.UpdateTransaction(ctx, args[0], txn); err != nil {
				return common.NewUserError("Failed to update transaction", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated transaction %s", args[0])))
			return nil
		},
	}

	transactionFlags(cmd, &date, &typeFlag, &section, &category, &subcategory, &amount, &memo)
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.DeleteTransaction(ctx, args[0]); err != nil {
				return common.NewUserError("Failed to delete transaction", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted transaction %s", args[0])))
			return nil
		},
	}
}

func clearTransactionsCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !yes {
				return fmt.Errorf("this deletes every transaction; re-run with --yes to confirm")
			}

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.ClearAllTransactions(ctx); err != nil {
				return common.NewUserError("Failed to clear transactions", err)
			}

			fmt.Println(cli.FormatSuccess("Cleared all transactions"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation check")
	return cmd
}

func importTransactionsCmd() *cobra.Command {
	var appendMode bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import entries from a CSV file",
		Long: `Validate and import a transaction CSV (headers 날짜,유형,관,항,목,금액,메모
or their English names). By default the import atomically replaces every
existing entry; --append keeps existing entries and adds the file's rows one
by one instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Failed to open %s", args[0]), err)
			}
			defer func() { _ = f.Close() }()

			transactions, err := csvio.ParseTransactions(f)
			if err != nil {
				return err
			}

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			if appendMode {
				// Each row commits on its own; a failure leaves earlier rows in.
				bar := cli.NewProgressBar(os.Stderr, len(transactions), "Importing transactions...")
				for _, txn := range transactions {
					if _, err := store.AddTransaction(ctx, txn); err != nil {
						return common.NewUserError(fmt.Sprintf("Failed to import transaction dated %s", txn.Date), err)
					}
					_ = bar.Add(1)
				}
				_ = bar.Finish()
			} else {
				if err := store.ReplaceAllTransactions(ctx, transactions); err != nil {
					return common.NewUserError("Failed to import transactions", err)
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions from %s", len(transactions), args[0])))
			return nil
		},
	}

	cmd.Flags().BoolVar(&appendMode, "append", false, "add to existing entries instead of replacing them")
	return cmd
}

func exportTransactionsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all entries to CSV",
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

			if output == "" {
				output = csvio.ExportFilename("transactions", time.Now())
			}
			f, err := os.Create(output)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Failed to create %s", output), err)
			}
			defer func() { _ = f.Close() }()

			if err := csvio.WriteTransactions(f, transactions); err != nil {
				return common.NewUserError("Failed to export transactions", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(transactions), output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: date-stamped name)")
	return cmd
}
