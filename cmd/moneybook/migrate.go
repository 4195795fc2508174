package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sehyunpark/moneybook/internal/cli"
	"github.com/sehyunpark/moneybook/internal/common"
)

func migrateCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run pending schema migrations",
		Long:  `Open the database and bring it to the current schema version. Migrations also run automatically on first use; this command exists to run them eagerly or to check the version with --status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			if statusOnly {
				version, err := store.SchemaVersion(ctx)
				if err != nil {
					return common.NewUserError("Failed to read schema version", err)
				}
				fmt.Println(cli.FormatInfo(fmt.Sprintf("Schema version: %d", version)))
				return nil
			}

			if err := store.Migrate(ctx); err != nil {
				return common.NewUserError("Migration failed", err)
			}

			version, err := store.SchemaVersion(ctx)
			if err != nil {
				return common.NewUserError("Failed to read schema version", err)
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Database is at schema version %d", version)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "print the current schema version without migrating")
	return cmd
}
