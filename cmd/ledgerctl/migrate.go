package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/cafeteria-ledger/internal/repository"
)

func migrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema migrations to an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if dir == "" {
				dir = repository.FindMigrationsDir()
			}
			applied, err := repository.ApplyMigrations(cmd.Context(), db, dir)
			if err != nil {
				return err
			}
			for _, f := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", f)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default: nearest ./migrations)")
	return cmd
}
