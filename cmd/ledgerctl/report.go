package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/cafeteria-ledger/internal/audit"
	"github.com/josh-kwaku/cafeteria-ledger/internal/repository"
)

func auditCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "audit [card-id]",
		Short: "Print the balance audit trail of a card, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("card id: %w", err)
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			log := audit.NewLog(repository.NewAuditRepository(db))
			entries, err := log.ListByCard(cmd.Context(), cardID, limit, offset)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHEN\tOPERATION\tENTITY\tBEFORE\tAFTER\tACTOR\tDETAIL")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s/%d\t%d\t%d\t%d\t%s\n",
					e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Operation,
					e.EntityType, e.EntityID, e.BalanceBefore, e.BalanceAfter, e.ActorID, e.Detail)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip")
	return cmd
}

func followupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "followups",
		Short: "List sales recorded without a commission rate in force",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := repository.NewCommissionRepository(db).ListOpenFollowUps(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHEN\tPAYMENT\tINSTRUMENT\tGROSS\tREASON")
			for _, f := range list {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\n",
					f.ID, f.CreatedAt.Format("2006-01-02 15:04:05"), f.PaymentID, f.InstrumentID, f.GrossAmount, f.Reason)
			}
			return tw.Flush()
		},
	}
}
