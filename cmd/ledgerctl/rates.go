package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/cafeteria-ledger/internal/commission"
	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/repository"
)

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Manage commission rates",
	}
	cmd.AddCommand(ratesImportCmd())
	return cmd
}

func ratesImportCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [rates.yaml]",
		Short: "Load commission rates from a YAML rate sheet",
		Long: `Load commission rates from a YAML rate sheet.

Every instrument code in the sheet must already exist. Rates are appended,
existing rows are never edited, so a new rate supersedes the old one by
starting on a later effective_from.

Example:
  ledgerctl rates import rates-2026-09.yaml --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			sheet, err := commission.ParseRateSheet(f)
			if err != nil {
				return err
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			repo := repository.NewCommissionRepository(db)

			rates := make([]*domain.CommissionRate, 0, len(sheet.Rates))
			for _, e := range sheet.Rates {
				inst, err := repo.GetInstrumentByCode(cmd.Context(), e.Instrument)
				if err != nil {
					return fmt.Errorf("instrument %s: %w", e.Instrument, err)
				}
				rates = append(rates, &domain.CommissionRate{
					InstrumentID:  inst.ID,
					Percentage:    e.Percentage,
					FixedAmount:   e.Fixed,
					EffectiveFrom: e.EffectiveFrom,
					EffectiveTo:   e.EffectiveTo,
				})
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "%d rates valid, nothing written\n", len(rates))
				return nil
			}
			for i, rate := range rates {
				if err := repo.CreateRate(cmd.Context(), rate); err != nil {
					return fmt.Errorf("rate for %s: %w", sheet.Rates[i].Instrument, err)
				}
				fmt.Fprintf(out, "rate %d: %s %s%% + %d from %s\n",
					rate.ID, sheet.Rates[i].Instrument, rate.Percentage, rate.FixedAmount,
					rate.EffectiveFrom.Format("2006-01-02"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the sheet without writing")
	return cmd
}
