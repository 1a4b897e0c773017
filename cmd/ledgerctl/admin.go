package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/repository"
)

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Issue and block cafeteria cards",
	}
	cmd.AddCommand(cardsCreateCmd(), cardsStateCmd("block", domain.CardStateBlocked), cardsStateCmd("unblock", domain.CardStateActive))
	return cmd
}

func cardsCreateCmd() *cobra.Command {
	var (
		creditLimit    int64
		allowsNegative bool
		threshold      int64
	)

	cmd := &cobra.Command{
		Use:   "create [holder-name]",
		Short: "Issue a new card with a zero balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if creditLimit < 0 || threshold < 0 {
				return fmt.Errorf("credit limit and threshold must not be negative")
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			card := &domain.CardAccount{
				HolderName:          args[0],
				CreditLimit:         creditLimit,
				AllowsNegative:      allowsNegative,
				State:               domain.CardStateActive,
				LowBalanceThreshold: threshold,
			}
			if err := repository.NewCardRepository(db).Create(cmd.Context(), card); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "card %d issued to %s\n", card.ID, card.HolderName)
			return nil
		},
	}

	cmd.Flags().Int64Var(&creditLimit, "credit-limit", 0, "maximum debt in minor units")
	cmd.Flags().BoolVar(&allowsNegative, "allow-negative", false, "allow supervised negative balances")
	cmd.Flags().Int64Var(&threshold, "low-balance", 0, "low balance notification threshold")
	return cmd
}

func cardsStateCmd(use string, state domain.CardState) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [card-id]",
		Short: fmt.Sprintf("Set a card to %s", state),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("card id: %w", err)
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.NewCardRepository(db).SetState(cmd.Context(), id, state); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "card %d is now %s\n", id, state)
			return nil
		},
	}
}

func employeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Manage cafeteria staff",
	}
	cmd.AddCommand(employeesCreateCmd())
	return cmd
}

func employeesCreateCmd() *cobra.Command {
	var (
		tier int
		pin  string
	)

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Register an employee with a role tier and PIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := domain.RoleTier(tier)
			if role.String() == "unknown" {
				return fmt.Errorf("role tier must be 1 (cashier), 2 (supervisor) or 3 (admin)")
			}
			if len(pin) < 4 {
				return fmt.Errorf("pin must have at least 4 digits")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			emp := &domain.Employee{Name: args[0], RoleTier: role, Active: true, PinHash: string(hash)}
			if err := repository.NewEmployeeRepository(db).Create(cmd.Context(), emp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "employee %d created as %s\n", emp.ID, role)
			return nil
		},
	}

	cmd.Flags().IntVar(&tier, "tier", int(domain.RoleCashier), "role tier")
	cmd.Flags().StringVar(&pin, "pin", "", "login PIN")
	_ = cmd.MarkFlagRequired("pin")
	return cmd
}
