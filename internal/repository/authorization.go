package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

const authorizationColumns = `id, card_id, sale_id, authorizing_employee_id, prior_balance,
	debit_amount, resulting_balance, reason, regularized, regularization_recharge_id,
	created_at, regularized_at`

type AuthorizationRepository struct {
	db *sql.DB
}

func NewAuthorizationRepository(db *sql.DB) *AuthorizationRepository {
	return &AuthorizationRepository{db: db}
}

func (r *AuthorizationRepository) Create(ctx context.Context, tx *sql.Tx, a *domain.NegativeBalanceAuthorization) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO negative_balance_authorizations (
			card_id, sale_id, authorizing_employee_id, prior_balance,
			debit_amount, resulting_balance, reason, regularized
		) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		RETURNING id, created_at`,
		a.CardID, a.SaleID, a.AuthorizingEmployeeID, a.PriorBalance,
		a.DebitAmount, a.ResultingBalance, a.Reason,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// CloseOpen marks every open authorization for the card as regularized by
// rechargeID and returns the ids it closed.
func (r *AuthorizationRepository) CloseOpen(ctx context.Context, tx *sql.Tx, cardID, rechargeID int64, at time.Time) ([]int64, error) {
	rows, err := tx.QueryContext(ctx,
		`UPDATE negative_balance_authorizations
		SET regularized = TRUE, regularization_recharge_id = $1, regularized_at = $2
		WHERE card_id = $3 AND NOT regularized
		RETURNING id`,
		rechargeID, at, cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("CloseOpen: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("CloseOpen: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CloseOpen: rows: %w", err)
	}
	return ids, nil
}

func (r *AuthorizationRepository) ListByCard(ctx context.Context, cardID int64, openOnly bool) ([]domain.NegativeBalanceAuthorization, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+authorizationColumns+` FROM negative_balance_authorizations
		WHERE card_id = $1 AND (NOT $2 OR NOT regularized)
		ORDER BY created_at, id`,
		cardID, openOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCard: %w", err)
	}
	defer rows.Close()

	var out []domain.NegativeBalanceAuthorization
	for rows.Next() {
		a, err := scanAuthorization(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByCard: scan: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByCard: rows: %w", err)
	}
	return out, nil
}

func scanAuthorization(s scanner) (*domain.NegativeBalanceAuthorization, error) {
	var a domain.NegativeBalanceAuthorization
	err := s.Scan(
		&a.ID, &a.CardID, &a.SaleID, &a.AuthorizingEmployeeID, &a.PriorBalance,
		&a.DebitAmount, &a.ResultingBalance, &a.Reason, &a.Regularized, &a.RegularizationRechargeID,
		&a.CreatedAt, &a.RegularizedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
