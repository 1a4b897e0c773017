package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type RechargeRepository struct {
	db *sql.DB
}

func NewRechargeRepository(db *sql.DB) *RechargeRepository {
	return &RechargeRepository{db: db}
}

func (r *RechargeRepository) Create(ctx context.Context, tx *sql.Tx, rc *domain.Recharge) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO recharges (card_id, amount, created_by) VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		rc.CardID, rc.Amount, rc.CreatedBy,
	).Scan(&rc.ID, &rc.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}
