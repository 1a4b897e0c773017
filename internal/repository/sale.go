package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type SaleRepository struct {
	db *sql.DB
}

func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

func (r *SaleRepository) Create(ctx context.Context, tx *sql.Tx, s *domain.Sale) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO sales (card_id, card_amount, total_amount, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		s.CardID, s.CardAmount, s.TotalAmount, s.CreatedBy,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *SaleRepository) CreatePayment(ctx context.Context, tx *sql.Tx, p *domain.SalePayment) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO sale_payments (sale_id, instrument_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		p.SaleID, p.InstrumentID, p.Amount,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreatePayment: %w", err)
	}
	return nil
}
