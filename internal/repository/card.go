package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

const cardColumns = `id, holder_name, balance, credit_limit, allows_negative, state,
	low_balance_threshold, version, created_at, updated_at`

type CardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) GetByID(ctx context.Context, id int64) (*domain.CardAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM card_accounts WHERE id = $1`, id,
	)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrCardNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CardRepository) Create(ctx context.Context, card *domain.CardAccount) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO card_accounts (
			holder_name, balance, credit_limit, allows_negative, state, low_balance_threshold
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at`,
		card.HolderName, card.Balance, card.CreditLimit, card.AllowsNegative,
		card.State, card.LowBalanceThreshold,
	).Scan(&card.ID, &card.Version, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CardRepository) SetState(ctx context.Context, id int64, state domain.CardState) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE card_accounts SET state = $1, updated_at = now() WHERE id = $2`, state, id,
	)
	if err != nil {
		return fmt.Errorf("SetState: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetState: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SetState: %w", domain.ErrCardNotFound)
	}
	return nil
}

// GetForUpdate takes the exclusive row lock for the remainder of tx.
func (r *CardRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.CardAccount, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM card_accounts WHERE id = $1 FOR UPDATE`, id,
	)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrCardNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", mapLockError(err))
	}
	return c, nil
}

func (r *CardRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id int64, newBalance int64, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE card_accounts SET balance = $1, version = $2, updated_at = now()
		WHERE id = $3 AND version = $4`,
		newBalance, newVersion, id, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", mapLockError(err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrCardNotFound)
	}
	return nil
}

func scanCard(s scanner) (*domain.CardAccount, error) {
	var c domain.CardAccount
	err := s.Scan(
		&c.ID, &c.HolderName, &c.Balance, &c.CreditLimit, &c.AllowsNegative, &c.State,
		&c.LowBalanceThreshold, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
