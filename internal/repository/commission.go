package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

const (
	instrumentColumns = `id, code, name, commission_bearing, active`
	rateColumns       = `id, payment_instrument_id, percentage, fixed_amount, effective_from, effective_to`
)

type CommissionRepository struct {
	db *sql.DB
}

func NewCommissionRepository(db *sql.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

func (r *CommissionRepository) GetInstrument(ctx context.Context, id int64) (*domain.PaymentInstrument, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+instrumentColumns+` FROM payment_instruments WHERE id = $1`, id,
	)
	in, err := scanInstrument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetInstrument: %w", domain.ErrInstrumentNotFound)
		}
		return nil, fmt.Errorf("GetInstrument: %w", err)
	}
	return in, nil
}

func (r *CommissionRepository) GetInstrumentByCode(ctx context.Context, code string) (*domain.PaymentInstrument, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+instrumentColumns+` FROM payment_instruments WHERE code = $1`, code,
	)
	in, err := scanInstrument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetInstrumentByCode: %w", domain.ErrInstrumentNotFound)
		}
		return nil, fmt.Errorf("GetInstrumentByCode: %w", err)
	}
	return in, nil
}

// GetEffectiveRate returns the rate in force at `at`; the most recent
// effective_from wins when ranges overlap.
func (r *CommissionRepository) GetEffectiveRate(ctx context.Context, instrumentID int64, at time.Time) (*domain.CommissionRate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+rateColumns+` FROM commission_rates
		WHERE payment_instrument_id = $1
			AND effective_from <= $2
			AND (effective_to IS NULL OR effective_to >= $2)
		ORDER BY effective_from DESC, id DESC
		LIMIT 1`,
		instrumentID, at,
	)
	rate, err := scanRate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetEffectiveRate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetEffectiveRate: %w", err)
	}
	return rate, nil
}

func (r *CommissionRepository) CreateRate(ctx context.Context, rate *domain.CommissionRate) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO commission_rates (
			payment_instrument_id, percentage, fixed_amount, effective_from, effective_to
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		rate.InstrumentID, rate.Percentage, rate.FixedAmount, rate.EffectiveFrom, rate.EffectiveTo,
	).Scan(&rate.ID)
	if err != nil {
		return fmt.Errorf("CreateRate: %w", err)
	}
	return nil
}

func (r *CommissionRepository) CreateRecord(ctx context.Context, tx *sql.Tx, rec *domain.CommissionRecord) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO commission_records (payment_id, rate_id, computed_amount, percentage_applied)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		rec.PaymentID, rec.RateID, rec.ComputedAmount, rec.PercentageApplied,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreateRecord: %w", err)
	}
	return nil
}

func (r *CommissionRepository) CreateFollowUp(ctx context.Context, tx *sql.Tx, f *domain.CommissionFollowUp) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO commission_followups (payment_id, instrument_id, gross_amount, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		f.PaymentID, f.InstrumentID, f.GrossAmount, f.Reason,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreateFollowUp: %w", err)
	}
	return nil
}

func (r *CommissionRepository) ListOpenFollowUps(ctx context.Context) ([]domain.CommissionFollowUp, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, payment_id, instrument_id, gross_amount, reason, resolved, created_at
		FROM commission_followups WHERE NOT resolved ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListOpenFollowUps: %w", err)
	}
	defer rows.Close()

	var out []domain.CommissionFollowUp
	for rows.Next() {
		var f domain.CommissionFollowUp
		if err := rows.Scan(&f.ID, &f.PaymentID, &f.InstrumentID, &f.GrossAmount, &f.Reason, &f.Resolved, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListOpenFollowUps: scan: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListOpenFollowUps: rows: %w", err)
	}
	return out, nil
}

func scanInstrument(s scanner) (*domain.PaymentInstrument, error) {
	var in domain.PaymentInstrument
	if err := s.Scan(&in.ID, &in.Code, &in.Name, &in.CommissionBearing, &in.Active); err != nil {
		return nil, err
	}
	return &in, nil
}

func scanRate(s scanner) (*domain.CommissionRate, error) {
	var rate domain.CommissionRate
	err := s.Scan(
		&rate.ID, &rate.InstrumentID, &rate.Percentage, &rate.FixedAmount,
		&rate.EffectiveFrom, &rate.EffectiveTo,
	)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
