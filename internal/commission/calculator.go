package commission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

type rateRepo interface {
	GetInstrument(ctx context.Context, id int64) (*domain.PaymentInstrument, error)
	GetEffectiveRate(ctx context.Context, instrumentID int64, at time.Time) (*domain.CommissionRate, error)
}

type Quote struct {
	InstrumentID int64
	Gross        int64
	Amount       int64
	RateID       *int64
	Percentage   decimal.Decimal
	FixedAmount  int64
	Bearing      bool
	// MissingRate is set when the instrument bears commission but no rate is
	// in force. Amount is zero and the sale must still go through.
	MissingRate bool
}

// Recordable reports whether a commission record should be written.
func (q *Quote) Recordable() bool {
	return q.Bearing && !q.MissingRate
}

type Calculator struct {
	rates rateRepo
	now   func() time.Time
}

func NewCalculator(rates rateRepo) *Calculator {
	return &Calculator{rates: rates, now: time.Now}
}

var hundred = decimal.NewFromInt(100)

// Amount is floor(gross * percentage / 100) + fixed, percentage in percent.
func Amount(gross int64, percentage decimal.Decimal, fixed int64) int64 {
	return decimal.NewFromInt(gross).Mul(percentage).Div(hundred).Floor().IntPart() + fixed
}

func (c *Calculator) Compute(ctx context.Context, instrumentID, gross int64) (*Quote, error) {
	return c.ComputeAt(ctx, instrumentID, gross, c.now())
}

func (c *Calculator) ComputeAt(ctx context.Context, instrumentID, gross int64, at time.Time) (*Quote, error) {
	if gross < 0 {
		return nil, fmt.Errorf("Compute: %w", domain.ErrNegativeAmount)
	}
	if gross > domain.MaxAmount {
		return nil, fmt.Errorf("Compute: %w", domain.ErrInvalidAmount)
	}

	instrument, err := c.rates.GetInstrument(ctx, instrumentID)
	if err != nil {
		return nil, fmt.Errorf("Compute: %w", err)
	}
	if !instrument.Active {
		return nil, fmt.Errorf("Compute: instrument %s: %w", instrument.Code, domain.ErrInstrumentInactive)
	}

	q := &Quote{
		InstrumentID: instrument.ID,
		Gross:        gross,
		Percentage:   decimal.Zero,
		Bearing:      instrument.CommissionBearing,
	}
	if !instrument.CommissionBearing {
		return q, nil
	}

	rate, err := c.rates.GetEffectiveRate(ctx, instrument.ID, at)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logging.FromContext(ctx).Warn("commission rate missing",
				"instrument_id", instrument.ID,
				"instrument", instrument.Code,
				"gross", gross,
				"error", domain.ErrMissingActiveRate,
			)
			q.MissingRate = true
			return q, nil
		}
		return nil, fmt.Errorf("Compute: %w", err)
	}

	q.RateID = &rate.ID
	q.Percentage = rate.Percentage
	q.FixedAmount = rate.FixedAmount
	q.Amount = Amount(gross, rate.Percentage, rate.FixedAmount)
	return q, nil
}
