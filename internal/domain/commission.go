package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentInstrument struct {
	ID                int64
	Code              string
	Name              string
	CommissionBearing bool
	Active            bool
}

type CommissionRate struct {
	ID            int64
	InstrumentID  int64
	Percentage    decimal.Decimal
	FixedAmount   int64
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
}

// EffectiveAt reports whether the rate applies at t. A nil EffectiveTo is open ended.
func (r *CommissionRate) EffectiveAt(t time.Time) bool {
	if t.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || !t.After(*r.EffectiveTo)
}

type CommissionRecord struct {
	ID                int64
	PaymentID         int64
	RateID            int64
	ComputedAmount    int64
	PercentageApplied decimal.Decimal
	CreatedAt         time.Time
}

type CommissionFollowUp struct {
	ID           int64
	PaymentID    int64
	InstrumentID int64
	GrossAmount  int64
	Reason       string
	Resolved     bool
	CreatedAt    time.Time
}
