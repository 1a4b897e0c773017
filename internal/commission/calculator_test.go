package commission

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type fakeRates struct {
	instruments map[int64]domain.PaymentInstrument
	rates       []domain.CommissionRate
}

func (f *fakeRates) GetInstrument(_ context.Context, id int64) (*domain.PaymentInstrument, error) {
	in, ok := f.instruments[id]
	if !ok {
		return nil, domain.ErrInstrumentNotFound
	}
	return &in, nil
}

func (f *fakeRates) GetEffectiveRate(_ context.Context, instrumentID int64, at time.Time) (*domain.CommissionRate, error) {
	var best *domain.CommissionRate
	for i := range f.rates {
		r := &f.rates[i]
		if r.InstrumentID != instrumentID || !r.EffectiveAt(at) {
			continue
		}
		if best == nil || r.EffectiveFrom.After(best.EffectiveFrom) {
			best = r
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best, nil
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name  string
		gross int64
		pct   string
		fixed int64
		want  int64
	}{
		{"3.5 percent", 50000, "3.5", 0, 1750},
		{"floors fractional result", 999, "3.5", 0, 34},
		{"fixed fee added", 10000, "2", 150, 350},
		{"zero gross keeps fixed", 0, "2.5", 100, 100},
		{"zero rate", 50000, "0", 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Amount(tc.gross, decimal.RequireFromString(tc.pct), tc.fixed))
		})
	}
}

func TestCompute(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	expired := now.AddDate(0, -1, 0)

	repo := &fakeRates{
		instruments: map[int64]domain.PaymentInstrument{
			1: {ID: 1, Code: "CARD_NETWORK", CommissionBearing: true, Active: true},
			2: {ID: 2, Code: "CASH", CommissionBearing: false, Active: true},
			3: {ID: 3, Code: "VOUCHER", CommissionBearing: true, Active: true},
			4: {ID: 4, Code: "MEAL_TICKET", CommissionBearing: true, Active: false},
			5: {ID: 5, Code: "CHEQUE", CommissionBearing: false, Active: false},
		},
		rates: []domain.CommissionRate{
			{ID: 10, InstrumentID: 1, Percentage: decimal.RequireFromString("2.0"), EffectiveFrom: now.AddDate(-1, 0, 0), EffectiveTo: &expired},
			{ID: 11, InstrumentID: 1, Percentage: decimal.RequireFromString("3.5"), EffectiveFrom: now.AddDate(0, -1, 0)},
			{ID: 12, InstrumentID: 3, Percentage: decimal.RequireFromString("5"), EffectiveFrom: now.AddDate(0, 1, 0)},
		},
	}
	calc := NewCalculator(repo)
	calc.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("bearing instrument with effective rate", func(t *testing.T) {
		q, err := calc.Compute(ctx, 1, 50000)
		require.NoError(t, err)
		assert.Equal(t, int64(1750), q.Amount)
		require.NotNil(t, q.RateID)
		assert.Equal(t, int64(11), *q.RateID)
		assert.True(t, q.Recordable())
	})

	t.Run("non-bearing instrument", func(t *testing.T) {
		q, err := calc.Compute(ctx, 2, 50000)
		require.NoError(t, err)
		assert.Equal(t, int64(0), q.Amount)
		assert.False(t, q.Recordable())
		assert.False(t, q.MissingRate)
	})

	t.Run("rate not yet effective", func(t *testing.T) {
		q, err := calc.Compute(ctx, 3, 50000)
		require.NoError(t, err)
		assert.Equal(t, int64(0), q.Amount)
		assert.True(t, q.MissingRate)
		assert.False(t, q.Recordable())
	})

	t.Run("historical rate by time", func(t *testing.T) {
		q, err := calc.ComputeAt(ctx, 1, 50000, now.AddDate(0, -2, 0))
		require.NoError(t, err)
		assert.Equal(t, int64(1000), q.Amount)
	})

	t.Run("unknown instrument", func(t *testing.T) {
		_, err := calc.Compute(ctx, 99, 100)
		require.ErrorIs(t, err, domain.ErrInstrumentNotFound)
	})

	t.Run("retired instruments are rejected", func(t *testing.T) {
		for _, id := range []int64{4, 5} {
			_, err := calc.Compute(ctx, id, 100)
			require.ErrorIs(t, err, domain.ErrInstrumentInactive)
		}
	})

	t.Run("negative gross", func(t *testing.T) {
		_, err := calc.Compute(ctx, 1, -1)
		require.ErrorIs(t, err, domain.ErrNegativeAmount)
	})

	t.Run("gross above maximum", func(t *testing.T) {
		_, err := calc.Compute(ctx, 1, domain.MaxAmount+1)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}
