package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"wrapped validation", fmt.Errorf("Debit: %w", ErrInvalidAmount), KindValidation},
		{"policy", ErrCreditLimitExceeded, KindPolicy},
		{"reason", fmt.Errorf("Authorize: %w", ErrReasonTooShort), KindPolicy},
		{"authorization not needed", fmt.Errorf("Authorize: %w", ErrAuthorizationNotNeeded), KindValidation},
		{"inactive instrument", ErrInstrumentInactive, KindPolicy},
		{"timeout", fmt.Errorf("Debit: lock: %w", ErrConcurrencyTimeout), KindConcurrencyTimeout},
		{"card not found", ErrCardNotFound, KindNotFound},
		{"missing rate", ErrMissingActiveRate, KindConfigurationGap},
		{"foreign error", errors.New("boom"), KindUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestCardAccountDebt(t *testing.T) {
	assert.Equal(t, int64(0), (&CardAccount{Balance: 500}).Debt())
	assert.Equal(t, int64(0), (&CardAccount{Balance: 0}).Debt())
	assert.Equal(t, int64(15000), (&CardAccount{Balance: -15000}).Debt())
}

func TestValidAmount(t *testing.T) {
	assert.False(t, ValidAmount(0))
	assert.False(t, ValidAmount(-1))
	assert.True(t, ValidAmount(1))
	assert.True(t, ValidAmount(MaxAmount))
	assert.False(t, ValidAmount(MaxAmount+1))
	assert.False(t, ValidAmount(math.MaxInt64))
}

func TestAddBalance(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		delta   int64
		want    int64
		wantOK  bool
	}{
		{"credit", 100, 50, 150, true},
		{"debit into negative", 100, -150, -50, true},
		{"debit wraps", -15000, -math.MaxInt64, 0, false},
		{"credit wraps", math.MaxInt64 - 10, 11, 0, false},
		{"credit to exact max", math.MaxInt64 - 10, 10, math.MaxInt64, true},
		{"debit to exact min", math.MinInt64 + 10, -10, math.MinInt64, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AddBalance(tc.balance, tc.delta)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
