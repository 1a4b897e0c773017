package authz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

func TestEvaluateDebit(t *testing.T) {
	tests := []struct {
		name         string
		card         domain.CardAccount
		amount       int64
		wantDecision domain.Decision
		wantErr      error
	}{
		{
			name:         "covered by balance",
			card:         domain.CardAccount{Balance: 5000, State: domain.CardStateActive},
			amount:       5000,
			wantDecision: domain.DecisionAllowedNoAuth,
		},
		{
			name:         "needs supervisor within limit",
			card:         domain.CardAccount{Balance: 5000, CreditLimit: 20000, AllowsNegative: true, State: domain.CardStateActive},
			amount:       15000,
			wantDecision: domain.DecisionRequiresSupervisor,
		},
		{
			name:         "exactly at limit",
			card:         domain.CardAccount{Balance: 0, CreditLimit: 20000, AllowsNegative: true, State: domain.CardStateActive},
			amount:       20000,
			wantDecision: domain.DecisionRequiresSupervisor,
		},
		{
			name:         "over limit",
			card:         domain.CardAccount{Balance: -10000, CreditLimit: 20000, AllowsNegative: true, State: domain.CardStateActive},
			amount:       15000,
			wantDecision: domain.DecisionDenied,
			wantErr:      domain.ErrCreditLimitExceeded,
		},
		{
			name:         "negative not allowed",
			card:         domain.CardAccount{Balance: 100, CreditLimit: 20000, State: domain.CardStateActive},
			amount:       200,
			wantDecision: domain.DecisionDenied,
			wantErr:      domain.ErrCardDoesNotAllowNegative,
		},
		{
			name:         "amount wrapping past an existing debt",
			card:         domain.CardAccount{Balance: -15000, CreditLimit: 20000, AllowsNegative: true, State: domain.CardStateActive},
			amount:       math.MaxInt64,
			wantDecision: domain.DecisionDenied,
			wantErr:      domain.ErrInvalidAmount,
		},
		{
			name:         "amount above maximum on a rich card",
			card:         domain.CardAccount{Balance: math.MaxInt64, State: domain.CardStateActive},
			amount:       domain.MaxAmount + 1,
			wantDecision: domain.DecisionDenied,
			wantErr:      domain.ErrInvalidAmount,
		},
		{
			name:         "amount at maximum",
			card:         domain.CardAccount{Balance: domain.MaxAmount, State: domain.CardStateActive},
			amount:       domain.MaxAmount,
			wantDecision: domain.DecisionAllowedNoAuth,
		},
		{
			name:         "zero amount",
			card:         domain.CardAccount{Balance: 100, State: domain.CardStateActive},
			amount:       0,
			wantDecision: domain.DecisionDenied,
			wantErr:      domain.ErrInvalidAmount,
		},
		{
			name:         "blocked card",
			card:         domain.CardAccount{Balance: 10000, State: domain.CardStateBlocked},
			amount:       100,
			wantDecision: domain.DecisionDenied,
			wantErr:      domain.ErrCardBlocked,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := EvaluateDebit(&tc.card, tc.amount)
			assert.Equal(t, tc.wantDecision, decision)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
