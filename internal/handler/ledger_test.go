package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cafeteria-ledger/internal/auth"
	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/ledger"
)

const testOperatorID int64 = 7

type mockLedger struct {
	gotDebit  ledger.DebitRequest
	debitRes  *ledger.DebitResult
	creditSum *domain.RegularizationSummary
	err       error
}

func (m *mockLedger) Debit(_ context.Context, req ledger.DebitRequest) (*ledger.DebitResult, error) {
	m.gotDebit = req
	return m.debitRes, m.err
}

func (m *mockLedger) Credit(_ context.Context, cardID, amount, _ int64) (*domain.RegularizationSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.creditSum, nil
}

func ledgerRouter(h *LedgerHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.ContextWithEmployeeID(req.Context(), testOperatorID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/cards/{id}/debits", h.Debit)
	r.Post("/cards/{id}/recharges", h.Recharge)
	return r
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestDebitHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		err        error
		wantStatus int
		wantCode   string
		wantRetry  bool
	}{
		{
			name:       "debit covered by balance",
			path:       "/cards/1/debits",
			body:       `{"amount": 500}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "zero amount fails validation",
			path:       "/cards/1/debits",
			body:       `{"amount": 0}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "amount above maximum",
			path:       "/cards/1/debits",
			body:       `{"amount": 9223372036854775807}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "unknown field rejected",
			path:       "/cards/1/debits",
			body:       `{"amount": 10, "balance": 9999}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "malformed card id",
			path:       "/cards/abc/debits",
			body:       `{"amount": 10}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "RESOURCE_NOT_FOUND",
		},
		{
			name:       "credit limit exceeded",
			path:       "/cards/1/debits",
			body:       `{"amount": 10}`,
			err:        fmt.Errorf("Debit: %w", domain.ErrCreditLimitExceeded),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "CREDIT_LIMIT_EXCEEDED",
		},
		{
			name:       "authorization required",
			path:       "/cards/1/debits",
			body:       `{"amount": 10}`,
			err:        domain.ErrAuthorizationRequired,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "AUTHORIZATION_REQUIRED",
		},
		{
			name:       "card lock timeout is retryable",
			path:       "/cards/1/debits",
			body:       `{"amount": 10}`,
			err:        fmt.Errorf("GetForUpdate: %w", domain.ErrConcurrencyTimeout),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "CONCURRENCY_TIMEOUT",
			wantRetry:  true,
		},
		{
			name:       "unexpected error",
			path:       "/cards/1/debits",
			body:       `{"amount": 10}`,
			err:        fmt.Errorf("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockLedger{
				debitRes: &ledger.DebitResult{CardID: 1, Amount: 500, PriorBalance: 1000, NewBalance: 500},
				err:      tc.err,
			}
			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			ledgerRouter(NewLedgerHandler(m)).ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			resp := decodeResponse(t, rr)
			if tc.wantCode == "" {
				assert.True(t, resp.Success)
			} else {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tc.wantCode, resp.Error.Code)
			}
			if tc.wantRetry {
				assert.Equal(t, "1", rr.Header().Get("Retry-After"))
			} else {
				assert.Empty(t, rr.Header().Get("Retry-After"))
			}
		})
	}
}

func TestDebitHandler_PassesOperatorAndToken(t *testing.T) {
	m := &mockLedger{debitRes: &ledger.DebitResult{CardID: 3}}
	body := `{"amount": 250, "auth_token": "6f1c1a9e-2f4b-4c55-9c8e-0d1f3a5b7c9d"}`
	req := httptest.NewRequest(http.MethodPost, "/cards/3/debits", strings.NewReader(body))
	rr := httptest.NewRecorder()

	ledgerRouter(NewLedgerHandler(m)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, int64(3), m.gotDebit.CardID)
	assert.Equal(t, int64(250), m.gotDebit.Amount)
	assert.Equal(t, testOperatorID, m.gotDebit.OperatorID)
	assert.Equal(t, "6f1c1a9e-2f4b-4c55-9c8e-0d1f3a5b7c9d", m.gotDebit.AuthToken)
}

func TestRechargeHandler(t *testing.T) {
	rechargeID := int64(11)
	m := &mockLedger{creditSum: &domain.RegularizationSummary{
		CardID:               1,
		RechargeID:           &rechargeID,
		HadDebt:              true,
		DebtBefore:           300,
		AmountAppliedToDebt:  300,
		FinalBalance:         200,
		FullyRegularized:     true,
		ClosedAuthorizations: []int64{4, 5},
	}}
	req := httptest.NewRequest(http.MethodPost, "/cards/1/recharges", strings.NewReader(`{"amount": 500}`))
	rr := httptest.NewRecorder()

	ledgerRouter(NewLedgerHandler(m)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decodeResponse(t, rr)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["fully_regularized"])
	assert.Equal(t, float64(200), data["final_balance"])
	assert.Len(t, data["closed_authorizations"], 2)
}

func TestRechargeHandler_BlockedCard(t *testing.T) {
	m := &mockLedger{err: domain.ErrCardBlocked}
	req := httptest.NewRequest(http.MethodPost, "/cards/1/recharges", strings.NewReader(`{"amount": 500}`))
	rr := httptest.NewRecorder()

	ledgerRouter(NewLedgerHandler(m)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "CARD_BLOCKED", decodeResponse(t, rr).Error.Code)
}
