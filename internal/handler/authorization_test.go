package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/authz"
	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type mockAuthz struct {
	check   *authz.Check
	grant   *authz.Grant
	err     error
	gotAuth authz.AuthorizeRequest
	called  bool
}

func (m *mockAuthz) RequestAuthorization(_ context.Context, cardID, amount int64) (*authz.Check, error) {
	return m.check, m.err
}

func (m *mockAuthz) Authorize(_ context.Context, req authz.AuthorizeRequest) (*authz.Grant, error) {
	m.called = true
	m.gotAuth = req
	return m.grant, m.err
}

type mockEmployees map[int64]*domain.Employee

func (m mockEmployees) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	if e, ok := m[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEmployeeNotFound
}

func supervisorFixture(t *testing.T) mockEmployees {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("2468"), bcrypt.MinCost)
	require.NoError(t, err)
	return mockEmployees{
		9: {ID: 9, Name: "Sup", RoleTier: domain.RoleSupervisor, Active: true, PinHash: string(hash)},
	}
}

func authzRouter(h *AuthorizationHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/cards/{id}/authorization-checks", h.Check)
	r.Post("/cards/{id}/authorizations", h.Authorize)
	return r
}

func TestAuthorizationCheck(t *testing.T) {
	m := &mockAuthz{check: &authz.Check{
		CardID:           1,
		Amount:           800,
		Decision:         domain.DecisionRequiresSupervisor,
		Balance:          300,
		CreditLimit:      1000,
		ResultingBalance: -500,
	}}
	req := httptest.NewRequest(http.MethodPost, "/cards/1/authorization-checks", strings.NewReader(`{"amount": 800}`))
	rr := httptest.NewRecorder()

	authzRouter(NewAuthorizationHandler(m, mockEmployees{})).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeResponse(t, rr).Data.(map[string]any)
	assert.Equal(t, "REQUIRES_SUPERVISOR", data["decision"])
	assert.Equal(t, float64(-500), data["resulting_balance"])
}

func TestAuthorize(t *testing.T) {
	validBody := `{"amount": 800, "supervisor_id": 9, "supervisor_pin": "2468", "reason": "forgot card at home"}`

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
		wantCalled bool
	}{
		{
			name:       "grant issued",
			body:       validBody,
			wantStatus: http.StatusCreated,
			wantCalled: true,
		},
		{
			name:       "wrong pin",
			body:       `{"amount": 800, "supervisor_id": 9, "supervisor_pin": "0000", "reason": "forgot card at home"}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_CREDENTIALS",
		},
		{
			name:       "unknown supervisor",
			body:       `{"amount": 800, "supervisor_id": 99, "supervisor_pin": "2468", "reason": "forgot card at home"}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_CREDENTIALS",
		},
		{
			name:       "missing reason",
			body:       `{"amount": 800, "supervisor_id": 9, "supervisor_pin": "2468"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "reason too short",
			body:       validBody,
			err:        domain.ErrReasonTooShort,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "REASON_TOO_SHORT",
			wantCalled: true,
		},
		{
			name:       "role below threshold",
			body:       validBody,
			err:        domain.ErrNotAuthorizedRole,
			wantStatus: http.StatusForbidden,
			wantCode:   "NOT_AUTHORIZED_ROLE",
			wantCalled: true,
		},
		{
			name:       "card not allowed negative",
			body:       validBody,
			err:        domain.ErrCardDoesNotAllowNegative,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "NEGATIVE_BALANCE_NOT_ALLOWED",
			wantCalled: true,
		},
		{
			name:       "debit stays non-negative",
			body:       validBody,
			err:        domain.ErrAuthorizationNotNeeded,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "AUTHORIZATION_NOT_NEEDED",
			wantCalled: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockAuthz{
				grant: &authz.Grant{Token: "tok", CardID: 1, Amount: 800, ExpiresAt: time.Now().Add(time.Minute)},
				err:   tc.err,
			}
			req := httptest.NewRequest(http.MethodPost, "/cards/1/authorizations", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			authzRouter(NewAuthorizationHandler(m, supervisorFixture(t))).ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantCalled, m.called)
			resp := decodeResponse(t, rr)
			if tc.wantCode == "" {
				assert.True(t, resp.Success)
				data := resp.Data.(map[string]any)
				assert.Equal(t, "tok", data["auth_token"])
				assert.Equal(t, int64(9), m.gotAuth.SupervisorID)
				assert.Equal(t, int64(1), m.gotAuth.CardID)
			} else {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tc.wantCode, resp.Error.Code)
			}
		})
	}
}
