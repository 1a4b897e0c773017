package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/authz"
	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

type authzService interface {
	RequestAuthorization(ctx context.Context, cardID, amount int64) (*authz.Check, error)
	Authorize(ctx context.Context, req authz.AuthorizeRequest) (*authz.Grant, error)
}

type employeeReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

type AuthorizationHandler struct {
	authz     authzService
	employees employeeReader
}

func NewAuthorizationHandler(authz authzService, employees employeeReader) *AuthorizationHandler {
	return &AuthorizationHandler{authz: authz, employees: employees}
}

type checkRequest struct {
	Amount int64 `json:"amount" validate:"gt=0,max=100000000000"`
}

type checkDTO struct {
	Decision         string `json:"decision"`
	Reason           string `json:"reason,omitempty"`
	Balance          int64  `json:"balance"`
	CreditLimit      int64  `json:"credit_limit"`
	ResultingBalance int64  `json:"resulting_balance"`
}

type authorizeRequest struct {
	Amount        int64  `json:"amount" validate:"gt=0,max=100000000000"`
	SupervisorID  int64  `json:"supervisor_id" validate:"gt=0"`
	SupervisorPIN string `json:"supervisor_pin" validate:"required"`
	Reason        string `json:"reason" validate:"required,max=500"`
}

type grantDTO struct {
	Token     string    `json:"auth_token"`
	CardID    int64     `json:"card_id"`
	Amount    int64     `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthorizationHandler) Check(w http.ResponseWriter, r *http.Request) {
	cardID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req checkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	check, err := h.authz.RequestAuthorization(r.Context(), cardID, req.Amount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, checkDTO{
		Decision:         string(check.Decision),
		Reason:           check.Reason,
		Balance:          check.Balance,
		CreditLimit:      check.CreditLimit,
		ResultingBalance: check.ResultingBalance,
	})
}

// Authorize requires the supervisor to be physically present: their PIN is
// checked here before the service re-checks role and credit.
func (h *AuthorizationHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	cardID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req authorizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	supervisor, err := h.employees.GetByID(r.Context(), req.SupervisorID)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			RespondAppError(w, ErrInvalidCredentials, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(supervisor.PinHash), []byte(req.SupervisorPIN)); err != nil {
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}

	grant, err := h.authz.Authorize(r.Context(), authz.AuthorizeRequest{
		CardID:       cardID,
		Amount:       req.Amount,
		SupervisorID: supervisor.ID,
		Reason:       req.Reason,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("authorization refused",
			"card_id", cardID, "supervisor_id", supervisor.ID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, grantDTO{
		Token:     grant.Token,
		CardID:    grant.CardID,
		Amount:    grant.Amount,
		ExpiresAt: grant.ExpiresAt,
	})
}
