package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

var domainErrors = []struct {
	err    error
	appErr *AppError
}{
	{domain.ErrCardNotFound, ErrCardNotFound},
	{domain.ErrInstrumentNotFound, ErrInstrumentNotFound},
	{domain.ErrNotFound, ErrResourceNotFound},
	{domain.ErrInvalidAmount, ErrInvalidAmount},
	{domain.ErrNegativeAmount, ErrNegativeAmount},
	{domain.ErrPaymentMismatch, ErrPaymentMismatch},
	{domain.ErrInvalidRequest, ErrInvalidRequest},
	{domain.ErrAuthorizationRequired, ErrAuthRequired},
	{domain.ErrAuthTokenMismatch, ErrAuthTokenMismatch},
	{domain.ErrAuthorizationNotNeeded, ErrAuthNotNeeded},
	{domain.ErrInstrumentInactive, ErrInstrumentInactive},
	{domain.ErrCardBlocked, ErrCardBlocked},
	{domain.ErrCardDoesNotAllowNegative, ErrNegativeNotAllowed},
	{domain.ErrCreditLimitExceeded, ErrCreditLimitExceeded},
	{domain.ErrNotAuthorizedRole, ErrNotAuthorizedRole},
	{domain.ErrReasonTooShort, ErrReasonTooShort},
	{domain.ErrConcurrencyTimeout, ErrConcurrencyTimeout},
}

func RespondDomainError(w http.ResponseWriter, err error) {
	appErr := ErrInternalError
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			appErr = m.appErr
			break
		}
	}

	switch {
	case appErr == ErrInternalError:
		slog.Error("unhandled domain error", "error", err)
	case domain.KindOf(err) == domain.KindConcurrencyTimeout:
		w.Header().Set("Retry-After", "1")
	}

	RespondAppError(w, appErr, nil)
}
