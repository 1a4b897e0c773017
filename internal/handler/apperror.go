package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid employee id or PIN"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrCardNotFound        = &AppError{http.StatusNotFound, "CARD_NOT_FOUND", "Card not found"}
	ErrInstrumentNotFound  = &AppError{http.StatusNotFound, "INSTRUMENT_NOT_FOUND", "Payment instrument not found"}
	ErrInvalidAmount       = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrNegativeAmount      = &AppError{http.StatusBadRequest, "NEGATIVE_AMOUNT", "Amount must not be negative"}
	ErrPaymentMismatch     = &AppError{http.StatusBadRequest, "PAYMENT_MISMATCH", "Sale payments do not add up"}
	ErrAuthRequired        = &AppError{http.StatusUnprocessableEntity, "AUTHORIZATION_REQUIRED", "Supervisor authorization required"}
	ErrAuthTokenMismatch   = &AppError{http.StatusUnprocessableEntity, "AUTHORIZATION_MISMATCH", "Authorization token does not match this debit"}
	ErrAuthNotNeeded       = &AppError{http.StatusUnprocessableEntity, "AUTHORIZATION_NOT_NEEDED", "Debit does not take the balance negative; no authorization needed"}
	ErrInstrumentInactive  = &AppError{http.StatusUnprocessableEntity, "INSTRUMENT_INACTIVE", "Payment instrument is not active"}
	ErrCardBlocked         = &AppError{http.StatusUnprocessableEntity, "CARD_BLOCKED", "Card is blocked"}
	ErrNegativeNotAllowed  = &AppError{http.StatusUnprocessableEntity, "NEGATIVE_BALANCE_NOT_ALLOWED", "Card does not allow a negative balance"}
	ErrCreditLimitExceeded = &AppError{http.StatusUnprocessableEntity, "CREDIT_LIMIT_EXCEEDED", "Credit limit exceeded"}
	ErrNotAuthorizedRole   = &AppError{http.StatusForbidden, "NOT_AUTHORIZED_ROLE", "Employee may not authorize negative balances"}
	ErrReasonTooShort      = &AppError{http.StatusUnprocessableEntity, "REASON_TOO_SHORT", "Authorization reason is too short"}
	ErrConcurrencyTimeout  = &AppError{http.StatusServiceUnavailable, "CONCURRENCY_TIMEOUT", "Card is busy, please retry"}

	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrIdempotencyInProgress = &AppError{http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this idempotency key is still being processed"}
)
