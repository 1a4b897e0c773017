package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrInstrumentNotFound = errors.New("payment instrument not found")
	ErrEmployeeNotFound   = errors.New("employee not found")

	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrNegativeAmount          = errors.New("amount must not be negative")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrPaymentMismatch         = errors.New("sale payments do not add up")
	ErrAuthorizationRequired   = errors.New("supervisor authorization required")
	ErrAuthTokenMismatch       = errors.New("authorization token does not match debit")
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
	ErrAuthorizationNotNeeded  = errors.New("debit does not require supervisor authorization")

	ErrCardBlocked              = errors.New("card blocked")
	ErrCardDoesNotAllowNegative = errors.New("card does not allow negative balance")
	ErrCreditLimitExceeded      = errors.New("credit limit exceeded")
	ErrNotAuthorizedRole        = errors.New("employee not authorized to approve negative balance")
	ErrReasonTooShort           = errors.New("authorization reason too short")
	ErrInstrumentInactive       = errors.New("payment instrument inactive")

	ErrConcurrencyTimeout = errors.New("timed out waiting for card lock")

	ErrMissingActiveRate = errors.New("no commission rate effective")
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindPolicy
	KindConcurrencyTimeout
	KindNotFound
	KindConfigurationGap
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPolicy:
		return "policy"
	case KindConcurrencyTimeout:
		return "concurrency_timeout"
	case KindNotFound:
		return "not_found"
	case KindConfigurationGap:
		return "configuration_gap"
	default:
		return "unknown"
	}
}

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidAmount, KindValidation},
	{ErrNegativeAmount, KindValidation},
	{ErrInvalidRequest, KindValidation},
	{ErrPaymentMismatch, KindValidation},
	{ErrAuthorizationRequired, KindValidation},
	{ErrAuthTokenMismatch, KindValidation},
	{ErrAuthorizationNotNeeded, KindValidation},
	{ErrCardBlocked, KindPolicy},
	{ErrCardDoesNotAllowNegative, KindPolicy},
	{ErrCreditLimitExceeded, KindPolicy},
	{ErrNotAuthorizedRole, KindPolicy},
	{ErrReasonTooShort, KindPolicy},
	{ErrInstrumentInactive, KindPolicy},
	{ErrConcurrencyTimeout, KindConcurrencyTimeout},
	{ErrCardNotFound, KindNotFound},
	{ErrInstrumentNotFound, KindNotFound},
	{ErrEmployeeNotFound, KindNotFound},
	{ErrNotFound, KindNotFound},
	{ErrMissingActiveRate, KindConfigurationGap},
}

// KindOf classifies err against the ledger error taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
