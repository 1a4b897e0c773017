package authz

import "github.com/josh-kwaku/cafeteria-ledger/internal/domain"

// EvaluateDebit applies the credit rules to card for a debit of amount.
// A nil error with DecisionRequiresSupervisor means the debit may proceed
// only with a supervisor authorization.
func EvaluateDebit(card *domain.CardAccount, amount int64) (domain.Decision, error) {
	if !domain.ValidAmount(amount) {
		return domain.DecisionDenied, domain.ErrInvalidAmount
	}
	if card.State == domain.CardStateBlocked {
		return domain.DecisionDenied, domain.ErrCardBlocked
	}

	candidate, ok := domain.AddBalance(card.Balance, -amount)
	if !ok {
		return domain.DecisionDenied, domain.ErrInvalidAmount
	}
	if candidate >= 0 {
		return domain.DecisionAllowedNoAuth, nil
	}
	if !card.AllowsNegative {
		return domain.DecisionDenied, domain.ErrCardDoesNotAllowNegative
	}
	if candidate < -card.CreditLimit {
		return domain.DecisionDenied, domain.ErrCreditLimitExceeded
	}
	return domain.DecisionRequiresSupervisor, nil
}
