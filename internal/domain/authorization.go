package domain

import "time"

type Decision string

const (
	DecisionAllowedNoAuth      Decision = "ALLOWED_NO_AUTH"
	DecisionRequiresSupervisor Decision = "REQUIRES_SUPERVISOR"
	DecisionDenied             Decision = "DENIED"
)

// NegativeBalanceAuthorization is written once per debit that drives a card
// below zero. Only the regularization columns change afterwards.
type NegativeBalanceAuthorization struct {
	ID                       int64
	CardID                   int64
	SaleID                   *int64
	AuthorizingEmployeeID    int64
	PriorBalance             int64
	DebitAmount              int64
	ResultingBalance         int64
	Reason                   string
	Regularized              bool
	RegularizationRechargeID *int64
	CreatedAt                time.Time
	RegularizedAt            *time.Time
}
