package domain

import "time"

type Recharge struct {
	ID        int64
	CardID    int64
	Amount    int64
	CreatedBy int64
	CreatedAt time.Time
}

type RegularizationSummary struct {
	CardID               int64
	RechargeID           *int64
	HadDebt              bool
	DebtBefore           int64
	AmountAppliedToDebt  int64
	FinalBalance         int64
	FullyRegularized     bool
	ClosedAuthorizations []int64
}
