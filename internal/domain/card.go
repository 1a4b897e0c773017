package domain

import "time"

type CardState string

const (
	CardStateActive  CardState = "active"
	CardStateBlocked CardState = "blocked"
)

func (s CardState) IsValid() bool {
	return s == CardStateActive || s == CardStateBlocked
}

type CardAccount struct {
	ID                  int64
	HolderName          string
	Balance             int64
	CreditLimit         int64
	AllowsNegative      bool
	State               CardState
	LowBalanceThreshold int64
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Debt is the outstanding negative balance, zero when the card is in credit.
func (c *CardAccount) Debt() int64 {
	if c.Balance < 0 {
		return -c.Balance
	}
	return 0
}
