package domain

import "time"

type RoleTier int

const (
	RoleCashier    RoleTier = 1
	RoleSupervisor RoleTier = 2
	RoleAdmin      RoleTier = 3
)

func (r RoleTier) String() string {
	switch r {
	case RoleCashier:
		return "cashier"
	case RoleSupervisor:
		return "supervisor"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

type Employee struct {
	ID        int64
	Name      string
	RoleTier  RoleTier
	Active    bool
	PinHash   string
	CreatedAt time.Time
}
