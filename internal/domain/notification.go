package domain

import (
	"encoding/json"
	"time"
)

type NotificationKind string

const (
	NotificationLowBalance         NotificationKind = "low_balance"
	NotificationNegativeAuthorized NotificationKind = "negative_balance_authorized"
	NotificationDebtRegularized    NotificationKind = "debt_regularized"
)

type NotificationStatus string

const (
	NotificationStatusPending    NotificationStatus = "pending"
	NotificationStatusDispatched NotificationStatus = "dispatched"
	NotificationStatusFailed     NotificationStatus = "failed"
)

type NotificationEvent struct {
	ID          int64
	CardID      int64
	Kind        NotificationKind
	Payload     json.RawMessage
	Status      NotificationStatus
	Attempts    int
	LastAttempt *time.Time
	CreatedAt   time.Time
}
