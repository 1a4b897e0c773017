package domain

import "time"

type AuditOperation string

const (
	AuditOpDebit                AuditOperation = "debit"
	AuditOpNegativeBalanceDebit AuditOperation = "negative_balance_debit"
	AuditOpRecharge             AuditOperation = "recharge"
	AuditOpRegularization       AuditOperation = "regularization"
)

type AuditEntityType string

const (
	AuditEntityCard          AuditEntityType = "card_account"
	AuditEntitySale          AuditEntityType = "sale"
	AuditEntityRecharge      AuditEntityType = "recharge"
	AuditEntityAuthorization AuditEntityType = "negative_balance_authorization"
)

type AuditEntry struct {
	ID            int64
	Operation     AuditOperation
	EntityType    AuditEntityType
	EntityID      int64
	CardID        int64
	BalanceBefore int64
	BalanceAfter  int64
	ActorID       int64
	Detail        string
	CreatedAt     time.Time
}
