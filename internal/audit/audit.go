// Package audit records every balance mutation in the same transaction as
// the mutation itself. Entries are never updated or deleted.
package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

type store interface {
	Create(ctx context.Context, tx *sql.Tx, e *domain.AuditEntry) error
	ListByCard(ctx context.Context, cardID int64, limit, offset int) ([]domain.AuditEntry, error)
}

type Log struct {
	store store
}

func NewLog(store store) *Log {
	return &Log{store: store}
}

func (l *Log) Record(ctx context.Context, tx *sql.Tx, e *domain.AuditEntry) error {
	if err := l.store.Create(ctx, tx, e); err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	logging.FromContext(ctx).Info("balance mutation",
		"audit_id", e.ID,
		"operation", e.Operation,
		"card_id", e.CardID,
		"entity_type", e.EntityType,
		"entity_id", e.EntityID,
		"balance_before", e.BalanceBefore,
		"balance_after", e.BalanceAfter,
		"actor_id", e.ActorID,
	)
	return nil
}

const maxPageSize = 200

func (l *Log) ListByCard(ctx context.Context, cardID int64, limit, offset int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := l.store.ListByCard(ctx, cardID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListByCard: %w", err)
	}
	return entries, nil
}
