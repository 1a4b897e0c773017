package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

const auditColumns = `id, operation, entity_type, entity_id, card_id, balance_before,
	balance_after, actor_id, detail, created_at`

// AuditRepository is append only. There is deliberately no update or delete.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, tx *sql.Tx, e *domain.AuditEntry) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO balance_audit_log (
			operation, entity_type, entity_id, card_id, balance_before, balance_after, actor_id, detail
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		e.Operation, e.EntityType, e.EntityID, e.CardID, e.BalanceBefore, e.BalanceAfter, e.ActorID, e.Detail,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByCard(ctx context.Context, cardID int64, limit, offset int) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM balance_audit_log
		WHERE card_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		cardID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCard: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		err := rows.Scan(
			&e.ID, &e.Operation, &e.EntityType, &e.EntityID, &e.CardID, &e.BalanceBefore,
			&e.BalanceAfter, &e.ActorID, &e.Detail, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ListByCard: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByCard: rows: %w", err)
	}
	return out, nil
}
