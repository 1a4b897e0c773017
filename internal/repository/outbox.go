package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

const notificationColumns = `id, card_id, event_kind, payload, status, attempts, last_attempt, created_at`

type OutboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Create(ctx context.Context, e *domain.NotificationEvent) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO notification_outbox (card_id, event_kind, payload, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.CardID, e.Kind, []byte(e.Payload), domain.NotificationStatusPending,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	e.Status = domain.NotificationStatusPending
	return nil
}

func (r *OutboxRepository) GetPending(ctx context.Context, tx *sql.Tx, limit int) ([]domain.NotificationEvent, error) {
	// SKIP LOCKED lets several relays drain the outbox without claiming the same row
	rows, err := tx.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notification_outbox
		WHERE status = $1 ORDER BY created_at, id LIMIT $2 FOR UPDATE SKIP LOCKED`,
		domain.NotificationStatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("GetPending: %w", err)
	}
	defer rows.Close()

	var events []domain.NotificationEvent
	for rows.Next() {
		var e domain.NotificationEvent
		var payload []byte
		err := rows.Scan(&e.ID, &e.CardID, &e.Kind, &payload, &e.Status, &e.Attempts, &e.LastAttempt, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("GetPending: scan: %w", err)
		}
		e.Payload = payload
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetPending: rows: %w", err)
	}
	return events, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.NotificationStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE notification_outbox SET status = $1, attempts = attempts + 1, last_attempt = now()
		WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrNotFound)
	}
	return nil
}
