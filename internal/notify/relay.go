package notify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type outboxQueue interface {
	GetPending(ctx context.Context, tx *sql.Tx, limit int) ([]domain.NotificationEvent, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.NotificationStatus) error
}

type publisher interface {
	Publish(ctx context.Context, kind string, messageID string, body []byte) error
}

const (
	relayBatchSize = 50
	maxAttempts    = 5
)

type Relay struct {
	queue     outboxQueue
	publisher publisher
	db        *sql.DB
	logger    *slog.Logger
	interval  time.Duration
}

func NewRelay(queue outboxQueue, publisher publisher, db *sql.DB, logger *slog.Logger, interval time.Duration) *Relay {
	return &Relay{
		queue:     queue,
		publisher: publisher,
		db:        db,
		logger:    logger,
		interval:  interval,
	}
}

func (r *Relay) Start(ctx context.Context) {
	r.logger.Info("notification relay started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("notification relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Poll(ctx); err != nil {
				r.logger.Error("notification relay poll failed", "error", err)
			}
		}
	}
}

// Poll publishes one batch of pending events and returns how many were sent.
func (r *Relay) Poll(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("Poll: begin tx: %w", err)
	}
	defer tx.Rollback()

	events, err := r.queue.GetPending(ctx, tx, relayBatchSize)
	if err != nil {
		return 0, fmt.Errorf("Poll: %w", err)
	}

	sent := 0
	for _, e := range events {
		status := domain.NotificationStatusDispatched
		if err := r.publisher.Publish(ctx, string(e.Kind), strconv.FormatInt(e.ID, 10), e.Payload); err != nil {
			r.logger.Warn("failed to publish notification",
				"notification_id", e.ID,
				"card_id", e.CardID,
				"attempts", e.Attempts+1,
				"error", err,
			)
			if e.Attempts+1 < maxAttempts {
				// stays pending; UpdateStatus still bumps the attempt counter
				status = domain.NotificationStatusPending
			} else {
				status = domain.NotificationStatusFailed
			}
		} else {
			sent++
		}
		if err := r.queue.UpdateStatus(ctx, tx, e.ID, status); err != nil {
			return 0, fmt.Errorf("Poll: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("Poll: commit: %w", err)
	}
	return sent, nil
}
