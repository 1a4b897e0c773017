// Package notify hands balance events to the guardian notification
// dispatcher. Events are written to an outbox table after the balance
// change commits and relayed to RabbitMQ in the background.
package notify

import (
	"context"
	"encoding/json"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

type outboxWriter interface {
	Create(ctx context.Context, e *domain.NotificationEvent) error
}

type Outbox struct {
	repo outboxWriter
}

func NewOutbox(repo outboxWriter) *Outbox {
	return &Outbox{repo: repo}
}

// Notify is fire-and-forget: failures are logged and swallowed.
func (o *Outbox) Notify(ctx context.Context, cardID int64, kind domain.NotificationKind, payload any) {
	log := logging.FromContext(ctx)

	body, err := json.Marshal(payload)
	if err != nil {
		log.Warn("notification payload not encodable", "card_id", cardID, "kind", kind, "error", err)
		return
	}

	e := &domain.NotificationEvent{CardID: cardID, Kind: kind, Payload: body}
	if err := o.repo.Create(ctx, e); err != nil {
		log.Warn("failed to enqueue notification", "card_id", cardID, "kind", kind, "error", err)
		return
	}
	log.Debug("notification enqueued", "notification_id", e.ID, "card_id", cardID, "kind", kind)
}

// Discard drops every notification. Used where no dispatcher is wired.
type Discard struct{}

func (Discard) Notify(context.Context, int64, domain.NotificationKind, any) {}
