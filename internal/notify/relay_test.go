package notify

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type fakeQueue struct {
	pending  []domain.NotificationEvent
	statuses map[int64]domain.NotificationStatus
}

func (f *fakeQueue) GetPending(_ context.Context, _ *sql.Tx, limit int) ([]domain.NotificationEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeQueue) UpdateStatus(_ context.Context, _ *sql.Tx, id int64, status domain.NotificationStatus) error {
	f.statuses[id] = status
	return nil
}

type fakePublisher struct {
	failFor map[string]bool
	sent    []string
}

func (f *fakePublisher) Publish(_ context.Context, kind string, messageID string, _ []byte) error {
	if f.failFor[messageID] {
		return errors.New("broker unavailable")
	}
	f.sent = append(f.sent, kind+":"+messageID)
	return nil
}

func TestRelayPoll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	queue := &fakeQueue{
		pending: []domain.NotificationEvent{
			{ID: 1, CardID: 5, Kind: domain.NotificationLowBalance, Payload: []byte(`{}`)},
			{ID: 2, CardID: 5, Kind: domain.NotificationDebtRegularized, Payload: []byte(`{}`), Attempts: 0},
			{ID: 3, CardID: 6, Kind: domain.NotificationLowBalance, Payload: []byte(`{}`), Attempts: maxAttempts - 1},
		},
		statuses: map[int64]domain.NotificationStatus{},
	}
	pub := &fakePublisher{failFor: map[string]bool{"2": true, "3": true}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	relay := NewRelay(queue, pub, db, logger, time.Second)
	sent, err := relay.Poll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"low_balance:1"}, pub.sent)
	assert.Equal(t, domain.NotificationStatusDispatched, queue.statuses[1])
	assert.Equal(t, domain.NotificationStatusPending, queue.statuses[2])
	assert.Equal(t, domain.NotificationStatusFailed, queue.statuses[3])
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fakeWriter struct {
	created []domain.NotificationEvent
	err     error
}

func (f *fakeWriter) Create(_ context.Context, e *domain.NotificationEvent) error {
	if f.err != nil {
		return f.err
	}
	e.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *e)
	return nil
}

func TestOutboxNotify(t *testing.T) {
	w := &fakeWriter{}
	NewOutbox(w).Notify(context.Background(), 9, domain.NotificationLowBalance, map[string]int64{"balance": 120})

	require.Len(t, w.created, 1)
	assert.Equal(t, int64(9), w.created[0].CardID)
	assert.JSONEq(t, `{"balance":120}`, string(w.created[0].Payload))

	// failures never reach the caller
	w.err = errors.New("db down")
	assert.NotPanics(t, func() {
		NewOutbox(w).Notify(context.Background(), 9, domain.NotificationLowBalance, nil)
	})
}
