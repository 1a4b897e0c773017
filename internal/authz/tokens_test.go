package authz

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

func testGrant() *Grant {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Grant{
		Token:        "tok-1",
		CardID:       3,
		Amount:       15000,
		SupervisorID: 9,
		Reason:       "forgot lunch money today",
		IssuedAt:     issued,
		ExpiresAt:    issued.Add(2 * time.Minute),
	}
}

func TestRedisTokenStore(t *testing.T) {
	ctx := context.Background()
	g := testGrant()
	data, err := json.Marshal(g)
	require.NoError(t, err)
	key := redisKeyPrefix + g.Token

	t.Run("issue then consume once", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisTokenStore(client)

		mock.ExpectSetNX(key, data, 2*time.Minute).SetVal(true)
		mock.ExpectGet(key).SetVal(string(data))
		mock.ExpectDel(key).SetVal(1)

		require.NoError(t, store.Issue(ctx, g, 2*time.Minute))
		got, err := store.Consume(ctx, g.Token)
		require.NoError(t, err)
		assert.Equal(t, g.CardID, got.CardID)
		assert.Equal(t, g.Amount, got.Amount)
		assert.Equal(t, g.SupervisorID, got.SupervisorID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown or expired token", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(key).RedisNil()

		_, err := NewRedisTokenStore(client).Consume(ctx, g.Token)
		require.ErrorIs(t, err, domain.ErrAuthorizationRequired)
	})

	t.Run("lost the race to another consumer", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetVal(string(data))
		mock.ExpectDel(key).SetVal(0)

		_, err := NewRedisTokenStore(client).Consume(ctx, g.Token)
		require.ErrorIs(t, err, domain.ErrAuthorizationRequired)
	})

	t.Run("duplicate issue", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSetNX(key, data, 2*time.Minute).SetVal(false)

		require.Error(t, NewRedisTokenStore(client).Issue(ctx, g, 2*time.Minute))
	})
}

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("single use", func(t *testing.T) {
		store := NewMemoryTokenStore()
		require.NoError(t, store.Issue(ctx, testGrant(), time.Minute))

		_, err := store.Consume(ctx, "tok-1")
		require.NoError(t, err)

		_, err = store.Consume(ctx, "tok-1")
		require.ErrorIs(t, err, domain.ErrAuthorizationRequired)
	})

	t.Run("expired", func(t *testing.T) {
		now := time.Now()
		store := NewMemoryTokenStore()
		store.now = func() time.Time { return now }
		require.NoError(t, store.Issue(ctx, testGrant(), time.Minute))

		store.now = func() time.Time { return now.Add(2 * time.Minute) }
		_, err := store.Consume(ctx, "tok-1")
		require.ErrorIs(t, err, domain.ErrAuthorizationRequired)
	})
}
