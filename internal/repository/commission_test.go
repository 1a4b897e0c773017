package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

func TestCommissionRepository_GetEffectiveRate(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	from := at.AddDate(0, -1, 0)
	query := regexp.QuoteMeta(`FROM commission_rates`)

	t.Run("returns the effective rate", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(query).WithArgs(int64(2), at).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "payment_instrument_id", "percentage", "fixed_amount", "effective_from", "effective_to",
			}).AddRow(11, 2, "3.5000", 0, from, nil))

		rate, err := NewCommissionRepository(db).GetEffectiveRate(context.Background(), 2, at)
		require.NoError(t, err)
		assert.Equal(t, int64(11), rate.ID)
		assert.True(t, rate.Percentage.Equal(decimal.RequireFromString("3.5")))
		assert.Nil(t, rate.EffectiveTo)
		assert.True(t, rate.EffectiveAt(at))
	})

	t.Run("no rate maps to not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(query).WithArgs(int64(2), at).WillReturnError(sql.ErrNoRows)

		_, err := NewCommissionRepository(db).GetEffectiveRate(context.Background(), 2, at)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCommissionRepository_GetInstrument_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payment_instruments WHERE id = $1`)).
		WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

	_, err := NewCommissionRepository(db).GetInstrument(context.Background(), 99)
	require.ErrorIs(t, err, domain.ErrInstrumentNotFound)
}

func TestAuthorizationRepository_CloseOpen(t *testing.T) {
	db, mock := newMock(t)
	at := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE negative_balance_authorizations`)).
		WithArgs(int64(31), at, int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(4))

	tx, err := db.Begin()
	require.NoError(t, err)

	ids, err := NewAuthorizationRepository(db).CloseOpen(context.Background(), tx, 5, 31, at)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
