package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

type PoolConfig struct {
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetimeS int
	ConnMaxIdleTimeS int
	// ApplicationName shows up in pg_stat_activity next to any card row lock.
	ApplicationName string
	// IdleInTxTimeout makes the server end a session that sits in an open
	// transaction, releasing card locks held by a till that went away.
	IdleInTxTimeout time.Duration
}

func NewPostgresDB(ctx context.Context, databaseURL string, pool PoolConfig) (*sql.DB, error) {
	dsn, err := sessionDSN(databaseURL, pool)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresDB: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresDB: open: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeS) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewPostgresDB: ping: %w", err)
	}

	return db, nil
}

// sessionDSN normalizes databaseURL to pq's key=value form and appends the
// session parameters from pool. Settings already present in the URL win.
func sessionDSN(databaseURL string, pool PoolConfig) (string, error) {
	dsn := databaseURL
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		parsed, err := pq.ParseURL(dsn)
		if err != nil {
			return "", fmt.Errorf("parse url: %w", err)
		}
		dsn = parsed
	}

	var params []string
	if pool.ApplicationName != "" && !strings.Contains(dsn, "application_name=") {
		params = append(params, "application_name="+pool.ApplicationName)
	}
	if pool.IdleInTxTimeout > 0 && !strings.Contains(dsn, "idle_in_transaction_session_timeout=") {
		params = append(params, fmt.Sprintf("idle_in_transaction_session_timeout=%d", pool.IdleInTxTimeout.Milliseconds()))
	}
	if len(params) == 0 {
		return dsn, nil
	}
	return strings.TrimSpace(dsn + " " + strings.Join(params, " ")), nil
}
