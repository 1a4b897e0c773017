package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cafeteria")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.LockTimeout)
	assert.Equal(t, 2*time.Minute, cfg.AuthTokenTTL)
	assert.Equal(t, 10, cfg.AuthReasonMinLength)
	assert.Equal(t, 2, cfg.AuthMinRoleTier)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "cafeteria.notifications", cfg.NotifyQueue)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database url",
			env:  map[string]string{"JWT_SECRET": "secret"},
		},
		{
			name: "role tier out of range",
			env: map[string]string{
				"DATABASE_URL":       "postgres://localhost/cafeteria",
				"JWT_SECRET":         "secret",
				"AUTH_MIN_ROLE_TIER": "5",
			},
		},
		{
			name: "zero reason length",
			env: map[string]string{
				"DATABASE_URL":           "postgres://localhost/cafeteria",
				"JWT_SECRET":             "secret",
				"AUTH_REASON_MIN_LENGTH": "0",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("JWT_SECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
