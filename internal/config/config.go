package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string        `env:"DATABASE_URL,required"`
	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTExpiry   time.Duration `env:"JWT_EXPIRY" envDefault:"12h"`
	Port        int           `env:"PORT" envDefault:"8080"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string        `env:"APP_ENV" envDefault:"production"`

	// Upper bound on how long a request waits for a card row lock.
	LockTimeout time.Duration `env:"LOCK_TIMEOUT" envDefault:"3s"`

	AuthTokenTTL        time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"2m"`
	AuthReasonMinLength int           `env:"AUTH_REASON_MIN_LENGTH" envDefault:"10"`
	AuthMinRoleTier     int           `env:"AUTH_MIN_ROLE_TIER" envDefault:"2"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AMQPURL            string        `env:"AMQP_URL"`
	NotifyQueue        string        `env:"NOTIFY_QUEUE" envDefault:"cafeteria.notifications"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`

	DBMaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int           `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int           `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
	DBIdleInTxTimeout  time.Duration `env:"DB_IDLE_IN_TX_TIMEOUT" envDefault:"30s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.AuthReasonMinLength < 1 {
		return nil, fmt.Errorf("config.Load: AUTH_REASON_MIN_LENGTH must be positive")
	}
	if cfg.AuthMinRoleTier < 1 || cfg.AuthMinRoleTier > 3 {
		return nil, fmt.Errorf("config.Load: AUTH_MIN_ROLE_TIER must be between 1 and 3")
	}
	return &cfg, nil
}
