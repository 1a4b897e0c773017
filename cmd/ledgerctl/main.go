package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"

	env "github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
	"github.com/josh-kwaku/cafeteria-ledger/internal/repository"
)

var Version = "dev"

// ledgerctl only needs the database, so it does not go through config.Load
// and its JWT requirement.
type cliConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Operator tooling for the cafeteria card ledger",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(ratesCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(followupsCmd())
	rootCmd.AddCommand(cardsCmd())
	rootCmd.AddCommand(employeesCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := env.ParseAs[cliConfig]()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logging.Init("ledgerctl", cfg.LogLevel, "development")

	return repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     2,
		MaxIdleConns:     1,
		ConnMaxLifetimeS: 60,
		ConnMaxIdleTimeS: 30,
		ApplicationName:  "ledgerctl",
	})
}
