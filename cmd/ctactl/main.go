// Command ctactl is the operator CLI: schema migrations and account bootstrap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cta-backend/internal/config"
	"cta-backend/internal/infrastructure/db"
	"cta-backend/internal/infrastructure/logging"
)

var envFile string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ctactl",
		Short:         "Operator tooling for the inspection records service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "config.env", "dotenv file loaded before the environment")
	root.AddCommand(newMigrateCmd(), newCreateUserCmd())
	return root
}

// openStore loads the configuration and opens the MySQL pool.
func openStore() (*gorm.DB, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ValidateStore(); err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.PoolOptions{
		MaxOpenConns: 2,
		LogLevel:     db.ParseLogLevel(cfg.GormLogLevel),
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to mysql: %w", err)
	}
	return gdb, log, nil
}
