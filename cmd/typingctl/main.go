package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/baharkarakas/typing-backend/internal/config"
	"github.com/baharkarakas/typing-backend/internal/db"
	"github.com/baharkarakas/typing-backend/internal/logger"
)

var (
	databaseURL string
	log         *slog.Logger
)

// rootCmd is the operator entry point.
var rootCmd = &cobra.Command{
	Use:           "typingctl",
	Short:         "Operate the typing-backend database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (default: DATABASE_URL)")
	rootCmd.AddCommand(migrateCmd, createAdminCmd, importTextsCmd)
}

type conn struct {
	pool *pgxpool.Pool
	sql  *sql.DB
}

func (c conn) Close() {
	_ = c.sql.Close()
	c.pool.Close()
}

// connect loads config, applies --database-url and opens the pool.
func connect(ctx context.Context) (conn, error) {
	cfg, err := config.Load()
	if err != nil {
		return conn{}, err
	}
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return conn{}, fmt.Errorf("connect: %w", err)
	}
	return conn{pool: pool, sql: db.OpenSQL(pool)}, nil
}

func main() {
	log = logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
