package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/uyizlang/uyizlangbot/core/logger"
)

const (
	driverName     = "postgres"
	connectTimeout = 5 * time.Second
	readyInterval  = 2 * time.Second
)

// Connect opens the pool described by cfg, applies the pool limits and
// checks the server answers.
func Connect(cfg Config) (*sqlx.DB, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	started := time.Now()
	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	took := slog.Duration("duration", logger.RoundMS(time.Since(started)))
	if err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect",
			append(targetAttrs(cfg), took, slog.String("err", err.Error()))...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSec) * time.Second)

	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect",
		append(targetAttrs(cfg),
			slog.Int("pool_open", cfg.MaxConnections),
			slog.Int("pool_idle", cfg.MaxIdleConnections),
			took,
		)...)
	return db, nil
}

func targetAttrs(cfg Config) []slog.Attr {
	host, port, name := cfg.Target()
	return []slog.Attr{
		slog.String("host", host),
		slog.String("port", port),
		slog.String("db", name),
	}
}

// WaitReady pings dsn every couple of seconds until the server answers or
// timeout elapses.
func WaitReady(ctx context.Context, dsn string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyInterval)
	defer ticker.Stop()
	for {
		err := ping(ctx, dsn)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout reached waiting for database: %w", err)
		case <-ticker.C:
		}
	}
}

func ping(ctx context.Context, dsn string) error {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}
