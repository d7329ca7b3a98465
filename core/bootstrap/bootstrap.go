// Package bootstrap prepares process-wide infrastructure before the bot starts.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/uyizlang/uyizlangbot/core/config"
	coredatabase "github.com/uyizlang/uyizlangbot/core/database"
	"github.com/uyizlang/uyizlangbot/core/logger"
)

// Options control the bootstrap pipeline. Nil steps use the core implementations.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

func (o *Options) fill() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
}

// Run brings up logging, opens the database pool and migrates the schema, in
// that order. The pool is closed again when migrations fail.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	opts.fill()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	started := time.Now()
	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := opts.Migrate(opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	logger.Info(context.Background(), "app", "bootstrap.done",
		slog.Duration("duration", logger.RoundMS(time.Since(started))),
	)
	return &Result{DB: db}, nil
}
