package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/uyizlang/uyizlangbot/core/logger"
)

const (
	readyTimeout   = 30 * time.Second
	previewedFiles = 6
)

// RunMigrations waits for the database and applies every pending up migration
// found in cfg.MigrationsDir.
func RunMigrations(cfg Config) error {
	if err := cfg.Normalize(); err != nil {
		return err
	}
	ctx := context.Background()
	dsn := cfg.DSN()

	if err := WaitReady(ctx, dsn, readyTimeout); err != nil {
		migFailed(ctx, "db.migrate", err)
		return fmt.Errorf("database not ready: %w", err)
	}

	dir, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		migFailed(ctx, "db.migrate", err)
		return fmt.Errorf("resolve migrations dir: %w", err)
	}
	files := upMigrations(dir)
	logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "resolve",
		append([]slog.Attr{slog.String("path", dir)}, filesAttrs(files)...)...)

	m, err := migrate.New("file://"+filepath.ToSlash(dir), dsn)
	if err != nil {
		migFailed(ctx, "db.migrate", err)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.LogEvent(ctx, logger.MIG, slog.LevelWarn, "db.migrate",
				slog.String("status", "fail"),
				slog.Any("err", errors.Join(srcErr, dbErr)),
			)
		}
	}()

	from, _, _ := m.Version()
	started := time.Now()
	upErr := m.Up()
	took := logger.RoundMS(time.Since(started))

	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "apply",
			slog.String("err", upErr.Error()),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	to := from
	if upErr == nil {
		to, _, _ = m.Version()
	}
	applied := appliedBetween(files, uint64(from), uint64(to))
	if len(applied) > 0 {
		logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "apply", filesAttrs(applied)...)
	}
	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "summary",
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", len(applied)),
		slog.Duration("duration", took),
	)
	return nil
}

func migFailed(ctx context.Context, event string, err error) {
	logger.LogEvent(ctx, logger.MIG, slog.LevelError, event, slog.String("err", err.Error()))
}

func filesAttrs(files []string) []slog.Attr {
	attrs := []slog.Attr{slog.Int("files_total", len(files))}
	preview, truncated := logger.SummarizeStrings(files, previewedFiles)
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if truncated {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	return attrs
}

// upMigrations lists the *.up.sql files of dir in version order.
func upMigrations(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

// fileVersion extracts the numeric prefix of a migration file name.
func fileVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

// appliedBetween returns files whose version lies in (from, to].
func appliedBetween(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := fileVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
