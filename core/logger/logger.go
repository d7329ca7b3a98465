// Package logger provides the bot's structured slog setup: a key-ordered
// JSON or key=value handler, an asynchronous fan-out writer, sampled debug
// output and per-update context fields.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/uyizlang/uyizlangbot/core/buildinfo"
	coreconfig "github.com/uyizlang/uyizlangbot/core/config"
)

var (
	initOnce sync.Once

	shutdownOnce sync.Once
	shutdownErr  error

	out     *asyncWriter
	closers []io.Closer

	level        slog.LevelVar
	debugSampler = newRatioSampler(1, 50)
	forceTrace   bool

	// L is the root logger. Until InitLogger runs it discards everything,
	// so packages and tests may log without setup.
	L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	// DB logs database connection events.
	DB *slog.Logger
	// MIG logs schema migrations.
	MIG *slog.Logger
	// TG logs the Telegram runtime.
	TG *slog.Logger
	// TWire logs command and route wiring.
	TWire *slog.Logger
	// Events logs domain event publishing.
	Events *slog.Logger
)

func init() {
	wireComponents()
}

// InitLogger installs the structured handler as the process-wide logger.
// Only the first call has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		opts := optionsFrom(cfg)
		level.Set(opts.level)
		debugSampler.Set(opts.sampleNum, opts.sampleDen)
		forceTrace = traceRequested()

		sinks, files := openSinks(opts)
		closers = files
		out = newAsyncWriter(sinks, 256)

		L = slog.New(newHandler(out, &level, opts.format, opts.order))
		slog.SetDefault(L)
		wireComponents()

		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", "app"),
			slog.String("event", "startup"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", opts.profile),
		)
	})
	return nil
}

func wireComponents() {
	DB = Component("db")
	MIG = Component("db.migrate")
	TG = Component("tg")
	TWire = Component("tg.wire")
	Events = Component("events")
}

// Shutdown drains pending lines and closes log files. Later calls return
// the first result.
func Shutdown() error {
	shutdownOnce.Do(func() {
		var errs []error
		if out != nil {
			errs = append(errs, out.Close())
		}
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		shutdownErr = errors.Join(errs...)
	})
	return shutdownErr
}

// Component returns the root logger tagged with component name.
func Component(name string) *slog.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return L
	}
	return L.With("component", name)
}

// Background is context.Background for call sites without an update in scope.
func Background() context.Context {
	return context.Background()
}

// LogEvent writes one event line through logg, falling back to the context logger.
func LogEvent(ctx context.Context, logg *slog.Logger, lvl slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, lvl, "", attrs...)
}

func emit(ctx context.Context, component string, lvl slog.Level, event string, attrs []slog.Attr) {
	LogEvent(ctx, Component(component), lvl, event, attrs...)
}

// Debug logs event at debug level for component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, component, slog.LevelDebug, event, attrs)
}

// Info logs event at info level for component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, component, slog.LevelInfo, event, attrs)
}

// Warn logs event at warn level for component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, component, slog.LevelWarn, event, attrs)
}

// Error logs event at error level for component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, component, slog.LevelError, event, attrs)
}

// ShouldSampleDebug reports whether a high-volume debug line should be
// written. TRACE=1 or LOG_TRACE=1 disables sampling.
func ShouldSampleDebug() bool {
	return forceTrace || debugSampler.Allow()
}
