package middleware

import (
	"log/slog"
	"time"

	"github.com/uyizlang/uyizlangbot/core/logger"
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const defaultSlowThreshold = 5 * time.Second

// MonitorOptions tunes the performance monitor.
type MonitorOptions struct {
	// Threshold above which a run is reported as slow; 0 means 5s.
	Threshold time.Duration
	Now       func() time.Time
}

// Monitor measures the wall-clock time of next and logs it under name.
// The handler result passes through untouched.
func Monitor(name string, opts MonitorOptions) tele.MiddlewareFunc {
	if opts.Threshold <= 0 {
		opts.Threshold = defaultSlowThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := opts.Now()
			err := next(c)
			took := opts.Now().Sub(start)

			ctx := tghelpers.BuildContext(c)
			logger.Info(ctx, "tg", "handler.timing",
				slog.String("handler", name),
				slog.Duration("duration", took),
			)
			if took > opts.Threshold {
				logger.Warn(ctx, "tg", "handler.slow",
					slog.String("status", "slow"),
					slog.String("handler", name),
					slog.Duration("duration", took),
					slog.Bool("slow", true),
				)
			}
			return err
		}
	}
}
