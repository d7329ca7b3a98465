package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/uyizlang/uyizlangbot/core/logger"
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"
	"github.com/uyizlang/uyizlangbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// ErrPanic wraps values recovered from a panicking handler.
var ErrPanic = errors.New("handler panic")

// GuardOptions configures the error guard.
type GuardOptions struct {
	// Notice is sent to the user after a failure; empty disables it.
	Notice string
	// Notify delivers Notice; defaults to helpers.Notify.
	Notify func(c tele.Context, text string) error
}

// ErrorGuard turns handler failures into a log line and a user notice.
// It never returns an error, so one failed update cannot disturb others.
func ErrorGuard(name string, opts GuardOptions) tele.MiddlewareFunc {
	if opts.Notify == nil {
		opts.Notify = func(c tele.Context, text string) error { return tghelpers.Notify(c, text) }
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			err := runGuarded(next, c)
			if err == nil {
				return nil
			}

			ctx := tghelpers.BuildContext(c)
			code := netutil.Classify(err)
			if errors.Is(err, ErrPanic) {
				code = "panic"
			}
			c.Set("outcome", "fail")
			c.Set("err_code", code)

			if errors.Is(err, context.Canceled) {
				logger.Warn(ctx, "tg", "handler.cancelled",
					slog.String("status", "cancelled"),
					slog.String("handler", name),
				)
				return nil
			}

			logger.Error(ctx, "tg", "handler.failed",
				slog.String("status", "fail"),
				slog.String("handler", name),
				slog.String("err", logger.SanitizeLimit(netutil.Redact(err), 256)),
				slog.String("err_code", code),
				slog.Bool("retryable", netutil.ShouldRetry(err)),
			)
			if opts.Notice != "" {
				if nerr := opts.Notify(c, opts.Notice); nerr != nil {
					logger.Warn(ctx, "tg", "handler.notice_failed",
						slog.String("handler", name),
						slog.String("err", netutil.Redact(nerr)),
					)
				}
			}
			return nil
		}
	}
}

func runGuarded(next tele.HandlerFunc, c tele.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(tghelpers.BuildContext(c), "tg", "panic.recovered",
				slog.String("err", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return next(c)
}
