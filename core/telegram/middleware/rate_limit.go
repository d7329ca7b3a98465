package middleware

import (
	"log/slog"

	"github.com/uyizlang/uyizlangbot/core/logger"
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Limiter decides whether identity key may proceed and records the attempt.
type Limiter interface {
	Allow(key int64) bool
}

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Limiter   Limiter
	OnLimited tele.HandlerFunc
}

// RateLimitMiddleware rejects updates from senders the limiter refuses.
// Rejected updates never reach next.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Limiter == nil {
				return next(c)
			}
			if opts.Limiter.Allow(user.ID) {
				return next(c)
			}

			ctx := tghelpers.BuildContext(c)
			logger.Warn(ctx, "tg", "rate.limited",
				slog.String("status", "rate_limited"),
				slog.Int64("user_id", user.ID),
			)
			c.Set("outcome", "rate_limited")
			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			return nil
		}
	}
}
