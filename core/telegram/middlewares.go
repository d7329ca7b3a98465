package telegram

import (
	"github.com/uyizlang/uyizlangbot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain for bots.
// Rate limiting is attached per handler, not globally.
func DefaultMiddlewares() []Middleware {
	return []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	}
}
