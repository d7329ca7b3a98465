package router

import (
	"context"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/uyizlang/uyizlangbot/core/logger"
	tg "github.com/uyizlang/uyizlangbot/core/telegram"
	"github.com/uyizlang/uyizlangbot/core/telegram/middleware"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes returns one route per registered slash command. Admin-only
// commands reject other users before the handler runs.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	var routes []tg.Route
	for endpoint, cmd := range reg.Commands() {
		h := cmd.Handler
		if cmd.AdminOnly {
			h = adminOnly(h)
		}
		name := handlerName(endpoint)
		routes = append(routes, tg.Route{
			Endpoint: endpoint,
			Handler:  func(c tele.Context) error { return run(c, name, time.Now(), h) },
		})
	}

	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "routes.commands",
		slog.Int("commands", len(routes)),
	)
	return routes
}
