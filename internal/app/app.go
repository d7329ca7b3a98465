// Package app assembles the Uyizlang bot from configuration and infrastructure.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/uyizlang/uyizlangbot/core/logger"
	coretelegram "github.com/uyizlang/uyizlangbot/core/telegram"
	"github.com/uyizlang/uyizlangbot/core/telegram/commands"
	"github.com/uyizlang/uyizlangbot/core/telegram/middleware"
	"github.com/uyizlang/uyizlangbot/core/telegram/router"
	"github.com/uyizlang/uyizlangbot/core/telegram/state"
	"github.com/uyizlang/uyizlangbot/internal/cache"
	"github.com/uyizlang/uyizlangbot/internal/config"
	"github.com/uyizlang/uyizlangbot/internal/events"
	"github.com/uyizlang/uyizlangbot/internal/handlers"
	"github.com/uyizlang/uyizlangbot/internal/ratelimit"
	"github.com/uyizlang/uyizlangbot/internal/repository"
	"github.com/uyizlang/uyizlangbot/internal/service"

	tele "gopkg.in/telebot.v4"
)

// Stores are the persistence backends of the bot.
type Stores struct {
	Users    service.UserStore
	Listings service.ListingStore
}

// App owns the bot's long-lived collaborators.
type App struct {
	cfg       *config.Config
	db        *sqlx.DB
	publisher events.Publisher
	fsm       *state.MemoryManager
	limiter   *ratelimit.Limiter
	handlers  *handlers.Handlers
}

// New builds the bot over a connected database.
func New(cfg *config.Config, db *sqlx.DB) (*App, error) {
	if db == nil {
		return nil, errors.New("app: nil database")
	}
	a, err := NewWithStores(cfg, Stores{
		Users:    repository.NewUserRepository(db),
		Listings: repository.NewListingRepository(db),
	}, nil)
	if err != nil {
		return nil, err
	}
	a.db = db
	return a, nil
}

// NewWithStores builds the bot over arbitrary stores. A nil publisher is
// chosen from the events configuration.
func NewWithStores(cfg *config.Config, stores Stores, pub events.Publisher) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if stores.Users == nil || stores.Listings == nil {
		return nil, errors.New("app: users and listings stores are required")
	}
	if pub == nil {
		pub = newPublisher(cfg.Events)
	}

	listingCache := cache.New(cache.Options{TTL: time.Duration(cfg.Listings.CacheTTLSeconds) * time.Second})
	users := service.NewUserService(stores.Users)
	listings := service.NewListingService(stores.Listings, stores.Users, service.ListingOptions{
		Cache:  listingCache,
		Events: pub,
	})

	fsm := state.NewMemoryManager()
	h := handlers.New(handlers.Deps{Users: users, Listings: listings, FSM: fsm})
	h.RegisterStates(handlers.Guard)

	return &App{
		cfg:       cfg,
		publisher: pub,
		fsm:       fsm,
		limiter: ratelimit.New(ratelimit.Options{
			Limit:  cfg.RateLimit.Requests,
			Window: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		}),
		handlers: h,
	}, nil
}

func newPublisher(cfg config.EventsConfig) events.Publisher {
	if !cfg.Enabled() {
		logger.Events.LogAttrs(context.Background(), slog.LevelInfo, "events disabled",
			slog.String("event", "events.init"),
			slog.String("status", "skip"),
		)
		return events.Noop{}
	}
	return events.NewKafkaPublisher(events.KafkaOptions{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		Username: cfg.Username,
		Password: cfg.Password,
		TLS:      cfg.TLS,
	})
}

// Registry declares the bot commands. Menu buttons are aliases of hidden commands.
func (a *App) Registry() *coretelegram.Registry {
	h := a.handlers
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     guarded("start", h.Start),
		Description: "Botni ishga tushirish",
	})
	reg.RegisterCommand("/new_listing", commands.Command{
		Handler:     guarded("new_listing", h.NewListing),
		Description: "Yangi e'lon joylashtirish",
		Hidden:      true,
		Aliases:     []string{handlers.BtnNewListing},
	})
	reg.RegisterCommand("/my_listings", commands.Command{
		Handler:     a.myListings(),
		Description: "Mening e'lonlarim",
		Hidden:      true,
		Aliases:     []string{handlers.BtnMyListings},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     guarded("stats", h.Stats),
		Description: "Bot statistikasi",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.SetTextFallback(h.Fallback)
	return reg
}

// myListings chains error guard, monitor and rate limiter around the view.
func (a *App) myListings() tele.HandlerFunc {
	return applyChain(a.handlers.MyListings,
		handlers.Guard("my_listings"),
		middleware.Monitor("my_listings", middleware.MonitorOptions{}),
		middleware.RateLimitMiddleware(middleware.RateLimitOptions{
			Limiter:   a.limiter,
			OnLimited: handlers.RateLimited,
		}),
	)
}

func guarded(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return applyChain(h, handlers.Guard(name), middleware.Monitor(name, middleware.MonitorOptions{}))
}

// applyChain wraps h so that the first middleware runs outermost.
func applyChain(h tele.HandlerFunc, mws ...tele.MiddlewareFunc) tele.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := a.Registry()
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: handlers.NotAdmin,
	})
	routes = append(routes, router.MessageRoutes(a.fsm, reg, router.MessageOptions{
		UnknownDocument: a.handlers.UnknownDocument,
	})...)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      routes,
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			return a.Close(ctx)
		},
	}, nil
}

// Close releases the publisher and the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		logger.Error(ctx, "app", "close.fail", slog.String("err", err.Error()))
	}
	return err
}
