package app

import (
	"context"
	"testing"

	coreconfig "github.com/uyizlang/uyizlangbot/core/config"
	coretelegram "github.com/uyizlang/uyizlangbot/core/telegram"
	"github.com/uyizlang/uyizlangbot/core/telegram/teletest"
	"github.com/uyizlang/uyizlangbot/internal/config"
	"github.com/uyizlang/uyizlangbot/internal/events"
	"github.com/uyizlang/uyizlangbot/internal/handlers"
	"github.com/uyizlang/uyizlangbot/internal/repository"

	tele "gopkg.in/telebot.v4"
)

const adminID int64 = 42

func testApp(t *testing.T, requests int) (*App, *repository.MemoryUsers) {
	t.Helper()
	cfg := &config.Config{
		Config: coreconfig.Config{
			Telegram:  coreconfig.TelegramConfig{Token: "1:x", AdminID: adminID, RunMode: coreconfig.RunModeLongpoll},
			RateLimit: coreconfig.RateLimitConfig{Requests: requests, WindowSeconds: 60},
		},
		Listings: config.ListingsConfig{CacheTTLSeconds: 60},
	}
	users := repository.NewMemoryUsers()
	a, err := NewWithStores(cfg, Stores{Users: users, Listings: repository.NewMemoryListings()}, events.Noop{})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, users
}

func TestNewWithStoresValidates(t *testing.T) {
	if _, err := NewWithStores(nil, Stores{}, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := NewWithStores(&config.Config{}, Stores{}, nil); err == nil {
		t.Fatal("expected error for missing stores")
	}
}

func TestRunOptionsRoutes(t *testing.T) {
	a, _ := testApp(t, 10)
	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatalf("run options: %v", err)
	}
	if opts.Config == nil || opts.Config.Telegram.AdminID != adminID {
		t.Fatalf("unexpected core config %+v", opts.Config)
	}
	if len(opts.Middlewares) != 3 {
		t.Fatalf("middlewares = %d", len(opts.Middlewares))
	}

	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, want := range []any{"/start", "/stats", "/new_listing", "/my_listings", tele.OnText, tele.OnPhoto, tele.OnContact, tele.OnLocation, tele.OnDocument} {
		if !endpoints[want] {
			t.Fatalf("missing route %v", want)
		}
	}

	visible := opts.Registry.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "/start" {
		t.Fatalf("visible commands = %+v", visible)
	}
	if err := opts.OnStop(context.Background(), coretelegram.Runtime{}); err != nil {
		t.Fatalf("on stop: %v", err)
	}
}

func TestMyListingsChainRateLimits(t *testing.T) {
	a, users := testApp(t, 1)
	if _, err := users.Create(context.Background(), 7, "uz"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	h := a.myListings()

	c := teletest.NewContext(7, handlers.BtnMyListings)
	if err := h(c); err != nil {
		t.Fatalf("first call: %v", err)
	}
	c = c.Next(handlers.BtnMyListings)
	if err := h(c); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if got := c.Texts(); len(got) != 1 || got[0] != handlers.TextRateLimited {
		t.Fatalf("texts = %q", got)
	}
}

func TestMenuButtonAliases(t *testing.T) {
	a, _ := testApp(t, 10)
	reg := a.Registry()
	for _, btn := range []string{handlers.BtnNewListing, handlers.BtnMyListings} {
		if _, _, ok := reg.LookupCommand(btn); !ok {
			t.Fatalf("button %q is not routed", btn)
		}
	}
	if _, _, ok := reg.LookupCommand(handlers.BtnSearch); ok {
		t.Fatal("search button should reach the fallback")
	}
}
