package router

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	tg "github.com/uyizlang/uyizlangbot/core/telegram"
	"github.com/uyizlang/uyizlangbot/core/telegram/commands"
	"github.com/uyizlang/uyizlangbot/core/telegram/state"
	"github.com/uyizlang/uyizlangbot/core/telegram/teletest"
)

func routeFor(routes []tg.Route, endpoint string) tele.HandlerFunc {
	for _, r := range routes {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	return nil
}

func TestMessageRoutesPreferActiveConversation(t *testing.T) {
	fsm := state.NewMemoryManager()
	var got []string
	fsm.Handle("ask.title", func(c tele.Context) error {
		got = append(got, "fsm:"+c.Text())
		return nil
	})

	reg := tg.NewRegistry()
	reg.RegisterCommand("/listing_new", commands.Command{
		Handler:     func(tele.Context) error { got = append(got, "alias"); return nil },
		Description: "new",
		Aliases:     []string{"🏠 Elon Berish"},
	})
	reg.SetTextFallback(func(tele.Context) error { got = append(got, "fallback"); return nil })

	text := routeFor(MessageRoutes(fsm, reg, MessageOptions{}), tele.OnText)

	_ = text(teletest.NewContext(1, "🏠 Elon Berish"))
	_ = text(teletest.NewContext(1, "salom"))
	fsm.SetState(1, "ask.title")
	_ = text(teletest.NewContext(1, "🏠 Elon Berish"))
	_ = text(teletest.NewContext(1, "/unknown"))

	want := []string{"alias", "fallback", "fsm:🏠 Elon Berish", "fallback"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMessageRoutesSkipAdminAliases(t *testing.T) {
	reg := tg.NewRegistry()
	ran := false
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     func(tele.Context) error { ran = true; return nil },
		Description: "stats",
		AdminOnly:   true,
	})
	text := routeFor(MessageRoutes(nil, reg, MessageOptions{}), tele.OnText)
	if err := text(teletest.NewContext(1, "stats")); err != nil {
		t.Fatalf("err = %v", err)
	}
	if ran {
		t.Fatal("admin command must be reachable only through its command route")
	}
}

func TestDocumentFallback(t *testing.T) {
	called := false
	doc := routeFor(MessageRoutes(state.NewMemoryManager(), nil, MessageOptions{
		UnknownDocument: func(tele.Context) error { called = true; return nil },
	}), tele.OnDocument)
	if err := doc(teletest.NewContext(1, "").WithDocument("plan.pdf")); err != nil {
		t.Fatalf("err = %v", err)
	}
	if !called {
		t.Fatal("document fallback not called")
	}
}

func TestCommandRoutesGateAdmin(t *testing.T) {
	reg := tg.NewRegistry()
	ran := 0
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     func(tele.Context) error { ran++; return nil },
		Description: "stats",
		AdminOnly:   true,
	})
	rejected := 0
	routes := CommandRoutes(reg, CommandRouteOptions{
		AdminID:       10,
		OnAdminReject: func(tele.Context) error { rejected++; return nil },
	})
	h := routeFor(routes, "/stats")
	_ = h(teletest.NewContext(11, "/stats"))
	_ = h(teletest.NewContext(10, "/stats"))
	if ran != 1 || rejected != 1 {
		t.Fatalf("ran=%d rejected=%d", ran, rejected)
	}
}

func TestHandlerName(t *testing.T) {
	cases := map[string]string{
		"/my_listings":  "my_listings",
		" /New Listing": "new_listing",
		"/":             "unknown",
		"":              "unknown",
	}
	for in, want := range cases {
		if got := handlerName(in); got != want {
			t.Fatalf("handlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
