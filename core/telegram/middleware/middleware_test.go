package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/uyizlang/uyizlangbot/core/logger"
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"
	"github.com/uyizlang/uyizlangbot/core/telegram/teletest"
)

const notice = "❌ Texnik xatolik. Iltimos, keyinroq urinib ko'ring."

func TestAdminOnlyFailsClosed(t *testing.T) {
	var ran, rejected int
	h := func(tele.Context) error { ran++; return nil }
	reject := func(tele.Context) error { rejected++; return nil }

	AdminOnlyMiddleware(AdminOptions{AdminID: 0, OnReject: reject})(h)(teletest.NewContext(1, "/stats"))
	AdminOnlyMiddleware(AdminOptions{AdminID: 5, OnReject: reject})(h)(teletest.NewContext(1, "/stats"))
	AdminOnlyMiddleware(AdminOptions{AdminID: 5, OnReject: reject})(h)(teletest.NewContext(5, "/stats"))

	if ran != 1 || rejected != 2 {
		t.Fatalf("ran=%d rejected=%d", ran, rejected)
	}
}

type countLimiter struct{ left int }

func (l *countLimiter) Allow(int64) bool {
	if l.left == 0 {
		return false
	}
	l.left--
	return true
}

func TestRateLimitMiddleware(t *testing.T) {
	var ran, limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		Limiter:   &countLimiter{left: 2},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	h := mw(func(tele.Context) error { ran++; return nil })

	var last *teletest.Context
	for i := 0; i < 3; i++ {
		last = teletest.NewContext(1, "📋 Mening elonlarim")
		if err := h(last); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if ran != 2 || limited != 1 {
		t.Fatalf("ran=%d limited=%d", ran, limited)
	}
	if last.Get("outcome") != "rate_limited" {
		t.Fatalf("outcome = %v", last.Get("outcome"))
	}
}

func TestMonitorPassesResultThrough(t *testing.T) {
	clock := time.Unix(0, 0)
	now := func() time.Time {
		clock = clock.Add(3 * time.Second)
		return clock
	}
	want := errors.New("boom")
	h := Monitor("my_listings", MonitorOptions{Now: now})(func(tele.Context) error { return want })
	if err := h(teletest.NewContext(1, "x")); !errors.Is(err, want) {
		t.Fatalf("err = %v, want passthrough", err)
	}
	ok := Monitor("my_listings", MonitorOptions{Threshold: time.Second, Now: now})(func(tele.Context) error { return nil })
	if err := ok(teletest.NewContext(1, "x")); err != nil {
		t.Fatalf("err = %v", err)
	}
}

func TestErrorGuardSwallowsAndNotifies(t *testing.T) {
	c := teletest.NewContext(1, "📋 Mening elonlarim")
	h := ErrorGuard("my_listings", GuardOptions{Notice: notice})(func(tele.Context) error {
		return fmt.Errorf("load listings: %w", errors.New("db down"))
	})
	if err := h(c); err != nil {
		t.Fatalf("guard must swallow, got %v", err)
	}
	texts := c.Texts()
	if len(texts) != 1 || texts[0] != notice {
		t.Fatalf("texts = %v", texts)
	}
	if c.Get("outcome") != "fail" || c.Get("err_code") != "unknown" {
		t.Fatalf("outcome=%v err_code=%v", c.Get("outcome"), c.Get("err_code"))
	}
}

func TestErrorGuardRecoversPanic(t *testing.T) {
	c := teletest.NewContext(1, "x")
	h := ErrorGuard("boom", GuardOptions{Notice: notice})(func(tele.Context) error { panic("nil map") })
	if err := h(c); err != nil {
		t.Fatalf("err = %v", err)
	}
	if c.Get("err_code") != "panic" || len(c.Texts()) != 1 {
		t.Fatalf("err_code=%v texts=%v", c.Get("err_code"), c.Texts())
	}
}

func TestErrorGuardSilentOnCancel(t *testing.T) {
	c := teletest.NewContext(1, "x")
	h := ErrorGuard("render", GuardOptions{Notice: notice})(func(tele.Context) error {
		return fmt.Errorf("pause: %w", context.Canceled)
	})
	if err := h(c); err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(c.Texts()) != 0 {
		t.Fatalf("cancel must not notify, got %v", c.Texts())
	}
}

func TestMetricsCountsAlbumItems(t *testing.T) {
	c := teletest.NewContext(1, "x")
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := c.Send("a", &tele.ReplyMarkup{RemoveKeyboard: true}); err != nil {
			return err
		}
		return c.SendAlbum(tele.Album{&tele.Photo{}, &tele.Photo{}})
	})
	if err := h(c); err != nil {
		t.Fatalf("err = %v", err)
	}
	msgs, kb := GetCounters(c)
	if msgs != 3 || !kb {
		t.Fatalf("messages=%d kb=%v", msgs, kb)
	}
}

func TestLoggerMiddlewareOpensUpdateContext(t *testing.T) {
	c := teletest.NewContext(7, "salom")
	var ctx context.Context
	h := LoggerMiddleware(func(c tele.Context) error {
		ctx = tghelpers.BuildContext(c)
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("err = %v", err)
	}
	if logger.TraceIDFrom(ctx) == "" {
		t.Fatal("expected trace id")
	}
	if rid, _ := c.Get("rid").(string); rid == "" || logger.RIDFrom(ctx) != rid {
		t.Fatalf("rid = %q, ctx rid = %q", rid, logger.RIDFrom(ctx))
	}
	if logger.UserIDFrom(ctx) != 7 {
		t.Fatalf("user id = %d", logger.UserIDFrom(ctx))
	}
}
