package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func render(t *testing.T, format logFormat, lvl slog.Level, ctx context.Context, fn func(*slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	w := newAsyncWriter([]io.Writer{buf}, 16)
	fn(slog.New(newHandler(w, lvl, format, nil)))
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestKVKeyOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	ctx = WithTrace(ctx, "trace-1")

	line := render(t, formatKV, slog.LevelInfo, ctx, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "app"), slog.LevelInfo, "listing.created",
			slog.String("status", "ok"),
			slog.Int64("listing_id", 5),
		)
	})
	tokens := strings.Split(line, " ")
	want := []string{"ts=", "level=INFO", "component=app", "event=listing.created", "status=ok", "rid=rid-123", "trace_id=trace-1", "update_id=42", "user_id=7", "chat_id=9", "listing_id=5"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %d in %q", len(tokens), line)
	}
	for i, prefix := range want {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, want prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestJSONCompactRID(t *testing.T) {
	ctx := WithRID(context.Background(), "12:34:56")
	line := render(t, formatJSON, slog.LevelInfo, ctx, func(l *slog.Logger) {
		LogEvent(ctx, l, slog.LevelError, "handler.failed", slog.String("err", "boom"))
	})
	for _, want := range []string{`{"ts":`, `"level":"ERROR"`, `"component":"app"`, `"rid":"c.y.1k"`, `"rid_full":"12:34:56"`, `"ts_unix_nano":`, `"err":"boom"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %s in %s", want, line)
		}
	}
	if strings.Index(line, `"level"`) > strings.Index(line, `"rid"`) {
		t.Fatalf("level must precede rid: %s", line)
	}
}

func TestKVOmitsFullRID(t *testing.T) {
	ctx := WithRID(context.Background(), "123:456:789")
	line := render(t, formatKV, slog.LevelInfo, ctx, func(l *slog.Logger) {
		LogEvent(ctx, l, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(line, "rid="+CompactRID("123:456:789")) || strings.Contains(line, "rid_full") {
		t.Fatalf("unexpected rid fields: %s", line)
	}
}

func TestDurationsAndEnums(t *testing.T) {
	line := render(t, formatKV, slog.LevelDebug, context.Background(), func(l *slog.Logger) {
		LogEvent(context.Background(), l.With("component", "cache"), slog.LevelDebug, "cache.lookup",
			slog.String("cache", "HIT"),
			slog.String("outcome", "bogus"),
			slog.String("status", "weird"),
			slog.Duration("duration", 1499*time.Microsecond),
			slog.Duration("window", time.Minute),
			slog.Duration("backoff_ms", 250*time.Millisecond),
		)
	})
	for _, want := range []string{"cache=hit", "status=weird", "duration_ms=1", "window_ms=60000", "backoff_ms=250"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %s", want, line)
		}
	}
	if strings.Contains(line, "outcome=") {
		t.Fatalf("unknown outcome kept: %s", line)
	}
}

func TestLevelFilterAndGroups(t *testing.T) {
	line := render(t, formatKV, slog.LevelInfo, context.Background(), func(l *slog.Logger) {
		l.Debug("dropped")
		l.WithGroup("db").With("host", "pg").Info("grouped", "event", "db.connect")
	})
	if strings.Contains(line, "dropped") {
		t.Fatalf("debug line written at info level: %s", line)
	}
	if !strings.Contains(line, "db.host=pg") || !strings.Contains(line, "db.event=db.connect") {
		t.Fatalf("group prefix missing: %s", line)
	}
}

func TestValuesNeedingQuotes(t *testing.T) {
	line := render(t, formatKV, slog.LevelInfo, context.Background(), func(l *slog.Logger) {
		l.Info("x", "event", "q", "err", "a b=c")
	})
	if !strings.Contains(line, `err="a b=c"`) {
		t.Fatalf("expected quoted value: %s", line)
	}
}

func TestContextFieldsDoNotOverrideAttrs(t *testing.T) {
	ctx := WithUpdateMeta(context.Background(), 1, 100, 200)
	line := render(t, formatKV, slog.LevelInfo, ctx, func(l *slog.Logger) {
		LogEvent(ctx, l, slog.LevelInfo, "rate.limited", slog.Int64("user_id", 7))
	})
	if !strings.Contains(line, "user_id=7") || strings.Contains(line, "user_id=100") {
		t.Fatalf("explicit attr should win: %s", line)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, s.Allow())
	}
	want := []bool{true, false, false, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("allow sequence = %v, want %v", got, want)
		}
	}
	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
}

func TestParseRatio(t *testing.T) {
	cases := []struct {
		in       string
		num, den int
		ok       bool
	}{
		{"1/50", 1, 50, true},
		{"10", 1, 10, true},
		{"off", 0, 0, true},
		{"", 0, 0, false},
		{"x/y", 0, 0, false},
	}
	for _, tc := range cases {
		num, den, ok := parseRatio(tc.in)
		if num != tc.num || den != tc.den || ok != tc.ok {
			t.Fatalf("parseRatio(%q) = %d, %d, %v", tc.in, num, den, ok)
		}
	}
}

func TestSanitizeAndCompact(t *testing.T) {
	if got := SanitizeLimit("ab\x00c\u200bd\nxyz", 6); got != "abcd\nx" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if got := CompactRID("36:35:1"); got != "10.z.1" {
		t.Fatalf("CompactRID = %q", got)
	}
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("CompactRID passthrough = %q", got)
	}
}

func TestWriterRejectsAfterClose(t *testing.T) {
	w := newAsyncWriter([]io.Writer{io.Discard}, 1)
	if err := w.Write([]byte("a\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Write([]byte("b\n")); err != errWriterClosed {
		t.Fatalf("write after close = %v", err)
	}
}
