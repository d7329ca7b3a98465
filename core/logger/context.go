package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	metaKey
)

// updateMeta is the per-update correlation data added to every line.
type updateMeta struct {
	rid      string
	traceID  string
	handler  string
	updateID int
	userID   int64
	chatID   int64
}

func metaFrom(ctx context.Context) updateMeta {
	if ctx == nil {
		return updateMeta{}
	}
	m, _ := ctx.Value(metaKey).(updateMeta)
	return m
}

func withMeta(ctx context.Context, fn func(*updateMeta)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	m := metaFrom(ctx)
	fn(&m)
	return context.WithValue(ctx, metaKey, m)
}

// WithLogger stores log in ctx.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored in ctx, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withMeta(ctx, func(m *updateMeta) { m.rid = rid })
}

// WithUpdateMeta attaches the update, user and chat identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withMeta(ctx, func(m *updateMeta) {
		m.updateID = updateID
		m.userID = userID
		m.chatID = chatID
	})
}

// WithHandler records the handler serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return withMeta(ctx, func(m *updateMeta) { m.handler = handler })
}

// WithTrace attaches the per-update trace id.
func WithTrace(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return withMeta(ctx, func(m *updateMeta) { m.traceID = traceID })
}

func RIDFrom(ctx context.Context) string     { return metaFrom(ctx).rid }
func TraceIDFrom(ctx context.Context) string { return metaFrom(ctx).traceID }
func HandlerFrom(ctx context.Context) string { return metaFrom(ctx).handler }
func UpdateIDFrom(ctx context.Context) int   { return metaFrom(ctx).updateID }
func UserIDFrom(ctx context.Context) int64   { return metaFrom(ctx).userID }
func ChatIDFrom(ctx context.Context) int64   { return metaFrom(ctx).chatID }

// fields returns the non-zero identifiers as log keys.
func (m updateMeta) fields() []kv {
	var out []kv
	if m.rid != "" {
		out = append(out, kv{"rid", m.rid})
	}
	if m.traceID != "" {
		out = append(out, kv{"trace_id", m.traceID})
	}
	if m.updateID != 0 {
		out = append(out, kv{"update_id", int64(m.updateID)})
	}
	if m.userID != 0 {
		out = append(out, kv{"user_id", m.userID})
	}
	if m.chatID != 0 {
		out = append(out, kv{"chat_id", m.chatID})
	}
	if m.handler != "" {
		out = append(out, kv{"handler", m.handler})
	}
	return out
}
