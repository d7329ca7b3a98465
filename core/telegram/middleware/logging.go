package middleware

import (
	"log/slog"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"github.com/uyizlang/uyizlangbot/core/logger"
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"
)

// LoggerMiddleware opens the per-update log context (rid, ids and a fresh
// trace_id) and logs the update at debug level, sampled.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		var chatID, userID int64
		if ch := c.Chat(); ch != nil {
			chatID = ch.ID
		}
		if u := c.Sender(); u != nil {
			userID = u.ID
		}
		c.Set("rid", logger.BuildRID(c.Update().ID, chatID, userID))

		ctx := logger.WithTrace(tghelpers.BuildContext(c), uuid.NewString())
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() {
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", receivedAttrs(c)...)
		}
		return next(c)
	}
}

func receivedAttrs(c tele.Context) []slog.Attr {
	upd := c.Update()
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.Int("update_id", upd.ID),
		slog.String("kind", updateKind(upd)),
	}
	if ch := c.Chat(); ch != nil {
		attrs = append(attrs, slog.Int64("chat_id", ch.ID), slog.String("chat_type", string(ch.Type)))
	}
	if u := c.Sender(); u != nil {
		attrs = append(attrs, slog.Int64("user_id", u.ID))
		if u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		if u.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", u.LanguageCode))
		}
	}
	if upd.Message != nil && c.Text() != "" {
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
	}
	return attrs
}

func updateKind(upd tele.Update) string {
	msg := upd.Message
	switch {
	case msg == nil:
		return "other"
	case msg.Photo != nil:
		return "photo"
	case msg.Contact != nil:
		return "contact"
	case msg.Location != nil:
		return "location"
	case msg.Document != nil:
		return "document"
	case msg.Text != "":
		return "text"
	}
	return "message"
}
