package router

import (
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/uyizlang/uyizlangbot/core/logger"
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"
	"github.com/uyizlang/uyizlangbot/core/telegram/middleware"
)

const maxLoggedErr = 256

// run tags the update with name, calls fn and logs the summary line.
func run(c tele.Context, name string, start time.Time, fn tele.HandlerFunc) error {
	tghelpers.WithHandler(c, name)
	err := fn(c)
	summarize(c, name, start, "", err)
	return err
}

// summarize writes the "handler.handled" line of an update. status defaults
// to the outcome; middlewares that swallow errors leave "outcome" and
// "err_code" on the context for it.
func summarize(c tele.Context, name string, start time.Time, status string, err error) {
	ctx := tghelpers.WithHandler(c, name)

	outcome, _ := c.Get("outcome").(string)
	switch {
	case err != nil:
		outcome = "fail"
	case outcome == "":
		outcome = "ok"
	}
	if status == "" {
		status = outcome
	}
	msgs, kb := middleware.GetCounters(c)

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", name),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), maxLoggedErr)))
	} else if code, _ := c.Get("err_code").(string); code != "" {
		attrs = append(attrs, slog.String("err_code", code))
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "handler.handled", attrs...)
}

// handlerName turns "/My Listings" into "my_listings".
func handlerName(command string) string {
	name := strings.TrimPrefix(strings.TrimSpace(command), "/")
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
