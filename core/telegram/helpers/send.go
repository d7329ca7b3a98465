package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/uyizlang/uyizlangbot/core/logger"
	"github.com/uyizlang/uyizlangbot/core/telegram/sender"
)

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher installs the dispatcher used by Notify; nil restores inline sends.
func SetDispatcher(d *sender.Dispatcher) {
	dispatcher.Store(d)
}

// Notify sends text without waiting for the Bot API. It falls back to an
// inline send when no dispatcher is installed or the queue refuses the job.
func Notify(c tele.Context, text string, opts ...*tele.SendOptions) error {
	send := func() error { return SendText(c, text, opts...) }
	d := dispatcher.Load()
	if d == nil {
		return send()
	}

	ctx := BuildContext(c)
	err := d.Enqueue(ctx, "send.notice", "sendMessage", send)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sender.ErrQueueFull), errors.Is(err, sender.ErrQueueClosed):
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", "send.notice"),
			slog.String("err", err.Error()),
		)
		return send()
	}
	return err
}

// SendText sends text as is, with the first non-nil options if given.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	for _, o := range opts {
		if o != nil {
			return c.Send(text, o)
		}
	}
	return c.Send(text)
}

// SendMD sends legacy Markdown text with an optional reply keyboard.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	so := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	if len(markup) > 0 {
		so.ReplyMarkup = markup[0]
	}
	return c.Send(text, so)
}

// SendMarkup sends plain text together with a reply keyboard.
func SendMarkup(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return c.Send(text, &tele.SendOptions{ReplyMarkup: markup})
}
