package router

import (
	"strings"
	"time"

	tg "github.com/uyizlang/uyizlangbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for an FSM manager.
type FSM interface {
	Dispatch(c tele.Context) (bool, error)
}

// MessageOptions controls fallback behaviour for messages outside a conversation.
type MessageOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// MessageRoutes builds handlers for text, contact, location, photo and
// document messages. An active conversation always gets the message first.
func MessageRoutes(fsm FSM, reg *tg.Registry, opts MessageOptions) []tg.Route {
	text := func(c tele.Context) error {
		start := time.Now()
		body := c.Text()

		if !strings.HasPrefix(body, "/") {
			if handled, err := dispatch(fsm, c, start); handled {
				return err
			}
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(body); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return run(c, handlerName(key), start, cmd.Handler)
			}
			if fb := reg.TextFallback(); fb != nil {
				return run(c, "fallback", start, fb)
			}
		}

		if opts.UnknownText != nil {
			return run(c, "unknown_text", start, opts.UnknownText)
		}
		summarize(c, "unknown_text", start, "skip", nil)
		return nil
	}

	media := func(kind string, fallback tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			if handled, err := dispatch(fsm, c, start); handled {
				return err
			}
			name := "unexpected_" + kind
			if fallback != nil {
				return run(c, name, start, fallback)
			}
			summarize(c, name, start, "skip", nil)
			return nil
		}
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnContact, Handler: media("contact", nil)},
		{Endpoint: tele.OnLocation, Handler: media("location", nil)},
		{Endpoint: tele.OnPhoto, Handler: media("photo", nil)},
		{Endpoint: tele.OnDocument, Handler: media("document", opts.UnknownDocument)},
	}
}

func dispatch(fsm FSM, c tele.Context, start time.Time) (bool, error) {
	if fsm == nil {
		return false, nil
	}
	handled, err := fsm.Dispatch(c)
	if handled {
		summarize(c, "fsm", start, "", err)
	}
	return handled, err
}
