package handlers

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/uyizlang/uyizlangbot/core/logger"
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"
	"github.com/uyizlang/uyizlangbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Start greets the user. Registered users get the main menu, new ones begin
// registration with the language step.
func (h *Handlers) Start(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "start")
	id := senderID(c)

	exists, err := h.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	h.fsm.Clear(id)
	if exists {
		return sendMainMenu(c)
	}

	h.fsm.SetState(id, StateRegLanguage)
	logger.Info(ctx, "tg", "registration.start", slog.Int64("user_id", id))
	return tghelpers.SendMarkup(c, textWelcome, languageKeyboard())
}

func (h *Handlers) onLanguage(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "reg.language")
	id := senderID(c)
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return tghelpers.SendMarkup(c, textAskLanguage, languageKeyboard())
	}

	if _, err := h.users.Register(ctx, id, text); err != nil {
		return err
	}
	h.fsm.SetState(id, StateRegPhone)
	return tghelpers.SendMarkup(c, textAskPhone, keyboard.ContactRequest(btnSendPhone))
}

func (h *Handlers) onPhone(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "reg.phone")
	id := senderID(c)

	phone := strings.TrimSpace(c.Text())
	if msg := c.Message(); msg != nil && msg.Contact != nil {
		phone = strings.TrimSpace(msg.Contact.PhoneNumber)
	}
	if phone == "" {
		return tghelpers.SendMarkup(c, textAskPhone, keyboard.ContactRequest(btnSendPhone))
	}

	if err := h.users.SetPhone(ctx, id, phone); err != nil {
		return err
	}
	h.fsm.SetState(id, StateRegLocation)
	return tghelpers.SendMarkup(c, textAskLocation, keyboard.LocationRequest(btnSendLocation))
}

func (h *Handlers) onRegLocation(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "reg.location")
	id := senderID(c)

	loc := locationText(c)
	if loc == "" {
		return tghelpers.SendMarkup(c, textAskLocation, keyboard.LocationRequest(btnSendLocation))
	}

	if err := h.users.SetLocation(ctx, id, loc); err != nil {
		return err
	}
	h.fsm.Clear(id)
	logger.Info(ctx, "tg", "registration.done", slog.Int64("user_id", id))
	if err := tghelpers.SendMarkup(c, textRegistered, keyboard.RemoveKeyboard()); err != nil {
		return err
	}
	return sendMainMenu(c)
}

func languageKeyboard() *tele.ReplyMarkup {
	return keyboard.OneTime(languageButtons)
}

// locationText renders a shared geo point as "lat, lon", else the trimmed text.
func locationText(c tele.Context) string {
	if msg := c.Message(); msg != nil && msg.Location != nil {
		return formatCoord(msg.Location.Lat) + ", " + formatCoord(msg.Location.Lng)
	}
	return strings.TrimSpace(c.Text())
}

func formatCoord(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
