package handlers

import (
	"fmt"

	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Stats reports the bot totals. Access is checked by the command route.
func (h *Handlers) Stats(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "stats")
	st, err := h.listings.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return tghelpers.SendText(c, fmt.Sprintf(textStats, st.Users, st.Listings, st.ActiveListings))
}

// NotAdmin answers non-admin senders of admin commands.
func NotAdmin(c tele.Context) error {
	return tghelpers.Notify(c, TextNotAdmin)
}

// RateLimited answers senders refused by the limiter.
func RateLimited(c tele.Context) error {
	return tghelpers.Notify(c, TextRateLimited)
}
