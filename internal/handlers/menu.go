package handlers

import (
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"
	"github.com/uyizlang/uyizlangbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

func mainMenuKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{BtnNewListing, BtnMyListings},
		[]string{BtnSearch, BtnSupport},
	)
}

func sendMainMenu(c tele.Context) error {
	return tghelpers.SendMarkup(c, textMainMenu, mainMenuKeyboard())
}

// Fallback answers text that no flow or command claimed.
func (h *Handlers) Fallback(c tele.Context) error {
	return tghelpers.SendMarkup(c, textUnknown, mainMenuKeyboard())
}

// UnknownDocument answers files sent outside a flow.
func (h *Handlers) UnknownDocument(c tele.Context) error {
	return tghelpers.SendText(c, textNoFiles)
}
