package handlers

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/uyizlang/uyizlangbot/core/logger"
	"github.com/uyizlang/uyizlangbot/core/telegram/format"
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"
	"github.com/uyizlang/uyizlangbot/core/telegram/keyboard"
	"github.com/uyizlang/uyizlangbot/core/telegram/state"
	"github.com/uyizlang/uyizlangbot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

const (
	maxRooms       = 10
	maxFloors      = 22
	detailsAlbum   = 10
	detailsPhotos  = 5
	confirmSummary = "📋 E'lon ma'lumotlari:\n\n" +
		"📝 Sarlavha: %s\n" +
		"📄 Tavsif: %s\n" +
		"🏠 Xonalar: %d ta\n" +
		"🏢 Qavat: %d/%d\n" +
		"💰 Narx: %d %s\n" +
		"🖼️ Rasmlar: %d ta\n" +
		"📞 Telefon raqamingiz %s\n\n" +
		textExpiryWarning + "\n\n" +
		"E'loni tasdiqlaysizmi?"
)

// NewListing starts the listing form for registered users.
func (h *Handlers) NewListing(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "listing.new")
	id := senderID(c)

	exists, err := h.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return tghelpers.SendText(c, textRegisterFirst)
	}

	h.fsm.Clear(id)
	h.fsm.SetTemp(id, draftKey, domain.ListingDraft{})
	h.fsm.SetState(id, StateListingTitle)
	return tghelpers.SendMarkup(c, textAskTitle, keyboard.RemoveKeyboard())
}

func (h *Handlers) onTitle(c tele.Context) error {
	title := strings.TrimSpace(c.Text())
	if title == "" {
		return tghelpers.SendMarkup(c, textAskTitle, keyboard.RemoveKeyboard())
	}
	h.updateDraft(c, StateListingRooms, func(d *domain.ListingDraft) { d.Title = title })
	return tghelpers.SendMarkup(c, textAskRooms, numberKeyboard(maxRooms))
}

func (h *Handlers) onRooms(c tele.Context) error {
	n, ok := parseCount(c)
	if !ok {
		return tghelpers.SendMarkup(c, textNumbersOnly, numberKeyboard(maxRooms))
	}
	h.updateDraft(c, StateListingFloor, func(d *domain.ListingDraft) { d.Rooms = n })
	return tghelpers.SendMarkup(c, textAskFloor, numberKeyboard(maxFloors))
}

func (h *Handlers) onFloor(c tele.Context) error {
	n, ok := parseCount(c)
	if !ok {
		return tghelpers.SendMarkup(c, textNumbersOnly, numberKeyboard(maxFloors))
	}
	h.updateDraft(c, StateListingTotalFloors, func(d *domain.ListingDraft) { d.Floor = n })
	return tghelpers.SendMarkup(c, textAskTotalFloors, numberKeyboard(maxFloors))
}

func (h *Handlers) onTotalFloors(c tele.Context) error {
	n, ok := parseCount(c)
	if !ok {
		return tghelpers.SendMarkup(c, textNumbersOnly, numberKeyboard(maxFloors))
	}
	h.updateDraft(c, StateListingPrice, func(d *domain.ListingDraft) { d.TotalFloors = n })
	return tghelpers.SendMarkup(c, textAskPrice, keyboard.RemoveKeyboard())
}

func (h *Handlers) onPrice(c tele.Context) error {
	n, ok := parsePrice(c)
	if !ok {
		return tghelpers.SendText(c, textNumbersOnly)
	}
	h.updateDraft(c, StateListingCurrency, func(d *domain.ListingDraft) { d.Price = n })
	return tghelpers.SendMarkup(c, textAskCurrency, keyboard.OneTime(currencyButtons))
}

func (h *Handlers) onCurrency(c tele.Context) error {
	currency := strings.TrimSpace(c.Text())
	if currency == "" {
		return tghelpers.SendMarkup(c, textAskCurrency, keyboard.OneTime(currencyButtons))
	}
	h.updateDraft(c, StateListingImages, func(d *domain.ListingDraft) {
		d.Currency = currency
		d.Images = nil
	})
	return tghelpers.SendMarkup(c, textAskImages, keyboard.RemoveKeyboard())
}

// onImage appends one photo. Album photos arrive as separate concurrent
// updates, so the append and the cap check happen in one session update.
func (h *Handlers) onImage(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return tghelpers.SendText(c, textPhotoOnly)
	}
	fileID := msg.Photo.FileID
	id := senderID(c)

	var count int
	accepted := false
	h.fsm.Update(id, func(s *state.Session) {
		if s.State != StateListingImages {
			return
		}
		d, _ := s.TempData[draftKey].(domain.ListingDraft)
		if len(d.Images) >= domain.MaxListingImages {
			return
		}
		d.Images = append(append([]string(nil), d.Images...), fileID)
		s.TempData[draftKey] = d
		count = len(d.Images)
		accepted = true
		if count == domain.MaxListingImages {
			s.State = StateListingLocation
		}
	})
	if !accepted {
		logger.Debug(tghelpers.BuildContext(c), "tg", "listing.image_ignored")
		return nil
	}

	if left := domain.MaxListingImages - count; left > 0 {
		return tghelpers.SendText(c, fmt.Sprintf(textImageAdded, left))
	}
	if err := tghelpers.SendText(c, fmt.Sprintf(textImagesDone, domain.MaxListingImages)); err != nil {
		return err
	}
	return tghelpers.SendMarkup(c, textAskListingPlace, keyboard.LocationRequest(btnSendLocation))
}

func (h *Handlers) onListingLocation(c tele.Context) error {
	// Late album photos land here once the image cap is reached.
	if msg := c.Message(); msg != nil && msg.Photo != nil {
		return nil
	}
	ctx := tghelpers.WithHandler(c, "listing.location")
	id := senderID(c)

	loc := locationText(c)
	if loc == "" {
		return tghelpers.SendMarkup(c, textAskListingPlace, keyboard.LocationRequest(btnSendLocation))
	}

	owner, err := tghelpers.CurrentUser[*domain.User](ctx, h.users, id)
	if err != nil {
		return fmt.Errorf("load owner: %w", err)
	}
	var draft domain.ListingDraft
	h.updateDraft(c, StateListingConfirm, func(d *domain.ListingDraft) {
		d.Location = loc
		if owner != nil {
			d.Phone = owner.Phone
		}
		draft = *d
	})
	return tghelpers.SendMarkup(c, confirmText(draft), confirmKeyboard())
}

func (h *Handlers) onConfirm(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "listing.confirm")
	id := senderID(c)

	if strings.TrimSpace(c.Text()) != btnConfirm {
		h.fsm.Clear(id)
		logger.Info(ctx, "tg", "listing.cancelled", slog.Int64("user_id", id))
		if err := tghelpers.SendMarkup(c, textListingCancelled, keyboard.RemoveKeyboard()); err != nil {
			return err
		}
		return sendMainMenu(c)
	}

	draft, ok := h.claimDraft(id)
	if !ok {
		logger.Debug(ctx, "tg", "listing.confirm_dropped", slog.Int64("user_id", id))
		return nil
	}
	l, err := h.listings.Create(ctx, id, draft)
	if err != nil {
		h.fsm.SetState(id, StateListingConfirm)
		logger.Error(ctx, "tg", "listing.save_failed",
			slog.Int64("user_id", id),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendMarkup(c, textSaveFailed, confirmKeyboard())
	}
	h.fsm.Clear(id)

	if err := tghelpers.SendMarkup(c, textListingPublished, keyboard.RemoveKeyboard()); err != nil {
		return err
	}
	ownerPhone := h.ownerPhone(ctx, id)
	h.sendDetails(c, l, ownerPhone)
	return sendMainMenu(c)
}

// sendDetails shows the stored listing as one album. When the album is
// rejected it falls back to the caption as text plus a few single photos.
func (h *Handlers) sendDetails(c tele.Context, l *domain.Listing, ownerPhone string) {
	ctx := tghelpers.BuildContext(c)
	caption := detailsCaption(l, ownerPhone)
	if len(l.Images) == 0 {
		if err := tghelpers.SendMD(c, caption); err != nil {
			logger.Warn(ctx, "tg", "details.text_failed", slog.String("err", err.Error()))
		}
		return
	}

	album := photoAlbum(l.Images, detailsAlbum, caption)
	err := c.SendAlbum(album, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	if err == nil {
		return
	}
	logger.Warn(ctx, "tg", "details.album_failed",
		slog.Int64("listing_id", l.ID),
		slog.String("err", err.Error()),
	)
	if err := tghelpers.SendMD(c, caption); err != nil {
		logger.Warn(ctx, "tg", "details.text_failed", slog.String("err", err.Error()))
	}
	sendPhotos(c, l.Images, detailsPhotos)
}

// claimDraft moves a session waiting for confirmation to StateListingSaving
// and returns its draft. Only one of several concurrent confirmations wins;
// the draft stays in the session so a failed save can be retried.
func (h *Handlers) claimDraft(id int64) (domain.ListingDraft, bool) {
	var (
		draft   domain.ListingDraft
		claimed bool
	)
	h.fsm.Update(id, func(s *state.Session) {
		if s.State != StateListingConfirm {
			return
		}
		draft, claimed = s.TempData[draftKey].(domain.ListingDraft)
		if claimed {
			s.State = StateListingSaving
		}
	})
	return draft, claimed
}

// onSaving swallows updates that arrive while the draft is being stored.
func (h *Handlers) onSaving(tele.Context) error {
	return nil
}

func (h *Handlers) updateDraft(c tele.Context, next state.State, fn func(*domain.ListingDraft)) {
	h.fsm.Update(senderID(c), func(s *state.Session) {
		d, _ := s.TempData[draftKey].(domain.ListingDraft)
		fn(&d)
		s.TempData[draftKey] = d
		s.State = next
	})
}

// parseCount reads a room or floor number; it must fit the INTEGER columns.
func parseCount(c tele.Context) (int, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(c.Text()), 10, 32)
	return int(n), err == nil
}

// parsePrice reads a price for the BIGINT column.
func parsePrice(c tele.Context) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(c.Text()), 10, 64)
	return n, err == nil
}

func numberKeyboard(n int) *tele.ReplyMarkup {
	labels := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		labels = append(labels, strconv.Itoa(i))
	}
	return keyboard.OneTime(keyboard.Column(labels...)...)
}

func confirmKeyboard() *tele.ReplyMarkup {
	return keyboard.OneTime([]string{btnConfirm}, []string{btnCancel})
}

func confirmText(d domain.ListingDraft) string {
	desc := d.Description
	if desc == "" {
		desc = domain.DefaultDescription
	}
	phone := format.Or(d.Phone, textNoValue)
	return fmt.Sprintf(confirmSummary,
		d.Title, desc, d.Rooms, d.Floor, d.TotalFloors,
		d.Price, d.Currency, len(d.Images), phone)
}
