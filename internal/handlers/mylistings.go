package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uyizlang/uyizlangbot/core/logger"
	"github.com/uyizlang/uyizlangbot/core/telegram/format"
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"
	"github.com/uyizlang/uyizlangbot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

const (
	listAlbum  = 5
	listPhotos = 3
)

// MyListings shows the sender's active listings in paced batches. The
// site footer is sent on every path.
func (h *Handlers) MyListings(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "my_listings")
	id := senderID(c)
	defer func() {
		if err := tghelpers.SendText(c, textMyListingsFooter); err != nil {
			logger.Warn(ctx, "tg", "listings.footer_failed", slog.String("err", err.Error()))
		}
	}()

	list, err := h.listings.ListActive(ctx, id)
	if err != nil {
		return h.listingsFailed(c, err)
	}
	if len(list) == 0 {
		if err := tghelpers.SendText(c, textNoListings); err != nil {
			return err
		}
		return sendMainMenu(c)
	}

	ownerPhone := h.ownerPhone(ctx, id)

	if err := tghelpers.SendText(c, fmt.Sprintf(textMyListingsHeader, len(list))); err != nil {
		return h.listingsFailed(c, err)
	}
	now := h.listings.Now()
	for start := 0; start < len(list); start += batchSize {
		if start > 0 {
			if err := h.pause(ctx, batchPause); err != nil {
				return err
			}
		}
		end := min(start+batchSize, len(list))
		for i := start; i < end; i++ {
			if err := sendListing(c, &list[i], ownerPhone, now); err != nil {
				return h.listingsFailed(c, err)
			}
		}
	}
	logger.Info(ctx, "tg", "listings.shown", slog.Int("listings_total", len(list)))
	return nil
}

func (h *Handlers) listingsFailed(c tele.Context, err error) error {
	logger.Error(tghelpers.BuildContext(c), "tg", "listings.failed", slog.String("err", err.Error()))
	return tghelpers.SendText(c, textGenericError)
}

// sendListing renders one listing. Album failures degrade to text plus
// single photos; only a failed text send is reported.
func sendListing(c tele.Context, l *domain.Listing, ownerPhone string, now time.Time) error {
	caption := listingCaption(l, ownerPhone, now)
	if len(l.Images) == 0 {
		return tghelpers.SendMD(c, caption)
	}

	ctx := tghelpers.BuildContext(c)
	album := photoAlbum(l.Images, listAlbum, caption)
	if err := c.SendAlbum(album, &tele.SendOptions{ParseMode: tele.ModeMarkdown}); err != nil {
		logger.Warn(ctx, "tg", "listing.album_failed",
			slog.Int64("listing_id", l.ID),
			slog.String("err", err.Error()),
		)
		if err := tghelpers.SendMD(c, caption); err != nil {
			return err
		}
		sendPhotos(c, l.Images, listPhotos)
		return nil
	}
	if extra := len(l.Images) - listAlbum; extra > 0 {
		if err := tghelpers.SendText(c, fmt.Sprintf(textMoreImages, extra)); err != nil {
			logger.Warn(ctx, "tg", "listing.more_failed", slog.String("err", err.Error()))
		}
	}
	return nil
}

func photoAlbum(ids []string, limit int, caption string) tele.Album {
	n := min(len(ids), limit)
	album := make(tele.Album, 0, n)
	for i, id := range ids[:n] {
		p := &tele.Photo{File: tele.File{FileID: id}}
		if i == 0 {
			p.Caption = caption
		}
		album = append(album, p)
	}
	return album
}

// sendPhotos sends up to limit photos one by one, skipping failures.
func sendPhotos(c tele.Context, ids []string, limit int) {
	ctx := tghelpers.BuildContext(c)
	for _, id := range ids[:min(len(ids), limit)] {
		if err := c.Send(&tele.Photo{File: tele.File{FileID: id}}); err != nil {
			logger.Warn(ctx, "tg", "photo.send_failed", slog.String("err", err.Error()))
		}
	}
}

func listingCaption(l *domain.Listing, ownerPhone string, now time.Time) string {
	status := statusPaused
	if l.IsActive {
		status = statusActive
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *E'lon #%d*\n\n", l.ID)
	fmt.Fprintf(&b, "👤 *Egasi:* %s\n", format.MD(ownerPhone))
	fmt.Fprintf(&b, "📞 *Tel:* %s\n\n", format.MD(phoneOf(l)))
	writeListingBody(&b, l)
	fmt.Fprintf(&b, "⏳ *Qolgan vaqt:* %d kun\n", l.RemainingDays(now))
	fmt.Fprintf(&b, "✅ *Holati:* %s", status)
	return b.String()
}

func detailsCaption(l *domain.Listing, ownerPhone string) string {
	var b strings.Builder
	b.WriteString("🖼️ *E'lon rasmlari bilan*\n\n")
	fmt.Fprintf(&b, "📋 *E'lon #%d*\n", l.ID)
	fmt.Fprintf(&b, "👤 *Egasi:* %s\n", format.MD(ownerPhone))
	fmt.Fprintf(&b, "📞 *Tel:* %s\n\n", format.MD(phoneOf(l)))
	writeListingBody(&b, l)
	fmt.Fprintf(&b, "⏳ *Qolgan vaqt:* %d kun\n\n", l.RemainingDays(l.CreatedAt))
	b.WriteString(format.MD(textSiteLink))
	return b.String()
}

func writeListingBody(b *strings.Builder, l *domain.Listing) {
	fmt.Fprintf(b, "📝 %s\n", format.MD(l.Title))
	fmt.Fprintf(b, "📄 %s\n", format.MD(l.Description))
	fmt.Fprintf(b, "🏠 *%d xonali*\n", l.Rooms)
	fmt.Fprintf(b, "🏢 *%d/%d qavat*\n", l.Floor, l.TotalFloors)
	fmt.Fprintf(b, "💰 %s\n", format.MD(fmt.Sprintf("%d %s", l.Price, l.Currency)))
	fmt.Fprintf(b, "📍 %s\n", format.MD(l.Location))
	fmt.Fprintf(b, "🕒 *Joylangan:* %s\n", l.CreatedAt.Format(dateLayout))
}

func phoneOf(l *domain.Listing) string {
	return format.Or(l.Phone, textNoValue)
}

// ownerPhone is the registered phone of the telegram user, or textNoValue.
func (h *Handlers) ownerPhone(ctx context.Context, telegramID int64) string {
	owner, err := h.users.GetUserByTelegramID(ctx, telegramID)
	if err != nil || owner == nil {
		return textNoValue
	}
	return format.Or(owner.Phone, textNoValue)
}
