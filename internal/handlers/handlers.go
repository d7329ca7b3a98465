// Package handlers implements the bot's conversations: registration, the
// listing form, the my-listings view and the admin statistics.
package handlers

import (
	"context"
	"time"

	"github.com/uyizlang/uyizlangbot/core/telegram/middleware"
	"github.com/uyizlang/uyizlangbot/core/telegram/state"
	"github.com/uyizlang/uyizlangbot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

// Conversation states.
const (
	StateRegLanguage state.State = "reg.language"
	StateRegPhone    state.State = "reg.phone"
	StateRegLocation state.State = "reg.location"

	StateListingTitle       state.State = "listing.title"
	StateListingRooms       state.State = "listing.rooms"
	StateListingFloor       state.State = "listing.floor"
	StateListingTotalFloors state.State = "listing.total_floors"
	StateListingPrice       state.State = "listing.price"
	StateListingCurrency    state.State = "listing.currency"
	StateListingImages      state.State = "listing.images"
	StateListingLocation    state.State = "listing.location"
	StateListingConfirm     state.State = "listing.confirm"

	// StateListingSaving holds the session while a confirmed draft is stored.
	StateListingSaving state.State = "listing.saving"
)

const (
	draftKey   = "listing.draft"
	batchSize  = 3
	batchPause = time.Second
)

// UserService is what the handlers need from user management.
type UserService interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Exists(ctx context.Context, telegramID int64) (bool, error)
	Register(ctx context.Context, telegramID int64, language string) (*domain.User, error)
	SetPhone(ctx context.Context, telegramID int64, phone string) error
	SetLocation(ctx context.Context, telegramID int64, location string) error
}

// ListingService is what the handlers need from listing management.
type ListingService interface {
	Create(ctx context.Context, telegramID int64, d domain.ListingDraft) (*domain.Listing, error)
	ListActive(ctx context.Context, telegramID int64) ([]domain.Listing, error)
	Stats(ctx context.Context) (domain.Stats, error)
	Now() time.Time
}

// Deps are the handler collaborators.
type Deps struct {
	Users    UserService
	Listings ListingService
	FSM      state.Manager
	// Pause waits between my-listings batches; defaults to a context-aware sleep.
	Pause func(ctx context.Context, d time.Duration) error
}

// Handlers groups the bot's update handlers.
type Handlers struct {
	users    UserService
	listings ListingService
	fsm      state.Manager
	pause    func(ctx context.Context, d time.Duration) error
}

// New builds the handlers.
func New(deps Deps) *Handlers {
	if deps.Pause == nil {
		deps.Pause = sleep
	}
	return &Handlers{
		users:    deps.Users,
		listings: deps.Listings,
		fsm:      deps.FSM,
		pause:    deps.Pause,
	}
}

// RegisterStates binds every conversation step to the FSM. Each step runs
// behind guard so a failing step answers with the technical-error notice.
func (h *Handlers) RegisterStates(guard func(name string) tele.MiddlewareFunc) {
	steps := map[state.State]tele.HandlerFunc{
		StateRegLanguage:        h.onLanguage,
		StateRegPhone:           h.onPhone,
		StateRegLocation:        h.onRegLocation,
		StateListingTitle:       h.onTitle,
		StateListingRooms:       h.onRooms,
		StateListingFloor:       h.onFloor,
		StateListingTotalFloors: h.onTotalFloors,
		StateListingPrice:       h.onPrice,
		StateListingCurrency:    h.onCurrency,
		StateListingImages:      h.onImage,
		StateListingLocation:    h.onListingLocation,
		StateListingConfirm:     h.onConfirm,
		StateListingSaving:      h.onSaving,
	}
	for st, fn := range steps {
		if guard != nil {
			fn = guard(string(st))(fn)
		}
		h.fsm.Handle(st, fn)
	}
}

// Guard is the default step wrapper: error guard with the technical notice.
func Guard(name string) tele.MiddlewareFunc {
	return middleware.ErrorGuard(name, middleware.GuardOptions{Notice: TextTechError})
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}
