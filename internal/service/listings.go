package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uyizlang/uyizlangbot/core/logger"
	"github.com/uyizlang/uyizlangbot/internal/cache"
	"github.com/uyizlang/uyizlangbot/internal/domain"
	"github.com/uyizlang/uyizlangbot/internal/events"
)

const userListingsKey = "user_listings"

// ListingStore is the persistence the listing service needs.
type ListingStore interface {
	Create(ctx context.Context, l *domain.Listing) error
	ListActiveByUser(ctx context.Context, userID int64) ([]domain.Listing, error)
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

// ListingOptions carries optional collaborators of ListingService.
type ListingOptions struct {
	Cache  *cache.Cache
	Events events.Publisher
	Now    func() time.Time
}

// ListingService creates listings and answers listing queries.
type ListingService struct {
	listings ListingStore
	users    UserStore
	cache    *cache.Cache
	events   events.Publisher
	now      func() time.Time
}

// NewListingService wires the stores; nil options get working defaults.
func NewListingService(listings ListingStore, users UserStore, opts ListingOptions) *ListingService {
	if opts.Cache == nil {
		opts.Cache = cache.New(cache.Options{})
	}
	if opts.Events == nil {
		opts.Events = events.Noop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ListingService{
		listings: listings,
		users:    users,
		cache:    opts.Cache,
		events:   opts.Events,
		now:      opts.Now,
	}
}

// Now returns the service clock reading.
func (s *ListingService) Now() time.Time {
	return s.now()
}

// Create stores the draft for the owner identified by telegramID. Both
// timestamps derive from one clock reading.
func (s *ListingService) Create(ctx context.Context, telegramID int64, d domain.ListingDraft) (*domain.Listing, error) {
	owner, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	now := s.now()
	l := &domain.Listing{
		UserID:      owner.ID,
		Title:       d.Title,
		Description: d.Description,
		Rooms:       d.Rooms,
		Floor:       d.Floor,
		TotalFloors: d.TotalFloors,
		Price:       d.Price,
		Currency:    d.Currency,
		Images:      append(domain.Images{}, d.Images...),
		Location:    d.Location,
		Phone:       d.Phone,
		IsActive:    true,
		CreatedAt:   now,
		ExpiresAt:   now.Add(domain.ListingLifetime),
	}
	if l.Description == "" {
		l.Description = domain.DefaultDescription
	}
	if l.Phone == nil {
		l.Phone = owner.Phone
	}

	if err := s.listings.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	s.cache.Delete(cache.Key(userListingsKey, telegramID))
	logger.Info(ctx, "service.listings", "listing.created",
		slog.Int64("listing_id", l.ID),
		slog.Int("images", len(l.Images)),
	)

	ev := events.ListingCreated{
		ListingID:  l.ID,
		UserID:     owner.ID,
		TelegramID: telegramID,
		Title:      l.Title,
		Rooms:      l.Rooms,
		Price:      l.Price,
		Currency:   l.Currency,
		Images:     len(l.Images),
		CreatedAt:  l.CreatedAt,
		ExpiresAt:  l.ExpiresAt,
	}
	if err := s.events.PublishListingCreated(ctx, ev); err != nil {
		logger.Warn(ctx, "events", "publish.fail",
			slog.Int64("listing_id", l.ID),
			slog.String("err", err.Error()),
		)
	}
	return l, nil
}

// ListActive returns the active listings of telegramID, newest first.
// Results are memoized per user for the cache window; unknown users get none.
func (s *ListingService) ListActive(ctx context.Context, telegramID int64) ([]domain.Listing, error) {
	return cache.Memoize(ctx, s.cache, userListingsKey, []any{telegramID}, func(ctx context.Context) ([]domain.Listing, error) {
		owner, err := s.users.GetByTelegramID(ctx, telegramID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolve owner: %w", err)
		}
		list, err := s.listings.ListActiveByUser(ctx, owner.ID)
		if err != nil {
			return nil, err
		}
		logger.Debug(ctx, "service.listings", "listings.loaded",
			slog.Int("listings_total", len(list)),
		)
		return list, nil
	})
}

// Stats returns the admin totals.
func (s *ListingService) Stats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	var err error
	if st.Users, err = s.users.Count(ctx); err != nil {
		return st, err
	}
	if st.Listings, err = s.listings.Count(ctx); err != nil {
		return st, err
	}
	if st.ActiveListings, err = s.listings.CountActive(ctx); err != nil {
		return st, err
	}
	return st, nil
}
