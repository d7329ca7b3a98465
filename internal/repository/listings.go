package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/uyizlang/uyizlangbot/internal/domain"
)

// ListingRepository stores listings.
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository wraps db.
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, user_id, title, description, rooms, floor, total_floors, price,
	currency, images, location, phone, is_active, created_at, expires_at`

// Create inserts l and sets l.ID. Timestamps come from the caller.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	rows, err := r.db.NamedQueryContext(ctx, `
		INSERT INTO listings
			(user_id, title, description, rooms, floor, total_floors, price,
			 currency, images, location, phone, is_active, created_at, expires_at)
		VALUES
			(:user_id, :title, :description, :rooms, :floor, :total_floors, :price,
			 :currency, :images, :location, :phone, :is_active, :created_at, :expires_at)
		RETURNING id`, l)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("insert listing: %w", err)
		}
		return fmt.Errorf("insert listing: no id returned")
	}
	if err := rows.Scan(&l.ID); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// ListActiveByUser returns the user's active listings, newest first.
func (r *ListingRepository) ListActiveByUser(ctx context.Context, userID int64) ([]domain.Listing, error) {
	var list []domain.Listing
	err := r.db.SelectContext(ctx, &list, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select listings: %w", err)
	}
	return list, nil
}

// Count returns the number of listings.
func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM listings`); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

// CountActive returns the number of active listings.
func (r *ListingRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM listings WHERE is_active = TRUE`); err != nil {
		return 0, fmt.Errorf("count active listings: %w", err)
	}
	return n, nil
}
