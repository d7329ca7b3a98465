// Package domain defines the entities shared by repositories, services and handlers.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

const (
	// DefaultDescription fills listings created without a description.
	DefaultDescription = "Holati zo'r Hamma sharoitlar bor"
	// ListingLifetime is how long a listing stays active after creation.
	ListingLifetime = 30 * 24 * time.Hour
	// MaxListingImages caps photos captured per listing.
	MaxListingImages = 6
	// DefaultLanguage is stored when registration has not picked one.
	DefaultLanguage = "uz"
)

// User is a registered bot user.
type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	Phone      *string   `db:"phone"`
	Location   *string   `db:"location"`
	Language   string    `db:"language"`
	CreatedAt  time.Time `db:"created_at"`
}

// Images is an ordered list of Telegram file ids stored as a JSON array.
type Images []string

// Value implements driver.Valuer.
func (im Images) Value() (driver.Value, error) {
	if im == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(im))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (im *Images) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*im = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("images: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*im = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	*im = out
	return nil
}

// Listing is a property advertisement owned by a user.
type Listing struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Rooms       int       `db:"rooms"`
	Floor       int       `db:"floor"`
	TotalFloors int       `db:"total_floors"`
	Price       int64     `db:"price"`
	Currency    string    `db:"currency"`
	Images      Images    `db:"images"`
	Location    string    `db:"location"`
	Phone       *string   `db:"phone"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	ExpiresAt   time.Time `db:"expires_at"`
}

// RemainingDays returns whole days left until expiry, rounded up, never negative.
func (l Listing) RemainingDays(now time.Time) int {
	left := l.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

// ListingDraft accumulates listing fields while the user fills the form.
type ListingDraft struct {
	Title       string
	Description string
	Rooms       int
	Floor       int
	TotalFloors int
	Price       int64
	Currency    string
	Images      []string
	Location    string
	Phone       *string
}

// Stats are the admin totals.
type Stats struct {
	Users          int64
	Listings       int64
	ActiveListings int64
}
