// Package service holds the bot's business operations over the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/uyizlang/uyizlangbot/core/logger"
	"github.com/uyizlang/uyizlangbot/internal/domain"
)

const maxLanguageLen = 10

// UserStore is the persistence the user service needs.
type UserStore interface {
	Create(ctx context.Context, telegramID int64, language string) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	UpdatePhone(ctx context.Context, telegramID int64, phone string) error
	UpdateLocation(ctx context.Context, telegramID int64, location string) error
	Count(ctx context.Context) (int64, error)
}

// UserService registers users and updates their contact details.
type UserService struct {
	store UserStore
}

// NewUserService wires store.
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// GetUserByTelegramID returns domain.ErrNotFound for unknown users.
func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.store.GetByTelegramID(ctx, telegramID)
}

// Exists reports whether telegramID is registered.
func (s *UserService) Exists(ctx context.Context, telegramID int64) (bool, error) {
	_, err := s.store.GetByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	}
	return false, err
}

// Register creates the user row with the chosen language. Phone and location stay unset.
func (s *UserService) Register(ctx context.Context, telegramID int64, language string) (*domain.User, error) {
	lang := NormalizeLanguage(language)
	u, err := s.store.Create(ctx, telegramID, lang)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	logger.Info(ctx, "service.users", "user.registered",
		slog.Int64("user_id", telegramID),
		slog.String("lang", lang),
	)
	return u, nil
}

// SetPhone stores the user's phone number.
func (s *UserService) SetPhone(ctx context.Context, telegramID int64, phone string) error {
	if err := s.store.UpdatePhone(ctx, telegramID, phone); err != nil {
		return fmt.Errorf("set phone: %w", err)
	}
	return nil
}

// SetLocation stores the user's location.
func (s *UserService) SetLocation(ctx context.Context, telegramID int64, location string) error {
	if err := s.store.UpdateLocation(ctx, telegramID, location); err != nil {
		return fmt.Errorf("set location: %w", err)
	}
	return nil
}

// NormalizeLanguage keeps the first whitespace-separated token, lower-cased.
// "UZ 🇺🇿" becomes "uz"; blank input falls back to the default language.
func NormalizeLanguage(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return domain.DefaultLanguage
	}
	lang := strings.ToLower(fields[0])
	for utf8.RuneCountInString(lang) > maxLanguageLen {
		_, size := utf8.DecodeLastRuneInString(lang)
		lang = lang[:len(lang)-size]
	}
	return lang
}
