package helpers

import "context"

// UserLookup finds the stored account for a Telegram user id.
type UserLookup[T any] interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (T, error)
}

// CurrentUser loads the account of telegramID from users. A nil lookup yields
// the zero T.
func CurrentUser[T any](ctx context.Context, users UserLookup[T], telegramID int64) (T, error) {
	if users == nil {
		var zero T
		return zero, nil
	}
	return users.GetUserByTelegramID(ctx, telegramID)
}
