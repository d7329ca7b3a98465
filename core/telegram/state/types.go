package state

import tele "gopkg.in/telebot.v4"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and temporary data for a user.
type Session struct {
	State    State
	TempData map[string]any
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager interface {
	Handle(st State, h tele.HandlerFunc)
	Dispatch(c tele.Context) (bool, error)

	GetState(userID int64) State
	SetState(userID int64, st State)
	Update(userID int64, fn func(*Session))
	GetTemp(userID int64, key string) (any, bool)
	SetTemp(userID int64, key string, value any)
	Clear(userID int64)
	InProgress(userID int64) bool
}

// Temp reads a typed temporary value from the user's session.
func Temp[T any](m Manager, userID int64, key string) (T, bool) {
	var zero T
	v, ok := m.GetTemp(userID, key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
