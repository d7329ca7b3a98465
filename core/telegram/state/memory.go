package state

import (
	"log/slog"
	"sync"

	"github.com/uyizlang/uyizlangbot/core/logger"
	tghelpers "github.com/uyizlang/uyizlangbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// MemoryManager is the in-memory Manager implementation.
type MemoryManager struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	hmu      sync.RWMutex
	handlers map[State]tele.HandlerFunc
}

var _ Manager = (*MemoryManager)(nil)

// NewMemoryManager constructs an empty MemoryManager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		sessions: make(map[int64]*Session),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

// Handle associates a state with its handler.
func (m *MemoryManager) Handle(st State, h tele.HandlerFunc) {
	if h == nil || st == StateIdle {
		return
	}
	m.hmu.Lock()
	defer m.hmu.Unlock()
	m.handlers[st] = h
}

// Dispatch runs the handler registered for the sender's current state.
// It reports false when the user is idle or the state has no handler.
func (m *MemoryManager) Dispatch(c tele.Context) (bool, error) {
	sender := c.Sender()
	if sender == nil {
		return false, nil
	}
	current := m.GetState(sender.ID)
	if current == StateIdle {
		return false, nil
	}

	m.hmu.RLock()
	h, ok := m.handlers[current]
	m.hmu.RUnlock()

	ctx := tghelpers.BuildContext(c)
	if !ok {
		logger.Debug(ctx, "tg", "fsm.unhandled",
			slog.Int64("user_id", sender.ID),
			slog.String("state", string(current)),
		)
		return false, nil
	}
	logger.Debug(ctx, "tg", "fsm.dispatch",
		slog.String("status", "ok"),
		slog.Int64("user_id", sender.ID),
		slog.String("state", string(current)),
	)
	return true, h(c)
}

func (m *MemoryManager) session(userID int64) *Session {
	sess, ok := m.sessions[userID]
	if !ok {
		sess = &Session{State: StateIdle, TempData: make(map[string]any)}
		m.sessions[userID] = sess
	}
	return sess
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *MemoryManager) GetState(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

// SetState sets the FSM state for the given user.
func (m *MemoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).State = st
}

// Update applies fn to the user's session while holding the manager lock.
// Read-modify-write sequences that must not interleave go through here.
func (m *MemoryManager) Update(userID int64, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.session(userID))
}

// SetTemp stores a temporary key/value pair for the given user session.
func (m *MemoryManager) SetTemp(userID int64, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).TempData[key] = value
}

// GetTemp retrieves a temporary value by key for the given user session.
func (m *MemoryManager) GetTemp(userID int64, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	val, ok := sess.TempData[key]
	return val, ok
}

// Clear removes the entire session for a user.
func (m *MemoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// InProgress reports whether the user currently has an active FSM state.
func (m *MemoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}
