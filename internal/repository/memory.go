package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/uyizlang/uyizlangbot/internal/domain"
)

// MemoryUsers is an in-process user store for tests and local runs.
type MemoryUsers struct {
	mu     sync.Mutex
	nextID int64
	byTG   map[int64]*domain.User
	err    error
}

// NewMemoryUsers returns an empty store.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byTG: make(map[int64]*domain.User)}
}

func (m *MemoryUsers) Create(_ context.Context, telegramID int64, language string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.byTG[telegramID]; ok {
		u.Language = language
		cp := *u
		return &cp, nil
	}
	m.nextID++
	u := &domain.User{ID: m.nextID, TelegramID: telegramID, Language: language, CreatedAt: time.Now()}
	m.byTG[telegramID] = u
	cp := *u
	return &cp, nil
}

func (m *MemoryUsers) GetByTelegramID(_ context.Context, telegramID int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byTG[telegramID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryUsers) UpdatePhone(_ context.Context, telegramID int64, phone string) error {
	return m.update(telegramID, func(u *domain.User) { u.Phone = &phone })
}

func (m *MemoryUsers) UpdateLocation(_ context.Context, telegramID int64, location string) error {
	return m.update(telegramID, func(u *domain.User) { u.Location = &location })
}

func (m *MemoryUsers) update(telegramID int64, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	u, ok := m.byTG[telegramID]
	if !ok {
		return domain.ErrNotFound
	}
	fn(u)
	return nil
}

// SetErr makes every later call fail with err; nil restores normal behaviour.
func (m *MemoryUsers) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryUsers) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.byTG)), nil
}

// MemoryListings is an in-process listing store for tests and local runs.
type MemoryListings struct {
	mu     sync.Mutex
	nextID int64
	rows   []domain.Listing
	err    error
	lists  int
}

// NewMemoryListings returns an empty store.
func NewMemoryListings() *MemoryListings {
	return &MemoryListings{}
}

func (m *MemoryListings) Create(_ context.Context, l *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	l.ID = m.nextID
	cp := *l
	cp.Images = append(domain.Images(nil), l.Images...)
	m.rows = append(m.rows, cp)
	return nil
}

func (m *MemoryListings) ListActiveByUser(_ context.Context, userID int64) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Listing
	for _, l := range m.rows {
		if l.UserID == userID && l.IsActive {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryListings) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.rows)), nil
}

func (m *MemoryListings) CountActive(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, l := range m.rows {
		if l.IsActive {
			n++
		}
	}
	return n, nil
}

// Deactivate flips the active flag of listing id.
func (m *MemoryListings) Deactivate(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].IsActive = false
		}
	}
}

// SetErr makes every later call fail with err; nil restores normal behaviour.
func (m *MemoryListings) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ListCalls returns how many times ListActiveByUser ran.
func (m *MemoryListings) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}
