package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uyizlang/uyizlangbot/internal/domain"
)

func TestMemoryUsersLifecycle(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUsers()

	if _, err := users.GetByTelegramID(ctx, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	u, err := users.Create(ctx, 5, "uz")
	if err != nil || u.ID != 1 {
		t.Fatalf("create = %+v, %v", u, err)
	}
	if err := users.UpdatePhone(ctx, 5, "+998901234567"); err != nil {
		t.Fatalf("phone: %v", err)
	}
	if err := users.UpdateLocation(ctx, 6, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown user update err = %v", err)
	}
	again, _ := users.Create(ctx, 5, "ru")
	if again.ID != 1 || again.Language != "ru" || again.Phone == nil {
		t.Fatalf("repeat create = %+v", again)
	}
	if n, _ := users.Count(ctx); n != 1 {
		t.Fatalf("count = %d", n)
	}
}

func TestMemoryListingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryListings()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		l := &domain.Listing{UserID: 1, IsActive: true, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Create(ctx, l); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	_ = store.Create(ctx, &domain.Listing{UserID: 2, IsActive: true, CreatedAt: base})
	store.Deactivate(2)

	list, err := store.ListActiveByUser(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != 3 || list[1].ID != 1 {
		t.Fatalf("ids = %+v", list)
	}
	if n, _ := store.CountActive(ctx); n != 3 {
		t.Fatalf("active = %d", n)
	}
	if n, _ := store.Count(ctx); n != 4 {
		t.Fatalf("total = %d", n)
	}
}
