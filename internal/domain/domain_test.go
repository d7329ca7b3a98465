package domain

import (
	"testing"
	"time"
)

func TestImagesColumnFormat(t *testing.T) {
	v, err := Images{"f1", "f2"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != `["f1","f2"]` {
		t.Fatalf("value = %v", v)
	}
	empty, _ := Images(nil).Value()
	if empty != "[]" {
		t.Fatalf("nil images = %v", empty)
	}

	var im Images
	if err := im.Scan([]byte(`["a","b","c"]`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(im) != 3 || im[2] != "c" {
		t.Fatalf("scanned = %v", im)
	}
	if err := im.Scan(42); err == nil {
		t.Fatal("expected error for int source")
	}
}

func TestRemainingDays(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := Listing{CreatedAt: created, ExpiresAt: created.Add(ListingLifetime)}

	if d := l.RemainingDays(created.Add(time.Second)); d != 30 {
		t.Fatalf("fresh listing = %d days", d)
	}
	if d := l.RemainingDays(created.Add(29*24*time.Hour + time.Hour)); d != 1 {
		t.Fatalf("last day = %d", d)
	}
	if d := l.RemainingDays(created.Add(31 * 24 * time.Hour)); d != 0 {
		t.Fatalf("expired = %d", d)
	}
}
