package format

import "testing"

func TestEscapeMarkdownV1(t *testing.T) {
	got, err := EscapeMarkdown("2_xonali *yangi* [uy]`", MarkdownV1)
	if err != nil {
		t.Fatalf("escape: %v", err)
	}
	want := "2\\_xonali \\*yangi\\* \\[uy]\\`"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("41.3, 69.2 (uy)!", MarkdownV2)
	if err != nil {
		t.Fatalf("escape: %v", err)
	}
	want := "41\\.3, 69\\.2 \\(uy\\)\\!"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEscapeMarkdownUnknownVersion(t *testing.T) {
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("expected error")
	}
}

func TestOr(t *testing.T) {
	phone, empty := "+998901234567", ""
	if got := Or(&phone, "-"); got != phone {
		t.Fatalf("Or(phone) = %q", got)
	}
	if Or(nil, "-") != "-" || Or(&empty, "-") != "-" {
		t.Fatal("expected fallback for nil and empty")
	}
}
