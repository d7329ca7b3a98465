package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
)

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"dial", dial, true},
		{"wrapped url dial", &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dial}, true},
		{"canceled", fmt.Errorf("send: %w", context.Canceled), false},
		{"plain", errors.New("bad request"), false},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.err); got != tc.want {
			t.Fatalf("%s: ShouldRetry = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("x: %w", context.Canceled), "canceled"},
		{context.DeadlineExceeded, "timeout"},
		{&net.OpError{Op: "dial", Err: errors.New("refused")}, "dial"},
		{&net.DNSError{Err: "no such host", Name: "api.telegram.org"}, "dns"},
		{errors.New("telegram: internal server error (500)"), "http_5xx"},
		{errors.New("telegram: chat not found (400)"), "http_4xx"},
		{errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
	if Classify(nil) != "" {
		t.Fatal("nil error must classify as empty")
	}
}

func TestRedact(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AA-bb_cc/sendMessage": EOF`)
	got := Redact(err)
	want := `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF`
	if got != want {
		t.Fatalf("Redact = %q", got)
	}
}
