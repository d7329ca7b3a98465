package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func okResponse() *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}
}

func TestRetryTransportRetriesDialErrors(t *testing.T) {
	calls := 0
	base := roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return nil, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		}
		return okResponse(), nil
	})
	rt := newRetryTransport(base, 3, 0)

	req, _ := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", strings.NewReader("a=b"))
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	resp.Body.Close()
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryTransportStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("tls: bad certificate")
	base := roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return nil, permanent
	})
	rt := newRetryTransport(base, 3, 0)

	req, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	if _, err := rt.RoundTrip(req); !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want permanent error", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestBuildPollerSelectsMode(t *testing.T) {
	wh, ok := BuildPoller(PollerOptions{
		RunMode: " Webhook ",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example/hook"},
	}).(*tele.Webhook)
	if !ok {
		t.Fatal("expected webhook poller")
	}
	if wh.Listen != "0.0.0.0:8443" || wh.Endpoint.PublicURL != "https://bot.example/hook" {
		t.Fatalf("webhook = %+v", wh)
	}

	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	if !ok {
		t.Fatal("expected long poller")
	}
	if lp.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want default 10s", lp.Timeout)
	}
}
