package telegram

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/uyizlang/uyizlangbot/core/config"
	"github.com/uyizlang/uyizlangbot/core/telegram/netutil"
)

const (
	defaultLongPollTimeout = 10 * time.Second

	apiClientTimeout = 30 * time.Second
	apiRetries       = 3
	apiRetryStep     = 2 * time.Second
)

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// BuildPoller picks the update source: a webhook listener when RunMode is
// "webhook", long polling for anything else.
func BuildPoller(opts PollerOptions) tele.Poller {
	mode := strings.ToLower(strings.TrimSpace(opts.RunMode))
	if mode == coreconfig.RunModeWebhook {
		addr := net.JoinHostPort(opts.Webhook.Listen, strconv.Itoa(opts.Webhook.Port))
		return &tele.Webhook{
			Listen:   addr,
			Endpoint: &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	}
	lp := &tele.LongPoller{Timeout: defaultLongPollTimeout}
	if opts.LongPollTimeoutSeconds > 0 {
		lp.Timeout = time.Duration(opts.LongPollTimeoutSeconds) * time.Second
	}
	return lp
}

// BuildHTTPClient returns the client used for Bot API calls. Connection level
// failures are retried with a linear backoff.
func BuildHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   apiClientTimeout,
		Transport: newRetryTransport(base, apiRetries, apiRetryStep),
	}
}

type retryTransport struct {
	next    http.RoundTripper
	retries int
	step    time.Duration
}

func newRetryTransport(next http.RoundTripper, retries int, step time.Duration) *retryTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &retryTransport{next: next, retries: max(retries, 0), step: step}
}

// RoundTrip repeats a request only when netutil.ShouldRetry says the server
// never acted on it. Requests whose body cannot be replayed are sent once.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	for n := 1; err != nil && n <= t.retries && netutil.ShouldRetry(err); n++ {
		if !replayable(req) {
			break
		}
		if werr := t.wait(req, n); werr != nil {
			return nil, werr
		}
		again, rerr := rewind(req)
		if rerr != nil {
			return nil, rerr
		}
		resp, err = t.next.RoundTrip(again)
	}
	return resp, err
}

func (t *retryTransport) wait(req *http.Request, n int) error {
	delay := t.step * time.Duration(n)
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func rewind(req *http.Request) (*http.Request, error) {
	again := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		again.Body = body
	}
	return again, nil
}
