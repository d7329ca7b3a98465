// Package netutil classifies Bot API and network errors for retries and logs.
package netutil

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// unwrapURL returns the error inside a *url.Error, or nil.
func unwrapURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil && !errors.Is(ue.Err, err) {
		return ue.Err
	}
	return nil
}

// ShouldRetry reports whether err is a transient failure that happened before
// Telegram acted on the request: dial errors, timeouts and flood control.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var op *net.OpError
	if errors.As(err, &op) {
		if op.Op == "dial" || op.Timeout() {
			return true
		}
		if inner, ok := op.Err.(net.Error); ok && inner.Timeout() {
			return true
		}
	}
	if inner := unwrapURL(err); inner != nil {
		return ShouldRetry(inner)
	}
	var flood tele.FloodError
	return errors.As(err, &flood)
}

// Classify maps err to a short stable code: canceled, timeout, dns, dial,
// tls, flood, http_5xx, http_4xx or unknown. A nil error maps to "".
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if code := transportCode(err); code != "" {
		return code
	}
	switch status := HTTPStatus(err); {
	case status == http.StatusTooManyRequests:
		return "flood"
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}
	return "unknown"
}

func transportCode(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	var dns *net.DNSError
	if errors.As(err, &dns) {
		if dns.IsTimeout {
			return "timeout"
		}
		return "dns"
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	var op *net.OpError
	if errors.As(err, &op) {
		if op.Op == "dial" {
			return "dial"
		}
		if code := transportCode(op.Err); code != "" {
			return code
		}
	}
	if inner := unwrapURL(err); inner != nil {
		if code := transportCode(inner); code != "" {
			return code
		}
	}
	var alert tls.AlertError
	if errors.As(err, &alert) {
		return "tls"
	}
	return ""
}

// HTTPStatus returns the Bot API status code carried by err, or 0. Errors
// built from API descriptions end in "(code)".
func HTTPStatus(err error) int {
	if err == nil {
		return 0
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return http.StatusTooManyRequests
	}
	var group tele.GroupError
	if errors.As(err, &group) {
		return http.StatusBadRequest
	}

	msg := err.Error()
	open, end := strings.LastIndex(msg, "("), strings.LastIndex(msg, ")")
	if open < 0 || end <= open+1 {
		return 0
	}
	code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : end]))
	if convErr != nil {
		return 0
	}
	return code
}

// Redact returns the error message with bot tokens masked.
func Redact(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
