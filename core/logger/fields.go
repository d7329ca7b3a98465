package logger

import "strings"

// defaultKeyOrder puts correlation keys first, then the bot's domain keys.
// Keys not listed follow in alphabetical order.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"trace_id",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"state",
	"outcome",
	"duration_ms",
	"slow",
	"messages",
	"kb",
	"count",
	"cache",
	"cache_key",
	"listing_id",
	"listings_total",
	"images",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"http_code",
	"db",
	"host",
	"port",
	"topic",
	"err",
	"err_code",
	"retryable",
	"attempts",
	"backoff_ms",
	"limit",
	"window_ms",
}

type enumRule struct {
	values      []string
	keepUnknown bool
}

// enumKeys restricts values of keys that dashboards group on.
var enumKeys = map[string]enumRule{
	"status":  {values: []string{"ok", "fail", "skip", "retry", "rate_limited", "cancelled", "slow"}, keepUnknown: true},
	"cache":   {values: []string{"hit", "miss", "expired", "clear"}},
	"outcome": {values: []string{"ok", "fail", "cancelled", "rate_limited"}},
}

func levelName(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return "DEBUG"
	case "", "info":
		return "INFO"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	case "fatal":
		return "FATAL"
	}
	return strings.ToUpper(raw)
}

// normalizeEnum returns the canonical value and whether the field stays.
func normalizeEnum(rule enumRule, raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	for _, allowed := range rule.values {
		if v == allowed {
			return v, true
		}
	}
	if rule.keepUnknown {
		return raw, true
	}
	return "", false
}
