package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreconfig "github.com/uyizlang/uyizlangbot/core/config"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"
)

// options is the parsed logging block of the configuration.
type options struct {
	format    logFormat
	level     slog.Level
	order     []string
	sampleNum int
	sampleDen int
	profile   string
	file      string
}

func optionsFrom(cfg *coreconfig.Config) options {
	opts := options{
		format:    formatJSON,
		level:     slog.LevelInfo,
		order:     defaultKeyOrder,
		sampleNum: 1,
		sampleDen: 50,
		profile:   "prod",
	}
	if cfg == nil {
		return opts
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		opts.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "json":
	case "kv", "text", "pretty":
		opts.format = formatKV
	default:
		if opts.profile == "debug" || opts.profile == "dev" {
			opts.format = formatKV
		}
	}

	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		opts.level = slog.LevelDebug
	case "warn", "warning":
		opts.level = slog.LevelWarn
	case "error":
		opts.level = slog.LevelError
	}

	if order := splitKeys(lc.KeysOrder); len(order) > 0 {
		opts.order = order
	}
	if num, den, ok := parseRatio(lc.DebugSample); ok {
		opts.sampleNum, opts.sampleDen = num, den
	}

	dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile)
	if dir != "" && name != "" {
		opts.file = filepath.Join(dir, name)
	}
	return opts
}

func splitKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// openSinks returns stdout plus the configured log file. A file that cannot
// be opened is reported on the standard logger and skipped.
func openSinks(opts options) ([]io.Writer, []io.Closer) {
	sinks := []io.Writer{os.Stdout}
	if opts.file == "" {
		return sinks, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.file), 0o755); err != nil {
		log.Printf("logger: create log dir: %v", err)
		return sinks, nil
	}
	f, err := os.OpenFile(opts.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: open log file: %v", err)
		return sinks, nil
	}
	return append(sinks, f), []io.Closer{f}
}

func traceRequested() bool {
	for _, key := range []string{"TRACE", "LOG_TRACE"} {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "on", "yes":
			return true
		}
	}
	return false
}
