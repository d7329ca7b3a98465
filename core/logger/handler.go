package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type kv struct {
	key string
	val any
}

// structuredHandler renders records as ordered JSON objects or key=value
// lines. Attributes added through WithAttrs are flattened once, up front.
type structuredHandler struct {
	out    *asyncWriter
	level  slog.Leveler
	format logFormat
	order  []string

	group string
	pre   []kv
}

func newHandler(out *asyncWriter, level slog.Leveler, format logFormat, order []string) *structuredHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	if len(order) == 0 {
		order = defaultKeyOrder
	}
	return &structuredHandler{out: out, level: level, format: format, order: order}
}

func (h *structuredHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.pre = append([]kv(nil), h.pre...)
	for _, a := range attrs {
		clone.pre = appendAttr(clone.pre, h.group, a)
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinKey(h.group, name)
	return &clone
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.out == nil {
		return errors.New("logger: writer not initialized")
	}
	jsonOut := h.format == formatJSON

	ts := r.Time.UTC()
	f := map[string]any{
		"ts":    ts.Truncate(time.Millisecond).Format(timeLayout),
		"level": levelName(r.Level.String()),
	}
	if jsonOut {
		f["ts_unix_nano"] = ts.UnixNano()
	}
	for _, p := range h.pre {
		f[p.key] = p.val
	}
	var attrs []kv
	r.Attrs(func(a slog.Attr) bool {
		attrs = appendAttr(attrs, h.group, a)
		return true
	})
	for _, p := range attrs {
		f[p.key] = p.val
	}
	for _, p := range metaFrom(ctx).fields() {
		if _, set := f[p.key]; !set {
			f[p.key] = p.val
		}
	}
	finish(f, r.Message, jsonOut)

	var line []byte
	if jsonOut {
		var err error
		if line, err = encodeJSON(f, h.order); err != nil {
			return err
		}
	} else {
		line = encodeKV(f, h.order)
	}
	return h.out.Write(append(line, '\n'))
}

// finish fills defaults, shortens the rid, normalizes enums and drops empty values.
func finish(f map[string]any, msg string, jsonOut bool) {
	if rid, ok := f["rid"].(string); ok && rid != "" {
		if short := CompactRID(rid); short != rid {
			f["rid"] = short
			if _, set := f["rid_full"]; jsonOut && !set {
				f["rid_full"] = rid
			}
		}
	}
	if s, _ := f["event"].(string); s == "" {
		f["event"] = "unknown"
		if msg != "" {
			f["event"] = msg
		}
	}
	if s, _ := f["component"].(string); s == "" {
		f["component"] = "app"
	}
	for key, rule := range enumKeys {
		raw, ok := f[key]
		if !ok {
			continue
		}
		if v, keep := normalizeEnum(rule, fmt.Sprint(raw)); keep {
			f[key] = v
		} else {
			delete(f, key)
		}
	}
	for k, v := range f {
		if v == nil || v == "" {
			delete(f, k)
		}
	}
}

func appendAttr(dst []kv, prefix string, a slog.Attr) []kv {
	a.Value = a.Value.Resolve()
	key := joinKey(prefix, a.Key)
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			dst = appendAttr(dst, key, child)
		}
		return dst
	}
	if a.Key == "" {
		return dst
	}
	if k, v, ok := convert(key, a.Value); ok {
		dst = append(dst, kv{k, v})
	}
	return dst
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

// convert maps a slog value to a JSON-friendly one. Durations are emitted in
// milliseconds under a key ending in _ms.
func convert(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}

	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case string:
		return key, strings.TrimSpace(x), true
	case time.Duration:
		return msKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

func msKey(key string) string {
	switch {
	case strings.HasSuffix(key, "_ms"):
		return key
	case key == "duration":
		return "duration_ms"
	}
	return key + "_ms"
}

// keysInOrder lists the configured keys present in f, then the rest sorted.
func keysInOrder(f map[string]any, order []string) []string {
	keys := make([]string, 0, len(f))
	listed := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := f[k]; ok && !listed[k] {
			keys = append(keys, k)
		}
		listed[k] = true
	}
	var rest []string
	for k := range f {
		if !listed[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func encodeJSON(f map[string]any, order []string) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range keysInOrder(f, order) {
		val, err := json.Marshal(f[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func encodeKV(f map[string]any, order []string) []byte {
	var b bytes.Buffer
	for i, k := range keysInOrder(f, order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		s := fmt.Sprint(f[k])
		if strings.IndexFunc(s, needsQuote) >= 0 {
			s = strconv.Quote(s)
		}
		b.WriteString(s)
	}
	return b.Bytes()
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
