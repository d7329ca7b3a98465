package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler lets num out of every den calls through. A zero ratio
// disables sampling.
type ratioSampler struct {
	ratio atomic.Pointer[[2]int64]
	seq   atomic.Uint64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the ratio and restarts the sequence.
func (s *ratioSampler) Set(num, den int) {
	r := [2]int64{int64(num), int64(den)}
	if num <= 0 || den <= 0 {
		r = [2]int64{}
	} else if num > den {
		r[0] = r[1]
	}
	s.ratio.Store(&r)
	s.seq.Store(0)
}

// Allow reports whether the next call passes.
func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	if r == nil || r[1] == 0 {
		return true
	}
	pos := (s.seq.Add(1) - 1) % uint64(r[1])
	return int64(pos) < r[0]
}

// parseRatio reads "num/den" or "den" (meaning 1/den). "0" and "off"
// disable sampling; ok is false for blank or malformed input.
func parseRatio(raw string) (num, den int, ok bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "":
		return 0, 0, false
	case "0", "off":
		return 0, 0, true
	}
	if a, b, found := strings.Cut(raw, "/"); found {
		n, err1 := strconv.Atoi(strings.TrimSpace(a))
		d, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil || n < 0 || d <= 0 {
			return 0, 0, false
		}
		return n, d, true
	}
	d, err := strconv.Atoi(raw)
	if err != nil || d < 0 {
		return 0, 0, false
	}
	return 1, d, true
}
