package logger

import (
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/time/rate"
)

const defaultSampleEvery = 50

// sampler lets through the first of every N high-volume debug records.
type sampler struct {
	every atomic.Pointer[rate.Sometimes]
}

func newSampler(every int) *sampler {
	s := &sampler{}
	s.Set(every)
	return s
}

// Set replaces the sampling interval. every <= 1 disables sampling.
func (s *sampler) Set(every int) {
	if every <= 1 {
		s.every.Store(nil)
		return
	}
	s.every.Store(&rate.Sometimes{Every: every})
}

// Allow reports whether the current record passes.
func (s *sampler) Allow() bool {
	st := s.every.Load()
	if st == nil {
		return true
	}
	allowed := false
	st.Do(func() { allowed = true })
	return allowed
}

// parseSampleSpec accepts "N" or "k/N" and returns the interval between
// sampled records. "0" and "1" keep everything; garbage falls back to the default.
func parseSampleSpec(spec string) int {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return defaultSampleEvery
	}
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
			return defaultSampleEvery
		}
		if n >= d {
			return 1
		}
		return d / n
	}
	v, err := strconv.Atoi(spec)
	if err != nil || v < 0 {
		return defaultSampleEvery
	}
	return v
}
