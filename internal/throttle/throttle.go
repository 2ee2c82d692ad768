// Package throttle counts requests per caller key against a fixed rate.
// Redis backs the counters when configured so limits hold across replicas;
// otherwise an in-process token bucket per key is used.
package throttle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is Limit requests per Window, written "N/unit" (5/minute).
type Rate struct {
	Limit  int
	Window time.Duration
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

var units = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "second": time.Second,
	"m": time.Minute, "min": time.Minute, "minute": time.Minute,
	"h": time.Hour, "hour": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour,
}

func ParseRate(s string) (Rate, error) {
	num, unit, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("rate %q: want N/unit", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return Rate{}, fmt.Errorf("rate %q: count must be a positive integer", s)
	}
	window, ok := units[strings.ToLower(unit)]
	if !ok {
		return Rate{}, fmt.Errorf("rate %q: unknown unit %q", s, unit)
	}
	return Rate{Limit: n, Window: window}, nil
}

// Limiter reports whether one more request for key fits in r. When it does
// not, retryAfter says how long the caller should wait.
type Limiter interface {
	Allow(ctx context.Context, key string, r Rate) (ok bool, retryAfter time.Duration, err error)
}
