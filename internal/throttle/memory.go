package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sweepEvery bounds how often Allow scans for idle buckets.
const sweepEvery = time.Minute

// MemoryLimiter keeps one token bucket per key. Buckets refill evenly over
// the window and hold at most Limit tokens. A bucket idle for a whole window
// is full again, so it is dropped and recreated on the next request.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	swept   time.Time
	now     func() time.Time
}

type bucket struct {
	lim    *rate.Limiter
	window time.Duration
	seen   time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*bucket), now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, r Rate) (bool, time.Duration, error) {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.swept) >= sweepEvery {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Every(r.Window/time.Duration(r.Limit)), r.Limit), window: r.Window}
		l.buckets[key] = b
	}
	b.seen = now
	l.mu.Unlock()

	res := b.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, r.Window, nil
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait, nil
	}
	return true, 0, nil
}

// sweep drops buckets idle for at least their window. Callers hold mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.seen) >= b.window {
			delete(l.buckets, k)
		}
	}
	l.swept = now
}

// Len reports how many keys currently hold a bucket.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
