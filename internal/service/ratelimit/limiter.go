package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter keeps one token bucket per key. Keys idle long enough for their
// bucket to refill completely are dropped on the next sweep.
type Limiter struct {
	mu        sync.Mutex
	m         map[string]*entry
	burst     int
	every     rate.Limit
	now       func() time.Time
	lastSweep time.Time
}

// New allows bursts of capacity requests per key, refilled at refillPerSec.
func New(capacity, refillPerSec float64) *Limiter {
	burst := int(capacity)
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		m:     make(map[string]*entry),
		burst: burst,
		every: rate.Limit(refillPerSec),
		now:   time.Now,
	}
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.m[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(l.every, l.burst)}
		l.m[key] = e
	}
	e.seen = now
	return e.lim.AllowN(now, 1)
}

// Len is the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

func (l *Limiter) idleAfter() time.Duration {
	if l.every <= 0 {
		return time.Hour
	}
	return time.Duration(float64(l.burst) / float64(l.every) * float64(time.Second))
}

func (l *Limiter) sweep(now time.Time) {
	idle := l.idleAfter()
	if now.Sub(l.lastSweep) < idle {
		return
	}
	l.lastSweep = now
	for k, e := range l.m {
		if now.Sub(e.seen) >= idle {
			delete(l.m, k)
		}
	}
}
