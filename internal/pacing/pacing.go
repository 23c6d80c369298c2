// Package pacing spaces out interactions with the site: randomized settle delays after input
// and a rate limiter plus jitter between navigations.
package pacing

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Jitter sleeps for a random duration in [lo, hi], or returns early with ctx's error.
// A zero or inverted range returns immediately.
func Jitter(ctx context.Context, lo, hi time.Duration) error {
	d := Between(lo, hi)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Between returns a random duration in [lo, hi].
func Between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}

// Pacer rate-limits navigations and adds a randomized pause after each.
type Pacer struct {
	limiter *rate.Limiter
	lo, hi  time.Duration
}

// NewPacer allows perMinute navigations (0 means unlimited) with a jittered pause of [lo, hi].
func NewPacer(perMinute float64, lo, hi time.Duration) *Pacer {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(perMinute / 60)
	}
	return &Pacer{
		limiter: rate.NewLimiter(limit, 1),
		lo:      lo,
		hi:      hi,
	}
}

// Wait blocks until the next interaction is allowed.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	return Jitter(ctx, p.lo, p.hi)
}

// Settle is a short randomized debounce after an input action.
type Settle struct {
	Min, Max time.Duration
}

// Wait sleeps for the settle delay.
func (s Settle) Wait(ctx context.Context) error {
	return Jitter(ctx, s.Min, s.Max)
}
