// Package proxy rotates upstream requests across a list of proxy endpoints
// so the ranking site never sees a burst of traffic from a single address.
package proxy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Direct is the sentinel endpoint meaning "no proxy, contact the upstream
// host directly". It is what Next returns when the rotator was built from an
// empty proxy list.
const Direct = ""

// Defaults applied by New when the corresponding argument is zero.
const (
	DefaultCooldown = 12 * time.Second
	DefaultPacing   = 1 * time.Second
)

// Rotator hands out proxy endpoints in strict round-robin order while
// enforcing two delays: a per-proxy cool-down between reuses of the same
// endpoint, and a global pacing interval between any two requests.
//
// The cool-down only grows within a run; the fetcher extends it when the
// upstream signals a rate limit.
type Rotator struct {
	mu       sync.Mutex
	proxies  []string
	cooldown time.Duration
	pacer    *rate.Limiter
	index    int
	lastUsed map[int]time.Time
	logger   *slog.Logger
}

// New creates a Rotator over the given proxy endpoints. An empty list is
// treated as a single Direct endpoint. Zero durations fall back to
// DefaultCooldown and DefaultPacing.
func New(proxies []string, cooldown, pacing time.Duration) *Rotator {
	if len(proxies) == 0 {
		proxies = []string{Direct}
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if pacing <= 0 {
		pacing = DefaultPacing
	}
	return &Rotator{
		proxies:  proxies,
		cooldown: cooldown,
		pacer:    rate.NewLimiter(rate.Every(pacing), 1),
		lastUsed: make(map[int]time.Time),
		logger:   slog.Default(),
	}
}

// Len returns the number of endpoints in the rotation.
func (r *Rotator) Len() int {
	return len(r.proxies)
}

// Cooldown returns the current per-proxy cool-down.
func (r *Rotator) Cooldown() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cooldown
}

// ExtendCooldown raises the per-proxy cool-down to d. Smaller values are
// ignored: the cool-down never shrinks within a run.
func (r *Rotator) ExtendCooldown(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > r.cooldown {
		r.logger.Debug("extending proxy cooldown",
			"from", r.cooldown.Seconds(), "to", d.Seconds())
		r.cooldown = d
	}
}

// Next returns the next endpoint in the rotation, blocking as long as needed
// to honor the per-proxy cool-down and the global pacing interval. The only
// error it can return is the context's.
func (r *Rotator) Next(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index
	endpoint := r.proxies[idx]

	if last, ok := r.lastUsed[idx]; ok {
		remaining := r.cooldown - time.Since(last)
		if remaining > 0 {
			r.logger.Debug("sleeping before proxy reuse",
				"proxy", idx, "seconds", remaining.Seconds())
			if err := sleep(ctx, remaining); err != nil {
				return "", err
			}
		}
	}
	r.lastUsed[idx] = time.Now()

	// Advance, wrapping back to the start at the end of the list.
	r.index = (r.index + 1) % len(r.proxies)

	// Global pacing between requests, regardless of which proxy serves them.
	if err := r.pacer.Wait(ctx); err != nil {
		return "", err
	}

	return endpoint, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
