package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tagus-watch/config"
)

// Class identifies the external API a call belongs to.
type Class string

const (
	ClassFetch Class = "fetch"
	ClassAI    Class = "ai"
)

// Limiter applies sliding-window admission control over all external calls
// made through one instance, plus a fixed per-class smoothing delay.
//
// The window holds the admission timestamps of the last hour and is shared
// across classes. When it is saturated the caller blocks for a full cooldown
// before re-evaluating; blocking the whole pipeline is acceptable since
// processing is strictly sequential. Nothing is persisted, so the window
// resets on restart.
type Limiter struct {
	mu         sync.Mutex
	maxPerHour int
	window     time.Duration
	cooldown   time.Duration
	admissions []time.Time

	smoothers map[Class]*rate.Limiter

	now func() time.Time
}

// New creates a Limiter with explicit settings. delays maps each class to the
// fixed pause applied after admission.
func New(maxPerHour int, delays map[Class]time.Duration, cooldown time.Duration) *Limiter {
	if maxPerHour <= 0 {
		maxPerHour = 200
	}
	if cooldown <= 0 {
		cooldown = time.Hour
	}
	smoothers := make(map[Class]*rate.Limiter, len(delays))
	for class, delay := range delays {
		if delay > 0 {
			smoothers[class] = rate.NewLimiter(rate.Every(delay), 1)
		}
	}
	return &Limiter{
		maxPerHour: maxPerHour,
		window:     time.Hour,
		cooldown:   cooldown,
		smoothers:  smoothers,
		now:        time.Now,
	}
}

// FromConfig builds the production limiter from the rate_limit config section.
func FromConfig(cfg config.RateLimitConfig) *Limiter {
	delays := map[Class]time.Duration{
		ClassFetch: time.Duration(cfg.FetchDelaySeconds * float64(time.Second)),
		ClassAI:    time.Duration(cfg.AIDelaySeconds * float64(time.Second)),
	}
	return New(cfg.MaxRequestsPerHour, delays, time.Duration(cfg.CooldownSeconds)*time.Second)
}

// Wait blocks until one more call of the given class may be issued. A
// saturated window is not an error; the only error returned is context
// cancellation.
func (l *Limiter) Wait(ctx context.Context, class Class) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)

		if len(l.admissions) < l.maxPerHour {
			l.admissions = append(l.admissions, now)
			l.mu.Unlock()
			break
		}
		l.mu.Unlock()

		config.WarnWithFields("rate limit reached, cooling down", config.Fields{
			"class":    string(class),
			"cooldown": l.cooldown.String(),
		})
		select {
		case <-time.After(l.cooldown):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if smoother, ok := l.smoothers[class]; ok {
		return smoother.Wait(ctx)
	}
	return nil
}

// prune drops admissions older than the window. Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	keep := l.admissions[:0]
	for _, t := range l.admissions {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	l.admissions = keep
}
