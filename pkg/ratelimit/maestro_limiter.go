// Package ratelimit bounds the request rate to external providers.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter bounds outbound calls with a max-in-flight semaphore and a minimum
// spacing between consecutive acquisitions. A Limiter with MaxInFlight = batch
// size and MinInterval = 0 reproduces plain chunked fan-out; a positive
// MinInterval spaces individual requests instead.
type Limiter struct {
	sem         chan struct{}
	minInterval time.Duration

	mu   sync.Mutex
	last time.Time
}

// Config holds limiter configuration.
type Config struct {
	MaxInFlight int           // maximum concurrent outbound calls (default: 5)
	MinInterval time.Duration // minimum spacing between call starts (default: 0)
}

// DefaultConfig returns the default limiter configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxInFlight: 5,
		MinInterval: 0,
	}
}

// New creates a Limiter.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 5
	}
	return &Limiter{
		sem:         make(chan struct{}, maxInFlight),
		minInterval: cfg.MinInterval,
	}
}

// Acquire blocks until a slot is free and the spacing interval has elapsed.
// The returned release function must be called when the call completes.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if l.minInterval > 0 {
		if err := l.waitInterval(ctx); err != nil {
			<-l.sem
			return nil, err
		}
	}

	return func() { <-l.sem }, nil
}

// TryAcquire acquires a slot without blocking. Returns false when the limiter
// is saturated.
func (l *Limiter) TryAcquire() (func(), bool) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, true
	default:
		return nil, false
	}
}

// InFlight returns the number of currently held slots.
func (l *Limiter) InFlight() int {
	return len(l.sem)
}

func (l *Limiter) waitInterval(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	next := l.last.Add(l.minInterval)
	if next.Before(now) {
		next = now
	}
	l.last = next
	l.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
