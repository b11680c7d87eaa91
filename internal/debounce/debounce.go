// Package debounce provides a trailing-edge debouncer and a monotonic token
// guard. Together they make bursty lookups safe: only the last request in a
// burst runs, and a slow early response can never overwrite a newer one.
package debounce

import (
	"sync"
	"sync/atomic"
	"time"
)

// Token identifies one generation of a debounced request.
type Token uint64

// Debouncer delays work until input has been quiet for the configured
// interval. Every Trigger supersedes the pending one.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the quiet interval, replacing any
// pending call. fn receives the generation token of the trigger that
// actually fired.
func (d *Debouncer) Trigger(fn func(token Token)) Token {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	token := Token(d.gen)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		fn(token)
	})
	return token
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Current returns the latest issued token.
func (d *Debouncer) Current() Token {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Token(d.gen)
}

// Guard discards results that arrive out of order. Tokens are issued
// monotonically; a result is accepted only if its token is newer than every
// previously accepted one.
type Guard struct {
	issued   atomic.Uint64
	accepted atomic.Uint64
}

// Next issues a fresh token for a new request.
func (g *Guard) Next() Token {
	return Token(g.issued.Add(1))
}

// Accept reports whether a result carrying this token is still current, and
// marks it accepted when it is. Stale tokens are rejected.
func (g *Guard) Accept(token Token) bool {
	for {
		current := g.accepted.Load()
		if uint64(token) <= current {
			return false
		}
		if g.accepted.CompareAndSwap(current, uint64(token)) {
			return true
		}
	}
}

// Stale reports whether newer tokens have been issued since this one.
func (g *Guard) Stale(token Token) bool {
	return uint64(token) < g.issued.Load()
}
