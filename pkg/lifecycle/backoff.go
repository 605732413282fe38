package lifecycle

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Default backoff configuration values.
const (
	DefaultBackoffInitial = 500 * time.Millisecond
	DefaultBackoffMax     = 10 * time.Second
)

// Backoff is an exponential backoff with ±20% jitter.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
	jitter  func() float64
}

// NewBackoff returns a backoff starting at initial and capped at max.
func NewBackoff(initial, max time.Duration) *Backoff {
	return &Backoff{
		initial: initial,
		max:     max,
		current: initial,
		jitter:  rand.Float64,
	}
}

// Next returns the jittered current delay and doubles the delay for the
// following call.
func (b *Backoff) Next() time.Duration {
	d := time.Duration(float64(b.current) * (1 + 0.2*(b.jitter()*2-1)))
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Wait sleeps for Next() or until ctx is done.
func (b *Backoff) Wait(ctx context.Context) error {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Reset restores the initial delay.
func (b *Backoff) Reset() {
	b.current = b.initial
}

// Current returns the delay Next will jitter around.
func (b *Backoff) Current() time.Duration {
	return b.current
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Retry gives up immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// Retry calls fn until it succeeds, returns a Permanent error, attempts are
// used up, or ctx is done. attempts <= 0 retries without limit. The last
// error is returned.
func Retry(ctx context.Context, attempts int, b *Backoff, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempts <= 0 || attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempts > 0 && attempt == attempts {
			break
		}
		if werr := b.Wait(ctx); werr != nil {
			return err
		}
	}
	return err
}
