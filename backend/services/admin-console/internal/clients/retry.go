package clients

import (
	"context"
	"time"
)

// DefaultRetryAttempts and DefaultRetryBase are the backoff defaults.
const (
	DefaultRetryAttempts = 3
	DefaultRetryBase     = time.Second
)

var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry runs fn up to attempts times, waiting base*2^i after the i-th failure.
// It returns nil on the first success, otherwise the last error. Cancelling
// ctx during a wait returns the context error.
func Retry(ctx context.Context, attempts int, base time.Duration, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	if base <= 0 {
		base = DefaultRetryBase
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if werr := sleep(ctx, base<<uint(i)); werr != nil {
			return werr
		}
	}
	return err
}

// Retrier binds Retry to configured attempts and base delay.
type Retrier struct {
	Attempts int
	Base     time.Duration
}

// Do runs fn with the configured backoff.
func (r Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return Retry(ctx, r.Attempts, r.Base, fn)
}
