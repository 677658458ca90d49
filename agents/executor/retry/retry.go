/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry retries model API calls that fail with transient errors.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/chainguard-dev/clog"
)

// Policy bounds how often and how slowly a call is retried.
type Policy struct {
	// Retries is the number of attempts after the first. Zero disables retries.
	Retries int
	// Initial is the wait before the first retry. It doubles on every retry.
	Initial time.Duration
	// Max caps the doubled wait.
	Max time.Duration
	// Jitter is the upper bound of a random delay added to every wait.
	Jitter time.Duration
}

// Default suits quota errors, which take seconds to clear.
func Default() Policy {
	return Policy{
		Retries: 5,
		Initial: time.Second,
		Max:     time.Minute,
		Jitter:  500 * time.Millisecond,
	}
}

// Validate rejects negative settings.
func (p Policy) Validate() error {
	switch {
	case p.Retries < 0:
		return errors.New("retries cannot be negative")
	case p.Initial < 0, p.Max < 0, p.Jitter < 0:
		return errors.New("retry durations cannot be negative")
	}
	return nil
}

// wait returns the delay before retry number n (zero based).
func (p Policy) wait(n int) time.Duration {
	d := min(p.Initial<<n, p.Max)
	if d < 0 {
		// Overflowed the shift.
		d = p.Max
	}
	if p.Jitter > 0 {
		d += rand.N(p.Jitter)
	}
	return d
}

// Do calls fn until it succeeds, fails with an error retryable rejects, runs
// out of retries, or ctx is done.
func Do[T any](ctx context.Context, p Policy, op string, retryable func(error) bool, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for n := 0; ; n++ {
		out, err = fn()
		if err == nil || !retryable(err) {
			return out, err
		}
		if n >= p.Retries {
			break
		}

		d := p.wait(n)
		clog.FromContext(ctx).With("operation", op, "attempt", n+1, "retries", p.Retries, "backoff", d, "error", err).
			Warn("Transient model API error, retrying")

		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return out, ctx.Err()
		case <-t.C:
		}
	}
	return out, fmt.Errorf("%s failed after %d retries: %w", op, p.Retries, err)
}
