package page

import (
	"time"

	"github.com/devicelab-dev/pagekit/pkg/config"
)

// pollFn reports the current condition state: a value plus done, or an
// error that aborts polling. Retryable driver states (element missing,
// handle gone stale during relocation) are swallowed by the condition
// itself, which simply reports not-done.
type pollFn[T any] func() (T, bool, error)

// poll evaluates fn every interval until it reports done or the timeout
// elapses. The condition is always evaluated at least once.
func poll[T any](timeout, interval time.Duration, fn pollFn[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)
	for {
		v, done, err := fn()
		if err != nil {
			return zero, err
		}
		if done {
			return v, nil
		}
		if !time.Now().Before(deadline) {
			return zero, errPollTimeout
		}
		time.Sleep(interval)
	}
}

// waitParams carries the per-call tier of the override chain.
type waitParams struct {
	timeout *time.Duration
	reraise *bool
}

// WaitOption overrides a wait setting for a single call.
type WaitOption func(*waitParams)

// WithTimeout overrides the wait timeout for this call.
func WithTimeout(d time.Duration) WaitOption {
	return func(p *waitParams) {
		p.timeout = &d
	}
}

// WithReraise overrides the timeout behavior for this call: true returns
// the timeout error, false suppresses it and yields a zero result.
func WithReraise(r bool) WaitOption {
	return func(p *waitParams) {
		p.reraise = &r
	}
}

func applyWait(opts []WaitOption) waitParams {
	var p waitParams
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func pollInterval() time.Duration {
	if d := config.Current().PollInterval; d > 0 {
		return d
	}
	return 500 * time.Millisecond
}
