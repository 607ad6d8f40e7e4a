package restart

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrDecline is returned by a RepairFunc that chooses not to handle an error.
var ErrDecline = errors.New("repair declined")

// RepairFunc attempts a repair for e. Returning ErrDecline passes the error to
// the next handler; any other error is a repair failure.
type RepairFunc[C, R any] func(ctx context.Context, e *ContinuableError[C]) (R, error)

// RetryOption configures Retrying.
type RetryOption func(*retryOptions)

type retryOptions struct {
	transient      func(error) bool
	initial        time.Duration
	maxInterval    time.Duration
	maxElapsedTime time.Duration
	maxRetries     uint64
}

// WithTransient classifies repair failures worth retrying.
// By default no failure is retried.
func WithTransient(fn func(error) bool) RetryOption {
	return func(o *retryOptions) {
		if fn != nil {
			o.transient = fn
		}
	}
}

// WithMaxRetries bounds the number of retries after the first attempt.
func WithMaxRetries(n uint64) RetryOption {
	return func(o *retryOptions) {
		o.maxRetries = n
	}
}

// WithRetryIntervals sets the initial and maximum wait between attempts and
// the total time budget for retries.
func WithRetryIntervals(initial, maxInterval, maxElapsed time.Duration) RetryOption {
	return func(o *retryOptions) {
		o.initial = initial
		o.maxInterval = maxInterval
		o.maxElapsedTime = maxElapsed
	}
}

// Retrying wraps repair in a handler that retries transient repair failures
// with exponential backoff. A failure that is not transient, or the last
// failure once retries run out, aborts the dispatch.
func Retrying[C, R any](repair RepairFunc[C, R], opts ...RetryOption) Handler[C, R] {
	o := &retryOptions{
		transient:      func(error) bool { return false },
		initial:        50 * time.Millisecond,
		maxInterval:    2 * time.Second,
		maxElapsedTime: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	return HandlerFunc[C, R](func(ctx context.Context, e *ContinuableError[C], _ error) (R, bool, error) {
		var (
			zero     R
			result   R
			declined bool
		)

		b := backoff.NewExponentialBackOff()
		b.InitialInterval = o.initial
		b.MaxInterval = o.maxInterval
		b.MaxElapsedTime = o.maxElapsedTime
		b.RandomizationFactor = 0.1

		var policy backoff.BackOff = b
		if o.maxRetries > 0 {
			policy = backoff.WithMaxRetries(policy, o.maxRetries)
		}

		err := backoff.Retry(func() error {
			r, err := repair(ctx, e)
			if err == nil {
				result = r
				return nil
			}
			if errors.Is(err, ErrDecline) {
				declined = true
				return nil
			}
			if o.transient(err) {
				return err
			}
			return backoff.Permanent(err)
		}, backoff.WithContext(policy, ctx))
		if err != nil {
			return zero, false, err
		}
		if declined {
			return zero, false, nil
		}
		return result, true, nil
	})
}
