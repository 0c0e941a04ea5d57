// Package retry re-invokes fallible operations with exponential backoff.
//
// The delay before attempt k+1 is BaseDelay * 2^(k-1) scaled by a uniform
// jitter factor in [1.0, 1.3), so repeated callers against a shared backend
// never line up on the same schedule.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/nprepindia/Solution-Generation/pkg/utils/logging"
)

const jitterFactor = 0.3

// Policy bounds one retried operation.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Call is the tuning for embedding and similarity-search calls.
var Call = Policy{MaxAttempts: 5, BaseDelay: 2 * time.Second}

// Init is the tuning for client construction and connectivity probes.
var Init = Policy{MaxAttempts: 3, BaseDelay: time.Second}

// schedule implements backoff.BackOff with doubling delays and one-sided
// jitter. backoff.ExponentialBackOff jitters symmetrically around the
// interval, which would undercut the lower bound, so the schedule is ours.
type schedule struct {
	base    time.Duration
	retries int
}

func (s *schedule) NextBackOff() time.Duration {
	d := float64(s.base) * float64(uint64(1)<<uint(s.retries))
	s.retries++
	return time.Duration(d * (1 + rand.Float64()*jitterFactor))
}

func (s *schedule) Reset() {
	s.retries = 0
}

// Do runs op until it succeeds or the policy's attempt budget is spent,
// returning the last error wrapped with the attempt count. The context
// cancels waiting between attempts as well as the attempts themselves.
func Do[T any](ctx context.Context, label string, p Policy, op func(context.Context) (T, error)) (T, error) {
	logger := logging.From(ctx)
	attempt := 0

	b := backoff.WithContext(
		backoff.WithMaxRetries(&schedule{base: p.BaseDelay}, uint64(p.MaxAttempts-1)),
		ctx,
	)

	result, err := backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		v, opErr := op(ctx)
		if opErr != nil {
			logger.Warn("operation failed",
				"operation", label,
				"attempt", attempt,
				"max_attempts", p.MaxAttempts,
				"error", opErr,
			)
		}
		return v, opErr
	}, b, func(_ error, delay time.Duration) {
		logger.Debug("backing off before retry", "operation", label, "delay", delay)
	})
	if err != nil {
		var zero T
		return zero, goerr.Wrap(err, "retries exhausted",
			goerr.V("operation", label),
			goerr.V("attempts", attempt),
		)
	}

	return result, nil
}
