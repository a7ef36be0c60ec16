package quizforge

import (
	"math"
	"time"
)

// RetryBuilder provides a fluent way to construct RetryPolicy values for
// the generation invoker.
type RetryBuilder struct {
	policy RetryPolicy
}

// Retry creates a RetryBuilder with the given maxAttempts and the default
// throttle-aware backoff.
//
// maxAttempts <= 0 is treated as 1 (no retries).
func Retry(maxAttempts int) RetryBuilder {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return RetryBuilder{
		policy: RetryPolicy{
			MaxAttempts: maxAttempts,
			Backoff:     DefaultBackoff,
		},
	}
}

// WithThrottleAwareBackoff waits initial between attempts, doubling it per
// attempt while the service reports throttling.
func (r RetryBuilder) WithThrottleAwareBackoff(initial time.Duration) RetryBuilder {
	p := r.policy
	p.InitialDelay = initial
	p.Backoff = DefaultBackoff
	return RetryBuilder{policy: p}
}

// WithExponentialBackoff grows the delay by multiplier on every attempt,
// whatever the error class:
//
//   - initial is the delay before the first retry.
//   - multiplier > 1 grows the delay each attempt (default 2.0 if <= 0).
//   - max caps the delay; if <= 0, there is no cap.
//
// Example:
//
//	Retry(3).WithExponentialBackoff(100*time.Millisecond, 2.0, 2*time.Second)
func (r RetryBuilder) WithExponentialBackoff(initial time.Duration, multiplier float64, max time.Duration) RetryBuilder {
	if multiplier <= 0 {
		multiplier = 2.0
	}
	p := r.policy
	p.InitialDelay = initial
	p.Backoff = func(_ ErrorClass, attempt int, initial time.Duration) time.Duration {
		d := time.Duration(float64(initial) * math.Pow(multiplier, float64(attempt)))
		if max > 0 && d > max {
			return max
		}
		return d
	}
	return RetryBuilder{policy: p}
}

// WithConstantBackoff waits delay between attempts regardless of class.
func (r RetryBuilder) WithConstantBackoff(delay time.Duration) RetryBuilder {
	p := r.policy
	p.InitialDelay = delay
	p.Backoff = func(_ ErrorClass, _ int, initial time.Duration) time.Duration {
		return initial
	}
	return RetryBuilder{policy: p}
}

// Immediate disables any sleep between retries.
// Retries will still respect MaxAttempts.
func (r RetryBuilder) Immediate() RetryBuilder {
	p := r.policy
	p.InitialDelay = 0
	p.Backoff = func(ErrorClass, int, time.Duration) time.Duration { return 0 }
	return RetryBuilder{policy: p}
}

// Policy returns the underlying RetryPolicy.
func (r RetryBuilder) Policy() RetryPolicy {
	return r.policy
}
