// Package invoker wraps a single generation call with classification-aware
// retries.
package invoker

import (
	"context"
	"time"

	"github.com/petrijr/quizforge/pkg/api"
)

// DefaultCallTimeout bounds each attempt.
const DefaultCallTimeout = 10 * time.Second

// DefaultPolicy is three attempts, two seconds apart (doubling when
// throttled).
var DefaultPolicy = api.RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: 2 * time.Second,
	Backoff:      api.DefaultBackoff,
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Invoker calls a Generator, retrying failures according to a RetryPolicy.
// It holds no state between invocations and is safe for concurrent use.
type Invoker struct {
	gen         api.Generator
	policy      api.RetryPolicy
	callTimeout time.Duration
	sleep       Sleeper
	observer    api.Observer
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithPolicy replaces DefaultPolicy.
func WithPolicy(p api.RetryPolicy) Option {
	return func(i *Invoker) { i.policy = p }
}

// WithCallTimeout bounds each attempt; zero or negative disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(i *Invoker) { i.callTimeout = d }
}

// WithSleeper replaces the real sleep between attempts.
func WithSleeper(s Sleeper) Option {
	return func(i *Invoker) {
		if s != nil {
			i.sleep = s
		}
	}
}

// WithObserver receives OnRetry notifications.
func WithObserver(o api.Observer) Option {
	return func(i *Invoker) {
		if o != nil {
			i.observer = o
		}
	}
}

// New creates an Invoker around gen.
func New(gen api.Generator, opts ...Option) *Invoker {
	i := &Invoker{
		gen:         gen,
		policy:      DefaultPolicy,
		callTimeout: DefaultCallTimeout,
		sleep:       SleepContext,
		observer:    api.NoopObserver{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Invoke performs req, retrying failed attempts. It returns the generated
// text, an *ExhaustedRetriesError once every attempt failed, or a
// *FatalInvocationError for failures that are not retried.
func (i *Invoker) Invoke(ctx context.Context, req api.GenerationRequest) (string, error) {
	attempts := i.policy.Attempts()

	var (
		lastErr   error
		lastClass api.ErrorClass
	)
	for attempt := 0; attempt < attempts; attempt++ {
		text, err := i.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		if !retryable(ctx, err) {
			return "", &FatalInvocationError{Err: err}
		}

		lastErr = err
		lastClass = Classify(err)
		if attempt == attempts-1 {
			break
		}

		delay := i.policy.Delay(lastClass, attempt)
		i.observer.OnRetry(ctx, attempt, lastClass, delay, err)
		if err := i.sleep(ctx, delay); err != nil {
			return "", &FatalInvocationError{Err: err}
		}
	}

	return "", &ExhaustedRetriesError{Class: lastClass, Attempts: attempts, Err: lastErr}
}

func (i *Invoker) attempt(ctx context.Context, req api.GenerationRequest) (string, error) {
	if i.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.callTimeout)
		defer cancel()
	}
	return i.gen.Generate(ctx, req)
}
