package api

import (
	"context"
	"errors"
	"time"
)

// Message is a single chat message sent to the generation service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationRequest is the request contract of the generation service.
type GenerationRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// Generator performs one call to the external text generation service and
// returns the generated text.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req GenerationRequest) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	return f(ctx, req)
}

// ErrorClass is the retry classification of a failed generation call.
type ErrorClass string

const (
	ClassThrottled ErrorClass = "throttled"
	ClassOther     ErrorClass = "other"
)

// BackoffFunc returns the delay before the retry that follows the given
// 0-based attempt.
type BackoffFunc func(class ErrorClass, attempt int, initial time.Duration) time.Duration

// DefaultBackoff doubles the delay per attempt for throttled errors and uses
// a constant delay for everything else.
func DefaultBackoff(class ErrorClass, attempt int, initial time.Duration) time.Duration {
	if class == ClassThrottled {
		return initial * time.Duration(1<<uint(attempt))
	}
	return initial
}

// RetryPolicy configures the retrying invoker.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values <= 0 are treated as 1.
	MaxAttempts int

	// InitialDelay is the base delay between attempts.
	InitialDelay time.Duration

	// Backoff computes the delay; nil means DefaultBackoff.
	Backoff BackoffFunc
}

// Delay returns the wait before the retry following attempt.
func (p RetryPolicy) Delay(class ErrorClass, attempt int) time.Duration {
	if p.Backoff == nil {
		return DefaultBackoff(class, attempt, p.InitialDelay)
	}
	return p.Backoff(class, attempt, p.InitialDelay)
}

// Attempts returns MaxAttempts clamped to at least 1.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable. Permanent(nil) is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err or any error it wraps was marked with
// Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
