package invoker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

// ExhaustedRetriesError is returned after every attempt failed. Class is the
// classification of the last failure.
type ExhaustedRetriesError struct {
	Class    api.ErrorClass
	Attempts int
	Err      error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts (%s): %v", e.Attempts, e.Class, e.Err)
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.Err }

// FatalInvocationError is returned when an attempt failed with an error that
// must not be retried.
type FatalInvocationError struct {
	Err error
}

func (e *FatalInvocationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *FatalInvocationError) Unwrap() error { return e.Err }

// IsThrottledExhaustion reports whether err is an ExhaustedRetriesError whose
// last failure was throttling.
func IsThrottledExhaustion(err error) bool {
	var ex *ExhaustedRetriesError
	return errors.As(err, &ex) && ex.Class == api.ClassThrottled
}

// IsFatal reports whether err is a FatalInvocationError.
func IsFatal(err error) bool {
	var fe *FatalInvocationError
	return errors.As(err, &fe)
}

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	HTTPStatus() int
}

var throttleSignatures = []string{
	"throttling",
	"too many requests",
	"rate limit",
	"rate_limit",
}

// Classify decides how a failed attempt is retried.
func Classify(err error) api.ErrorClass {
	if err == nil {
		return api.ClassOther
	}
	var sc StatusCoder
	if errors.As(err, &sc) && sc.HTTPStatus() == http.StatusTooManyRequests {
		return api.ClassThrottled
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range throttleSignatures {
		if strings.Contains(msg, sig) {
			return api.ClassThrottled
		}
	}
	return api.ClassOther
}

// retryable reports whether another attempt may follow err. parent is the
// caller's context, which outlives the per-attempt timeout.
func retryable(parent context.Context, err error) bool {
	if api.IsPermanent(err) {
		return false
	}
	if parent.Err() != nil {
		return false
	}
	return true
}
