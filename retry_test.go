package quizforge

import (
	"testing"
	"time"
)

// Ensure non-positive maxAttempts is normalized to 1.
func TestRetry_NonPositiveMaxAttemptsDefaultsToOne(t *testing.T) {
	p := Retry(0).Policy()
	if p.MaxAttempts != 1 {
		t.Fatalf("expected MaxAttempts=1 for Retry(0), got %d", p.MaxAttempts)
	}

	p = Retry(-5).Policy()
	if p.MaxAttempts != 1 {
		t.Fatalf("expected MaxAttempts=1 for Retry(-5), got %d", p.MaxAttempts)
	}
}

// The default backoff doubles only while throttled.
func TestRetry_ThrottleAwareBackoff(t *testing.T) {
	d := 2 * time.Second
	p := Retry(3).WithThrottleAwareBackoff(d).Policy()

	if got := p.Delay(ClassThrottled, 0); got != d {
		t.Fatalf("throttled attempt 0: expected %v, got %v", d, got)
	}
	if got := p.Delay(ClassThrottled, 1); got != 2*d {
		t.Fatalf("throttled attempt 1: expected %v, got %v", 2*d, got)
	}
	if got := p.Delay(ClassOther, 1); got != d {
		t.Fatalf("other attempt 1: expected %v, got %v", d, got)
	}
}

// Ensure WithExponentialBackoff applies the default multiplier and the cap.
func TestRetry_WithExponentialBackoff_UsesDefaults(t *testing.T) {
	initial := 100 * time.Millisecond
	max := 300 * time.Millisecond

	p := Retry(4).
		WithExponentialBackoff(initial, 0, max).
		Policy()

	if p.MaxAttempts != 4 {
		t.Fatalf("expected MaxAttempts=4, got %d", p.MaxAttempts)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
	for attempt, w := range want {
		if got := p.Delay(ClassOther, attempt); got != w {
			t.Fatalf("attempt %d: expected %v, got %v", attempt, w, got)
		}
	}
}

// Ensure WithExponentialBackoff respects an explicit multiplier.
func TestRetry_WithExponentialBackoff_ExplicitMultiplier(t *testing.T) {
	p := Retry(4).
		WithExponentialBackoff(50*time.Millisecond, 3.0, 0).
		Policy()

	if got := p.Delay(ClassThrottled, 2); got != 450*time.Millisecond {
		t.Fatalf("expected 450ms, got %v", got)
	}
}

func TestRetry_WithConstantBackoff(t *testing.T) {
	delay := 250 * time.Millisecond
	p := Retry(5).WithConstantBackoff(delay).Policy()

	if p.MaxAttempts != 5 {
		t.Fatalf("expected MaxAttempts=5, got %d", p.MaxAttempts)
	}
	for attempt := 0; attempt < 4; attempt++ {
		if got := p.Delay(ClassThrottled, attempt); got != delay {
			t.Fatalf("attempt %d: expected %v, got %v", attempt, delay, got)
		}
	}
}

// Ensure Immediate clears all backoff timing without changing MaxAttempts.
func TestRetry_ImmediateClearsBackoff(t *testing.T) {
	p := Retry(7).
		WithExponentialBackoff(100*time.Millisecond, 2.0, 5*time.Second).
		Immediate().
		Policy()

	if p.MaxAttempts != 7 {
		t.Fatalf("expected MaxAttempts=7, got %d", p.MaxAttempts)
	}
	if got := p.Delay(ClassThrottled, 3); got != 0 {
		t.Fatalf("expected no delay after Immediate, got %v", got)
	}
}
