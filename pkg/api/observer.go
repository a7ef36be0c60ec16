package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the dispatcher and the retrying invoker
// for logging and metrics.
//
// Implementations should be fast and non-blocking; callbacks run on the
// worker goroutines that perform generation.
type Observer interface {
	// OnDispatchStart is called once per batch before any item is processed.
	OnDispatchStart(ctx context.Context, batchSize int)

	// OnCacheHit is called when a spec was served from the fingerprint cache.
	OnCacheHit(ctx context.Context, spec QuestionSpec)

	// OnCacheMiss is called when a spec has to be generated.
	OnCacheMiss(ctx context.Context, spec QuestionSpec)

	// OnGenerated is called after a successful generation call.
	OnGenerated(ctx context.Context, spec QuestionSpec, duration time.Duration)

	// OnFallback is called when generation failed for good and a
	// placeholder was substituted.
	OnFallback(ctx context.Context, spec QuestionSpec, err error)

	// OnRetry is called before the invoker sleeps ahead of another attempt.
	// attempt is the 0-based attempt that just failed.
	OnRetry(ctx context.Context, attempt int, class ErrorClass, delay time.Duration, err error)

	// OnDispatchCompleted is called when every item of a batch has a result.
	OnDispatchCompleted(ctx context.Context, batchSize int, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnDispatchStart(ctx context.Context, batchSize int)                 {}
func (NoopObserver) OnCacheHit(ctx context.Context, spec QuestionSpec)                  {}
func (NoopObserver) OnCacheMiss(ctx context.Context, spec QuestionSpec)                 {}
func (NoopObserver) OnGenerated(ctx context.Context, spec QuestionSpec, d time.Duration) {}
func (NoopObserver) OnFallback(ctx context.Context, spec QuestionSpec, err error)       {}
func (NoopObserver) OnRetry(ctx context.Context, attempt int, class ErrorClass, delay time.Duration, err error) {
}
func (NoopObserver) OnDispatchCompleted(ctx context.Context, batchSize int, d time.Duration) {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnDispatchStart(ctx context.Context, batchSize int) {
	for _, o := range c.observers {
		o.OnDispatchStart(ctx, batchSize)
	}
}

func (c *CompositeObserver) OnCacheHit(ctx context.Context, spec QuestionSpec) {
	for _, o := range c.observers {
		o.OnCacheHit(ctx, spec)
	}
}

func (c *CompositeObserver) OnCacheMiss(ctx context.Context, spec QuestionSpec) {
	for _, o := range c.observers {
		o.OnCacheMiss(ctx, spec)
	}
}

func (c *CompositeObserver) OnGenerated(ctx context.Context, spec QuestionSpec, d time.Duration) {
	for _, o := range c.observers {
		o.OnGenerated(ctx, spec, d)
	}
}

func (c *CompositeObserver) OnFallback(ctx context.Context, spec QuestionSpec, err error) {
	for _, o := range c.observers {
		o.OnFallback(ctx, spec, err)
	}
}

func (c *CompositeObserver) OnRetry(ctx context.Context, attempt int, class ErrorClass, delay time.Duration, err error) {
	for _, o := range c.observers {
		o.OnRetry(ctx, attempt, class, delay, err)
	}
}

func (c *CompositeObserver) OnDispatchCompleted(ctx context.Context, batchSize int, d time.Duration) {
	for _, o := range c.observers {
		o.OnDispatchCompleted(ctx, batchSize, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs dispatch events using the
// provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func specAttrs(spec QuestionSpec) slog.Attr {
	return slog.Group("question",
		slog.String("kind", string(spec.Kind)),
		slog.String("topic", spec.Topic),
		slog.String("difficulty", string(spec.Difficulty)),
	)
}

func (o *LoggingObserver) OnDispatchStart(ctx context.Context, batchSize int) {
	o.Logger.InfoContext(ctx, "dispatch_start", slog.Int("batch_size", batchSize))
}

func (o *LoggingObserver) OnCacheHit(ctx context.Context, spec QuestionSpec) {
	o.Logger.InfoContext(ctx, "cache_hit", specAttrs(spec))
}

func (o *LoggingObserver) OnCacheMiss(ctx context.Context, spec QuestionSpec) {
	o.Logger.DebugContext(ctx, "cache_miss", specAttrs(spec))
}

func (o *LoggingObserver) OnGenerated(ctx context.Context, spec QuestionSpec, d time.Duration) {
	o.Logger.InfoContext(ctx, "question_generated",
		specAttrs(spec),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnFallback(ctx context.Context, spec QuestionSpec, err error) {
	o.Logger.ErrorContext(ctx, "generation_fallback",
		specAttrs(spec),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnRetry(ctx context.Context, attempt int, class ErrorClass, delay time.Duration, err error) {
	o.Logger.WarnContext(ctx, "generation_retry",
		slog.Int("attempt", attempt+1),
		slog.String("class", string(class)),
		slog.Duration("delay", delay),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnDispatchCompleted(ctx context.Context, batchSize int, d time.Duration) {
	o.Logger.InfoContext(ctx, "dispatch_completed",
		slog.Int("batch_size", batchSize),
		slog.Duration("duration", d),
	)
}

// BasicMetrics collects simple counters and aggregate generation durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	batches         atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	generated       atomic.Int64
	fallbacks       atomic.Int64
	retries         atomic.Int64
	throttled       atomic.Int64
	totalGeneration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	Batches     int64
	CacheHits   int64
	CacheMisses int64
	Generated   int64
	Fallbacks   int64
	Retries     int64
	Throttled   int64

	AvgGenerationDuration time.Duration
}

func (m *BasicMetrics) OnDispatchStart(ctx context.Context, batchSize int) {
	m.batches.Add(1)
}

func (m *BasicMetrics) OnCacheHit(ctx context.Context, spec QuestionSpec) {
	m.cacheHits.Add(1)
}

func (m *BasicMetrics) OnCacheMiss(ctx context.Context, spec QuestionSpec) {
	m.cacheMisses.Add(1)
}

func (m *BasicMetrics) OnGenerated(ctx context.Context, spec QuestionSpec, d time.Duration) {
	m.generated.Add(1)
	m.totalGeneration.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnFallback(ctx context.Context, spec QuestionSpec, err error) {
	m.fallbacks.Add(1)
}

func (m *BasicMetrics) OnRetry(ctx context.Context, attempt int, class ErrorClass, delay time.Duration, err error) {
	m.retries.Add(1)
	if class == ClassThrottled {
		m.throttled.Add(1)
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	generated := m.generated.Load()
	totalNs := m.totalGeneration.Load()

	var avg time.Duration
	if generated > 0 {
		avg = time.Duration(totalNs / generated)
	}

	return BasicMetricsSnapshot{
		Batches:               m.batches.Load(),
		CacheHits:             m.cacheHits.Load(),
		CacheMisses:           m.cacheMisses.Load(),
		Generated:             generated,
		Fallbacks:             m.fallbacks.Load(),
		Retries:               m.retries.Load(),
		Throttled:             m.throttled.Load(),
		AvgGenerationDuration: avg,
	}
}
