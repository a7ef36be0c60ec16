// Package dispatch generates batches of questions in parallel.
//
// Every question goes through the same pipeline: fingerprint cache lookup,
// retrying generation on a miss, normalization to the canonical block format,
// and a cache write. A question whose generation fails is replaced by a
// deterministic placeholder so that a batch always yields one block per
// requested question.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/quizforge/internal/examdoc"
	"github.com/petrijr/quizforge/internal/fingerprint"
	"github.com/petrijr/quizforge/internal/generation"
	"github.com/petrijr/quizforge/internal/taskqueue"
	"github.com/petrijr/quizforge/pkg/api"
	"github.com/petrijr/quizforge/pkg/worker"
)

// DefaultMaxConcurrency bounds in-flight generations per batch.
const DefaultMaxConcurrency = 3

// ErrEmptyGeneration is returned when the service produced only whitespace.
var ErrEmptyGeneration = errors.New("generation returned empty text")

// Invoker performs one generation with retries.
type Invoker interface {
	Invoke(ctx context.Context, req api.GenerationRequest) (string, error)
}

// Dispatcher fans a batch of QuestionSpecs out to a bounded worker pool.
type Dispatcher struct {
	invoker  Invoker
	cache    *fingerprint.Cache
	settings generation.Settings
	maxConc  int
	observer api.Observer
	logger   *slog.Logger
	batchID  func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxConcurrency sets the number of workers per batch.
func WithMaxConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxConc = n
		}
	}
}

// WithCache enables the fingerprint cache.
func WithCache(c *fingerprint.Cache) Option {
	return func(d *Dispatcher) { d.cache = c }
}

// WithSettings sets the model parameters of every request.
func WithSettings(s generation.Settings) Option {
	return func(d *Dispatcher) { d.settings = s }
}

func WithObserver(o api.Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithBatchIDs replaces the random batch id generator.
func WithBatchIDs(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.batchID = fn
		}
	}
}

// New creates a Dispatcher.
func New(inv Invoker, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		invoker:  inv,
		settings: generation.DefaultSettings(),
		maxConc:  DefaultMaxConcurrency,
		observer: api.NoopObserver{},
		logger:   slog.Default(),
		batchID:  func() string { return uuid.NewString()[:8] },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MaxConcurrency returns the worker count per batch.
func (d *Dispatcher) MaxConcurrency() int {
	return d.maxConc
}

// Dispatch generates one document block per spec and returns them in the
// order of specs. It never fails for an individual item: failed generations
// are replaced by examdoc.Placeholder.
//
// Progress events for each item are sent to the ProgressFunc carried by ctx,
// with call ids of the form "<batch>-<index>".
func (d *Dispatcher) Dispatch(ctx context.Context, specs []api.QuestionSpec) []string {
	results := make([]string, len(specs))
	if len(specs) == 0 {
		return results
	}

	start := time.Now()
	batch := d.batchID()
	d.observer.OnDispatchStart(ctx, len(specs))

	done := make([]bool, len(specs))
	var mu sync.Mutex

	queue := taskqueue.NewInMemoryQueue(len(specs))
	for i, spec := range specs {
		task := taskqueue.Task{
			ID:         fmt.Sprintf("%s-%d", batch, i),
			Type:       taskqueue.TaskTypeGenerateQuestion,
			Batch:      batch,
			Index:      i,
			Spec:       spec,
			EnqueuedAt: start,
		}
		// Capacity equals len(specs), so this never blocks.
		_ = queue.Enqueue(context.Background(), task)
	}
	queue.Close()

	w := worker.NewWithConfig(queue, func(ctx context.Context, task *taskqueue.Task) error {
		text := d.process(ctx, task.ID, task.Spec)
		mu.Lock()
		results[task.Index] = text
		done[task.Index] = true
		mu.Unlock()
		return nil
	}, worker.Config{
		Concurrency: min(d.maxConc, len(specs)),
		Logger:      d.logger,
	})

	if err := w.Run(ctx); err != nil {
		d.logger.WarnContext(ctx, "dispatch_interrupted",
			slog.String("batch", batch),
			slog.Any("error", err),
		)
	}

	// Items never picked up because ctx ended still get a block.
	for i, ok := range done {
		if !ok {
			results[i] = d.fallback(ctx, fmt.Sprintf("%s-%d", batch, i), specs[i], ctx.Err())
		}
	}

	d.observer.OnDispatchCompleted(ctx, len(specs), time.Since(start))
	return results
}

func (d *Dispatcher) process(ctx context.Context, callID string, spec api.QuestionSpec) string {
	tool := spec.Kind.ToolName()
	api.EmitProgress(ctx, api.ToolInvocationStarted{CallID: callID, ToolName: tool, Input: spec})

	text, err := d.generate(ctx, spec)
	if err != nil {
		return d.fallback(ctx, callID, spec, err)
	}

	api.EmitProgress(ctx, api.ToolInvocationUpdated{CallID: callID, ToolName: tool, Output: text})
	return text
}

func (d *Dispatcher) fallback(ctx context.Context, callID string, spec api.QuestionSpec, err error) string {
	if err == nil {
		err = errors.New("question was not generated")
	}
	d.observer.OnFallback(ctx, spec, err)
	d.logger.ErrorContext(ctx, "question_placeholder_used",
		slog.String("call_id", callID),
		slog.String("kind", string(spec.Kind)),
		slog.String("topic", spec.Topic),
		slog.Any("error", err),
	)
	api.EmitProgress(ctx, api.ToolInvocationUpdated{CallID: callID, ToolName: spec.Kind.ToolName(), Err: err})
	return examdoc.Placeholder(spec)
}

// GenerateOne runs the pipeline for a single spec. Unlike Dispatch, errors
// are returned to the caller instead of being replaced by a placeholder.
func (d *Dispatcher) GenerateOne(ctx context.Context, spec api.QuestionSpec) (string, error) {
	return d.generate(ctx, spec)
}

func (d *Dispatcher) generate(ctx context.Context, spec api.QuestionSpec) (string, error) {
	if d.cache != nil {
		if cached, ok := d.cache.Get(ctx, spec); ok {
			d.observer.OnCacheHit(ctx, spec)
			return cached, nil
		}
		d.observer.OnCacheMiss(ctx, spec)
	}

	start := time.Now()
	text, err := d.invoker.Invoke(ctx, generation.NewRequest(spec, d.settings))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyGeneration
	}

	text = examdoc.Normalize(spec.Kind, text)
	if d.cache != nil {
		d.cache.Set(ctx, spec, text)
	}
	d.observer.OnGenerated(ctx, spec, time.Since(start))
	return text, nil
}
