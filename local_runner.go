package quizforge

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/petrijr/quizforge/internal/dispatch"
	"github.com/petrijr/quizforge/internal/exam"
	"github.com/petrijr/quizforge/internal/fingerprint"
	"github.com/petrijr/quizforge/internal/generation"
	"github.com/petrijr/quizforge/internal/invoker"
	"github.com/petrijr/quizforge/internal/persistence"
	"github.com/petrijr/quizforge/internal/reference"
	"github.com/petrijr/quizforge/internal/render"
	"github.com/petrijr/quizforge/internal/tracker"
)

type (
	// Outcome is the result of a successful exam run.
	Outcome = exam.Outcome

	// Tracker records workflows, steps and tool calls.
	Tracker = tracker.Tracker
)

// LocalOptions configures a LocalRunner. The zero value is usable.
type LocalOptions struct {
	// Retry defaults to three attempts, 2s apart, doubling while throttled.
	Retry *RetryPolicy

	// CallTimeout bounds each generation attempt (10s by default).
	CallTimeout time.Duration

	// MaxConcurrency bounds in-flight generation calls per exam (3 by default).
	MaxConcurrency int

	// Model, MaxTokens and Temperature override the generation defaults. A
	// nil Temperature keeps the default; a pointer to zero asks for
	// deterministic output.
	Model       string
	MaxTokens   int
	Temperature *float64

	// RenderDir receives the rendered HTML exams. Defaults to
	// <tmp>/quizforge.
	RenderDir string

	// CacheTTL defaults to 30 days.
	CacheTTL time.Duration

	// Observer receives dispatch and retry notifications in addition to the
	// runner's own BasicMetrics.
	Observer Observer

	Logger *slog.Logger
}

// LocalRunner bundles a fingerprint cache, retrying invoker, dispatcher,
// tracker and local HTML renderer around a Generator, for development, tests
// and simple single-process deployments.
//
// Typical usage:
//
//	runner, err := quizforge.NewLocalRunner(gen, quizforge.LocalOptions{})
//	out, err := runner.Run(ctx, map[string]any{"subject": "math", "count": 4})
//	report, err := runner.Report(out.WorkflowID)
type LocalRunner struct {
	// Tracker holds every workflow the runner has executed.
	Tracker *Tracker

	// Metrics counts cache hits, generations, fallbacks and retries.
	Metrics *BasicMetrics

	service *exam.Service
	store   persistence.RecordStore
}

// NewLocalRunner builds a runner whose cache lives in memory only.
func NewLocalRunner(gen Generator, opts LocalOptions) (*LocalRunner, error) {
	return newLocalRunner(gen, persistence.NewInMemoryStore(), opts)
}

func newLocalRunner(gen Generator, store persistence.RecordStore, opts LocalOptions) (*LocalRunner, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dir := opts.RenderDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "quizforge")
	}
	r, err := render.NewLocalRenderer(dir)
	if err != nil {
		return nil, err
	}

	metrics := &BasicMetrics{}
	obs := NewCompositeObserver(metrics, opts.Observer)

	policy := invoker.DefaultPolicy
	if opts.Retry != nil {
		policy = *opts.Retry
	}
	invOpts := []invoker.Option{invoker.WithPolicy(policy), invoker.WithObserver(obs)}
	if opts.CallTimeout > 0 {
		invOpts = append(invOpts, invoker.WithCallTimeout(opts.CallTimeout))
	}

	settings := generation.DefaultSettings()
	if opts.Model != "" {
		settings.Model = opts.Model
	}
	if opts.MaxTokens > 0 {
		settings.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature != nil {
		settings.Temperature = *opts.Temperature
	}

	cacheOpts := []fingerprint.Option{fingerprint.WithLogger(logger)}
	if opts.CacheTTL > 0 {
		cacheOpts = append(cacheOpts, fingerprint.WithTTL(opts.CacheTTL))
	}

	dispOpts := []dispatch.Option{
		dispatch.WithCache(fingerprint.New(store, cacheOpts...)),
		dispatch.WithSettings(settings),
		dispatch.WithObserver(obs),
		dispatch.WithLogger(logger),
	}
	if opts.MaxConcurrency > 0 {
		dispOpts = append(dispOpts, dispatch.WithMaxConcurrency(opts.MaxConcurrency))
	}

	t := tracker.New(tracker.WithLogger(logger))
	d := dispatch.New(invoker.New(gen, invOpts...), dispOpts...)
	refs := reference.NewProcessor(reference.WithLogger(logger))

	return &LocalRunner{
		Tracker: t,
		Metrics: metrics,
		service: exam.NewService(t, d, refs, r, exam.WithLogger(logger)),
		store:   store,
	}, nil
}

// Run generates, validates and renders one exam from request inputs such as
// subject, grade, count, difficulty, types, topics and reference.
func (r *LocalRunner) Run(ctx context.Context, inputs map[string]any) (*Outcome, error) {
	return r.service.Run(ctx, exam.Request{Inputs: inputs})
}

// GenerateQuestion generates one question in its own tracked workflow and
// returns its text and workflow id.
func (r *LocalRunner) GenerateQuestion(ctx context.Context, spec QuestionSpec) (string, string, error) {
	return r.service.GenerateQuestion(ctx, spec)
}

// Report returns the evaluation report of one workflow.
func (r *LocalRunner) Report(workflowID string) (WorkflowReport, error) {
	return r.Tracker.Report(workflowID)
}

// Reports returns the evaluation reports of every workflow in start order.
func (r *LocalRunner) Reports() []WorkflowReport {
	return r.Tracker.Reports()
}

// Close releases the cache store.
func (r *LocalRunner) Close() error {
	return r.store.Close()
}
