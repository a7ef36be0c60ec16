// Package metrics exports dispatch activity as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/petrijr/quizforge/pkg/api"
)

const namespace = "quizforge"

// Observer implements api.Observer on its own registry, so several
// instances (one per test, say) never collide.
type Observer struct {
	registry *prometheus.Registry

	batches        prometheus.Counter
	batchSize      prometheus.Histogram
	batchDuration  prometheus.Histogram
	cacheLookups   *prometheus.CounterVec
	generated      *prometheus.CounterVec
	generationTime *prometheus.HistogramVec
	fallbacks      *prometheus.CounterVec
	retries        *prometheus.CounterVec
}

// NewObserver registers the quizforge collectors plus the Go and process
// collectors on a fresh registry.
func NewObserver() *Observer {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Observer{
		registry: reg,
		batches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_batches_total",
			Help:      "Dispatched question batches.",
		}),
		batchSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_batch_size",
			Help:      "Questions per dispatched batch.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		}),
		batchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_batch_duration_seconds",
			Help:      "Wall time of a dispatched batch.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Fingerprint cache lookups by result.",
		}, []string{"result"}),
		generated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_generated_total",
			Help:      "Questions produced by the generation service.",
		}, []string{"kind"}),
		generationTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating one question, retries included.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"kind"}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_fallbacks_total",
			Help:      "Questions replaced by a placeholder.",
		}, []string{"kind"}),
		retries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_retries_total",
			Help:      "Generation retries by error class.",
		}, []string{"class"}),
	}
}

// Registry exposes the underlying registry.
func (o *Observer) Registry() *prometheus.Registry { return o.registry }

// Handler serves the registry in the Prometheus exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{Registry: o.registry})
}

func (o *Observer) OnDispatchStart(ctx context.Context, batchSize int) {
	o.batches.Inc()
	o.batchSize.Observe(float64(batchSize))
}

func (o *Observer) OnCacheHit(ctx context.Context, spec api.QuestionSpec) {
	o.cacheLookups.WithLabelValues("hit").Inc()
}

func (o *Observer) OnCacheMiss(ctx context.Context, spec api.QuestionSpec) {
	o.cacheLookups.WithLabelValues("miss").Inc()
}

func (o *Observer) OnGenerated(ctx context.Context, spec api.QuestionSpec, d time.Duration) {
	o.generated.WithLabelValues(string(spec.Kind)).Inc()
	o.generationTime.WithLabelValues(string(spec.Kind)).Observe(d.Seconds())
}

func (o *Observer) OnFallback(ctx context.Context, spec api.QuestionSpec, err error) {
	o.fallbacks.WithLabelValues(string(spec.Kind)).Inc()
}

func (o *Observer) OnRetry(ctx context.Context, attempt int, class api.ErrorClass, delay time.Duration, err error) {
	o.retries.WithLabelValues(string(class)).Inc()
}

func (o *Observer) OnDispatchCompleted(ctx context.Context, batchSize int, d time.Duration) {
	o.batchDuration.Observe(d.Seconds())
}

var _ api.Observer = (*Observer)(nil)
