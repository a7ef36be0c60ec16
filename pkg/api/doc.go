// Package api contains the public data model shared by the quizforge
// packages: question specifications, the tracked workflow / step / tool call
// records, progress events emitted while generating, evaluation reports, the
// generation request contract and the observer hooks used for logging and
// metrics.
//
// Most users interact with the higher-level quizforge package, which
// re-exports selected types and constructors from this package. The api
// package is intended for custom integrations: alternative generators,
// observers, or code that consumes reports directly.
//
// # Questions
//
// A QuestionSpec describes one item to generate: its QuestionKind, topic,
// Difficulty and optional reference text. Specs are pure values; two specs
// with the same fields are interchangeable and map to the same cache
// fingerprint.
//
// # Workflows
//
// Workflow, Step and ToolCall are the records kept by the workflow tracker.
// A Workflow owns an ordered list of Steps, a Step owns an ordered list of
// ToolCalls. Values returned from the tracker are deep copies and may be
// inspected freely.
//
// # Progress events
//
// Generation backends report what they are doing through a closed set of
// ProgressEvent variants: ModelOutputChunk, ToolInvocationStarted and
// ToolInvocationUpdated. A ProgressFunc travels in the context (see
// WithProgress) so that deeply nested code can emit events without extra
// parameters.
//
// # Observability
//
// Observer receives dispatch lifecycle callbacks. LoggingObserver writes them
// through log/slog, BasicMetrics keeps in-memory counters, and
// NewCompositeObserver fans out to several observers.
package api
