package api

import "context"

// ProgressEvent is emitted by generation backends while they work. The set of
// variants is closed: ModelOutputChunk, ToolInvocationStarted and
// ToolInvocationUpdated.
type ProgressEvent interface {
	isProgressEvent()
}

// ModelOutputChunk carries a piece of streamed model output.
type ModelOutputChunk struct {
	Text string
}

// ToolInvocationStarted reports that the engine began a tool call.
// CallID is the engine's own identifier for the call.
type ToolInvocationStarted struct {
	CallID   string
	ToolName string
	Input    any
}

// ToolInvocationUpdated reports the outcome of a tool call. Exactly one of
// Output or Err is meaningful: a non-nil Err marks the call as failed.
type ToolInvocationUpdated struct {
	CallID   string
	ToolName string
	Output   any
	Err      error
}

func (ModelOutputChunk) isProgressEvent()      {}
func (ToolInvocationStarted) isProgressEvent() {}
func (ToolInvocationUpdated) isProgressEvent() {}

// ProgressFunc consumes progress events. Implementations must be safe for
// concurrent use when handed to the dispatcher.
type ProgressFunc func(ProgressEvent)

type progressKey struct{}

// WithProgress returns a context carrying fn.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	if fn == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey{}, fn)
}

// ProgressFromContext returns the ProgressFunc stored in ctx, or a function
// that discards events.
func ProgressFromContext(ctx context.Context) ProgressFunc {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		return fn
	}
	return func(ProgressEvent) {}
}

// EmitProgress sends ev to the ProgressFunc stored in ctx, if any.
func EmitProgress(ctx context.Context, ev ProgressEvent) {
	ProgressFromContext(ctx)(ev)
}

// HasProgress reports whether ctx carries a ProgressFunc.
func HasProgress(ctx context.Context) bool {
	fn, ok := ctx.Value(progressKey{}).(ProgressFunc)
	return ok && fn != nil
}
