package tracker

import (
	"log/slog"
	"sync"

	"github.com/petrijr/quizforge/pkg/api"
)

// Adapter translates progress events of one step into tracker calls.
type Adapter struct {
	tracker    *Tracker
	wfID       string
	stepID     string
	concurrent bool
	logger     *slog.Logger

	mu    sync.Mutex
	calls map[string]string // engine call id -> tracker call id
	last  string            // engine call id of the latest started call
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithConcurrentCalls disables auto-completion of the previous call when a
// new one starts. Use it for engines whose calls overlap.
func WithConcurrentCalls() AdapterOption {
	return func(a *Adapter) { a.concurrent = true }
}

func WithAdapterLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAdapter creates an Adapter recording into the given workflow step.
func NewAdapter(t *Tracker, wfID, stepID string, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		tracker: t,
		wfID:    wfID,
		stepID:  stepID,
		logger:  t.logger,
		calls:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProgressFunc returns a.Handle as an api.ProgressFunc.
func (a *Adapter) ProgressFunc() api.ProgressFunc {
	return a.Handle
}

// Handle records ev. It is safe for concurrent use.
func (a *Adapter) Handle(ev api.ProgressEvent) {
	switch e := ev.(type) {
	case api.ModelOutputChunk:
		a.logger.Debug("model_output", slog.String("workflow_id", a.wfID), slog.Int("bytes", len(e.Text)))

	case api.ToolInvocationStarted:
		a.mu.Lock()
		defer a.mu.Unlock()
		if _, seen := a.calls[e.CallID]; seen {
			return
		}
		if !a.concurrent && a.last != "" && a.last != e.CallID {
			a.tracker.autoComplete(a.wfID, a.stepID, a.calls[a.last], AutoCompletedOutput)
		}
		a.calls[e.CallID] = a.tracker.RecordToolCall(a.wfID, a.stepID, e.ToolName, e.Input)
		a.last = e.CallID

	case api.ToolInvocationUpdated:
		a.mu.Lock()
		defer a.mu.Unlock()
		id, seen := a.calls[e.CallID]
		if !seen {
			id = a.tracker.RecordToolCall(a.wfID, a.stepID, e.ToolName, nil)
			a.calls[e.CallID] = id
		}
		if e.Err != nil {
			a.tracker.FailToolCall(a.wfID, a.stepID, id, e.Err)
		} else {
			a.tracker.CompleteToolCall(a.wfID, a.stepID, id, e.Output)
		}
		if a.last == e.CallID {
			a.last = ""
		}

	default:
		a.logger.Warn("unknown_progress_event", slog.String("workflow_id", a.wfID))
	}
}
