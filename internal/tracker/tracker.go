// Package tracker records the lifecycle of generation workflows, their steps
// and the tool calls made within each step, and derives evaluation reports
// from them.
//
// All mutating operations are no-ops for unknown ids. Terminal states are
// sticky: a workflow, step or tool call that has completed or failed keeps
// that state. The one exception is a tool call that was auto-completed on
// behalf of an engine; an explicit completion or failure for the same call
// still applies.
package tracker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/quizforge/pkg/api"
)

// AutoCompletedOutput is recorded as the output of tool calls completed on
// behalf of an engine that never reported their end.
const AutoCompletedOutput = "auto-completed"

type entry struct {
	mu sync.Mutex
	wf api.Workflow
}

// Tracker is an in-memory registry of workflows. It is safe for concurrent
// use; mutations of one workflow are serialized.
type Tracker struct {
	mu        sync.RWMutex
	workflows map[string]*entry
	order     []string

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.newID = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates an empty Tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		workflows: make(map[string]*entry),
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) timestamp() *time.Time {
	now := t.now()
	return &now
}

func (t *Tracker) get(id string) *entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.workflows[id]
}

// update runs fn with the workflow locked. It reports false for unknown ids.
func (t *Tracker) update(id string, fn func(wf *api.Workflow)) bool {
	e := t.get(id)
	if e == nil {
		t.logger.Debug("tracker_unknown_workflow", slog.String("workflow_id", id))
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.wf)
	return true
}

func findStep(wf *api.Workflow, stepID string) *api.Step {
	for i := range wf.Steps {
		if wf.Steps[i].ID == stepID {
			return &wf.Steps[i]
		}
	}
	return nil
}

func findCall(step *api.Step, callID string) *api.ToolCall {
	for i := range step.ToolCalls {
		if step.ToolCalls[i].ID == callID {
			return &step.ToolCalls[i]
		}
	}
	return nil
}

func errMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// StartWorkflow registers a new RUNNING workflow and returns its id.
func (t *Tracker) StartWorkflow(name, description string, input any) string {
	id := t.newID()
	e := &entry{wf: api.Workflow{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      api.WorkflowRunning,
		StartTime:   t.now(),
		Input:       input,
		Steps:       []api.Step{},
	}}

	t.mu.Lock()
	t.workflows[id] = e
	t.order = append(t.order, id)
	t.mu.Unlock()

	t.logger.Info("workflow_started", slog.String("workflow_id", id), slog.String("name", name))
	return id
}

// CompleteWorkflow marks a RUNNING workflow COMPLETED.
func (t *Tracker) CompleteWorkflow(id string, output any) {
	t.update(id, func(wf *api.Workflow) {
		if wf.Status.Terminal() {
			return
		}
		wf.Status = api.WorkflowCompleted
		wf.EndTime = t.timestamp()
		wf.Output = output
		t.logger.Info("workflow_completed", slog.String("workflow_id", id))
	})
}

// FailWorkflow marks a RUNNING workflow FAILED with err's message.
func (t *Tracker) FailWorkflow(id string, err error) {
	t.update(id, func(wf *api.Workflow) {
		if wf.Status.Terminal() {
			return
		}
		wf.Status = api.WorkflowFailed
		wf.EndTime = t.timestamp()
		wf.Error = errMessage(err)
		t.logger.Error("workflow_failed", slog.String("workflow_id", id), slog.String("error", wf.Error))
	})
}

// AddStep appends a PENDING step to a running workflow and returns its id.
func (t *Tracker) AddStep(wfID, name, description string) string {
	var id string
	t.update(wfID, func(wf *api.Workflow) {
		if wf.Status.Terminal() {
			return
		}
		id = t.newID()
		wf.Steps = append(wf.Steps, api.Step{
			ID:          id,
			Name:        name,
			Description: description,
			Status:      api.StepPending,
			ToolCalls:   []api.ToolCall{},
		})
	})
	return id
}

// StartStep moves a PENDING step to RUNNING.
func (t *Tracker) StartStep(wfID, stepID string, input any) {
	t.update(wfID, func(wf *api.Workflow) {
		s := findStep(wf, stepID)
		if s == nil || s.Status != api.StepPending {
			return
		}
		s.Status = api.StepRunning
		s.StartTime = t.timestamp()
		s.Input = input
		t.logger.Debug("step_started", slog.String("workflow_id", wfID), slog.String("step", s.Name))
	})
}

// CompleteStep marks a non-terminal step COMPLETED.
func (t *Tracker) CompleteStep(wfID, stepID string, output any) {
	t.update(wfID, func(wf *api.Workflow) {
		s := findStep(wf, stepID)
		if s == nil || s.Status.Terminal() {
			return
		}
		now := t.timestamp()
		if s.StartTime == nil {
			s.StartTime = now
		}
		s.Status = api.StepCompleted
		s.EndTime = now
		s.Output = output
		t.logger.Debug("step_completed", slog.String("workflow_id", wfID), slog.String("step", s.Name))
	})
}

// FailStep marks a non-terminal step FAILED with err's message.
func (t *Tracker) FailStep(wfID, stepID string, err error) {
	t.update(wfID, func(wf *api.Workflow) {
		s := findStep(wf, stepID)
		if s == nil || s.Status.Terminal() {
			return
		}
		now := t.timestamp()
		if s.StartTime == nil {
			s.StartTime = now
		}
		s.Status = api.StepFailed
		s.EndTime = now
		s.Error = errMessage(err)
		t.logger.Warn("step_failed", slog.String("workflow_id", wfID), slog.String("step", s.Name), slog.String("error", s.Error))
	})
}

// RecordToolCall appends a RUNNING tool call to a non-terminal step and
// returns its id.
func (t *Tracker) RecordToolCall(wfID, stepID, toolName string, input any) string {
	var id string
	t.update(wfID, func(wf *api.Workflow) {
		s := findStep(wf, stepID)
		if s == nil || s.Status.Terminal() {
			return
		}
		id = t.newID()
		s.ToolCalls = append(s.ToolCalls, api.ToolCall{
			ID:        id,
			ToolName:  toolName,
			Status:    api.ToolCallRunning,
			Input:     input,
			StartTime: t.now(),
		})
	})
	return id
}

// CompleteToolCall marks a RUNNING (or auto-completed) tool call COMPLETED.
func (t *Tracker) CompleteToolCall(wfID, stepID, callID string, output any) {
	t.finishToolCall(wfID, stepID, callID, func(c *api.ToolCall) {
		c.Status = api.ToolCallCompleted
		c.Output = output
		c.Error = ""
	})
}

// FailToolCall marks a RUNNING (or auto-completed) tool call FAILED.
func (t *Tracker) FailToolCall(wfID, stepID, callID string, err error) {
	t.finishToolCall(wfID, stepID, callID, func(c *api.ToolCall) {
		c.Status = api.ToolCallFailed
		c.Output = nil
		c.Error = errMessage(err)
	})
}

func (t *Tracker) finishToolCall(wfID, stepID, callID string, apply func(c *api.ToolCall)) {
	t.update(wfID, func(wf *api.Workflow) {
		s := findStep(wf, stepID)
		if s == nil {
			return
		}
		c := findCall(s, callID)
		if c == nil || (c.Status != api.ToolCallRunning && !c.AutoCompleted) {
			return
		}
		apply(c)
		c.AutoCompleted = false
		c.EndTime = t.timestamp()
	})
}

// autoComplete completes a RUNNING call on behalf of an engine.
func (t *Tracker) autoComplete(wfID, stepID, callID string, output any) {
	t.update(wfID, func(wf *api.Workflow) {
		s := findStep(wf, stepID)
		if s == nil {
			return
		}
		if c := findCall(s, callID); c != nil && c.Status == api.ToolCallRunning {
			settle(c, output, t.timestamp())
		}
	})
}

func settle(c *api.ToolCall, output any, at *time.Time) {
	c.Status = api.ToolCallCompleted
	c.Output = output
	c.EndTime = at
	c.AutoCompleted = true
}

// SettleToolCalls completes every RUNNING tool call of the workflow with
// output and returns how many calls were settled.
func (t *Tracker) SettleToolCalls(wfID string, output any) int {
	n := 0
	t.update(wfID, func(wf *api.Workflow) {
		now := t.timestamp()
		for i := range wf.Steps {
			for j := range wf.Steps[i].ToolCalls {
				if c := &wf.Steps[i].ToolCalls[j]; c.Status == api.ToolCallRunning {
					settle(c, output, now)
					n++
				}
			}
		}
	})
	if n > 0 {
		t.logger.Debug("tool_calls_settled", slog.String("workflow_id", wfID), slog.Int("count", n))
	}
	return n
}

// Workflow returns a deep copy of the workflow.
func (t *Tracker) Workflow(id string) (api.Workflow, bool) {
	e := t.get(id)
	if e == nil {
		return api.Workflow{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return clone(e.wf), true
}

// Workflows returns copies of every workflow in start order.
func (t *Tracker) Workflows() []api.Workflow {
	t.mu.RLock()
	entries := make([]*entry, 0, len(t.order))
	for _, id := range t.order {
		entries = append(entries, t.workflows[id])
	}
	t.mu.RUnlock()

	out := make([]api.Workflow, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, clone(e.wf))
		e.mu.Unlock()
	}
	return out
}

// Interrupted returns the workflows that are still RUNNING.
func (t *Tracker) Interrupted() []api.Workflow {
	var out []api.Workflow
	for _, wf := range t.Workflows() {
		if wf.Status == api.WorkflowRunning {
			out = append(out, wf)
		}
	}
	return out
}

func clone(wf api.Workflow) api.Workflow {
	out := wf
	out.Steps = make([]api.Step, len(wf.Steps))
	for i, s := range wf.Steps {
		s.ToolCalls = append([]api.ToolCall(nil), s.ToolCalls...)
		if s.ToolCalls == nil {
			s.ToolCalls = []api.ToolCall{}
		}
		out.Steps[i] = s
	}
	return out
}
