package tracker

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/quizforge/pkg/api"
)

// fakeClock advances by one second on every reading.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestTracker() *Tracker {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
}

func TestTracker_WorkflowLifecycle(t *testing.T) {
	tr := newTestTracker()

	id := tr.StartWorkflow("exam generation", "desc", map[string]any{"subject": "math"})
	wf, ok := tr.Workflow(id)
	require.True(t, ok)
	assert.Equal(t, api.WorkflowRunning, wf.Status)
	assert.Nil(t, wf.EndTime)
	assert.Empty(t, wf.Steps)

	step := tr.AddStep(id, "plan content", "")
	require.NotEmpty(t, step)
	wf, _ = tr.Workflow(id)
	assert.Equal(t, api.StepPending, wf.Steps[0].Status)

	tr.StartStep(id, step, "in")
	tr.CompleteStep(id, step, "out")
	tr.CompleteWorkflow(id, "doc")

	wf, _ = tr.Workflow(id)
	assert.Equal(t, api.WorkflowCompleted, wf.Status)
	require.NotNil(t, wf.EndTime)
	assert.True(t, wf.EndTime.After(wf.StartTime))
	assert.Equal(t, "doc", wf.Output)
	assert.Equal(t, api.StepCompleted, wf.Steps[0].Status)
	assert.Equal(t, "in", wf.Steps[0].Input)
	assert.Equal(t, "out", wf.Steps[0].Output)
}

func TestTracker_TerminalStatesAreSticky(t *testing.T) {
	tr := newTestTracker()

	id := tr.StartWorkflow("wf", "", nil)
	step := tr.AddStep(id, "s", "")
	tr.StartStep(id, step, nil)
	tr.FailStep(id, step, errors.New("broken"))
	tr.CompleteStep(id, step, "late")
	tr.FailWorkflow(id, errors.New("broken"))

	wf, _ := tr.Workflow(id)
	end := *wf.EndTime

	tr.CompleteWorkflow(id, "late")
	tr.FailWorkflow(id, errors.New("other"))

	wf, _ = tr.Workflow(id)
	assert.Equal(t, api.WorkflowFailed, wf.Status)
	assert.Equal(t, "broken", wf.Error)
	assert.Nil(t, wf.Output)
	assert.Equal(t, end, *wf.EndTime)
	assert.Equal(t, api.StepFailed, wf.Steps[0].Status)
	assert.Nil(t, wf.Steps[0].Output)

	assert.Empty(t, tr.AddStep(id, "after", ""), "terminal workflows accept no steps")
	assert.Empty(t, tr.RecordToolCall(id, step, "tool", nil), "terminal steps accept no calls")
}

func TestTracker_UnknownIDsAreNoOps(t *testing.T) {
	tr := newTestTracker()

	assert.Empty(t, tr.AddStep("nope", "s", ""))
	assert.Empty(t, tr.RecordToolCall("nope", "s", "tool", nil))
	tr.StartStep("nope", "s", nil)
	tr.CompleteStep("nope", "s", nil)
	tr.FailStep("nope", "s", nil)
	tr.CompleteToolCall("nope", "s", "c", nil)
	tr.FailToolCall("nope", "s", "c", nil)
	tr.CompleteWorkflow("nope", nil)
	tr.FailWorkflow("nope", nil)
	assert.Zero(t, tr.SettleToolCalls("nope", nil))

	id := tr.StartWorkflow("wf", "", nil)
	assert.Empty(t, tr.RecordToolCall(id, "missing-step", "tool", nil))
	tr.CompleteStep(id, "missing-step", nil)

	_, ok := tr.Workflow("nope")
	assert.False(t, ok)
	assert.Len(t, tr.Workflows(), 1)
}

func TestTracker_ToolCalls(t *testing.T) {
	tr := newTestTracker()
	id := tr.StartWorkflow("wf", "", nil)
	step := tr.AddStep(id, "generate", "")
	tr.StartStep(id, step, nil)

	ok := tr.RecordToolCall(id, step, "generate_single_choice_question", "in")
	bad := tr.RecordToolCall(id, step, "generate_fill_blank_question", nil)
	tr.CompleteToolCall(id, step, ok, "q")
	tr.FailToolCall(id, step, bad, nil)

	// Terminal calls ignore later events.
	tr.FailToolCall(id, step, ok, errors.New("late"))
	tr.CompleteToolCall(id, step, bad, "late")

	wf, _ := tr.Workflow(id)
	calls := wf.Steps[0].ToolCalls
	require.Len(t, calls, 2)
	assert.Equal(t, api.ToolCallCompleted, calls[0].Status)
	assert.Equal(t, "q", calls[0].Output)
	assert.Equal(t, api.ToolCallFailed, calls[1].Status)
	assert.Equal(t, "unknown error", calls[1].Error)
	_, ended := calls[1].Duration()
	assert.True(t, ended)
}

func TestTracker_SettleToolCalls(t *testing.T) {
	tr := newTestTracker()
	id := tr.StartWorkflow("wf", "", nil)
	step := tr.AddStep(id, "generate", "")
	tr.StartStep(id, step, nil)

	a := tr.RecordToolCall(id, step, "t", nil)
	b := tr.RecordToolCall(id, step, "t", nil)
	tr.CompleteToolCall(id, step, a, "done")

	assert.Equal(t, 1, tr.SettleToolCalls(id, AutoCompletedOutput))
	assert.Equal(t, 0, tr.SettleToolCalls(id, AutoCompletedOutput))

	wf, _ := tr.Workflow(id)
	calls := wf.Steps[0].ToolCalls
	assert.False(t, calls[0].AutoCompleted)
	assert.Equal(t, api.ToolCallCompleted, calls[1].Status)
	assert.True(t, calls[1].AutoCompleted)
	assert.Equal(t, AutoCompletedOutput, calls[1].Output)

	// An explicit failure still overrides the auto-completion.
	tr.FailToolCall(id, step, b, errors.New("real failure"))
	wf, _ = tr.Workflow(id)
	assert.Equal(t, api.ToolCallFailed, wf.Steps[0].ToolCalls[1].Status)
	assert.False(t, wf.Steps[0].ToolCalls[1].AutoCompleted)
}

func TestTracker_WorkflowIsACopy(t *testing.T) {
	tr := newTestTracker()
	id := tr.StartWorkflow("wf", "", nil)
	step := tr.AddStep(id, "s", "")
	tr.StartStep(id, step, nil)
	tr.RecordToolCall(id, step, "t", nil)

	wf, _ := tr.Workflow(id)
	wf.Steps[0].Name = "mutated"
	wf.Steps[0].ToolCalls[0].ToolName = "mutated"

	again, _ := tr.Workflow(id)
	assert.Equal(t, "s", again.Steps[0].Name)
	assert.Equal(t, "t", again.Steps[0].ToolCalls[0].ToolName)
}

func TestTracker_InterruptedAndOrder(t *testing.T) {
	tr := newTestTracker()
	a := tr.StartWorkflow("a", "", nil)
	b := tr.StartWorkflow("b", "", nil)
	c := tr.StartWorkflow("c", "", nil)
	tr.CompleteWorkflow(b, nil)

	var names []string
	for _, wf := range tr.Workflows() {
		names = append(names, wf.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	var running []string
	for _, wf := range tr.Interrupted() {
		running = append(running, wf.ID)
	}
	assert.Equal(t, []string{a, c}, running)
}

func TestTracker_ConcurrentMutations(t *testing.T) {
	tr := New()
	id := tr.StartWorkflow("wf", "", nil)
	step := tr.AddStep(id, "generate", "")
	tr.StartStep(id, step, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			call := tr.RecordToolCall(id, step, "t", nil)
			tr.CompleteToolCall(id, step, call, "ok")
			_, _ = tr.Report(id)
		}()
	}
	wg.Wait()

	r, err := tr.Report(id)
	require.NoError(t, err)
	assert.Equal(t, 50, r.ToolCallStatistics.Total)
	assert.Equal(t, 50, r.ToolCallStatistics.Successful)
}
