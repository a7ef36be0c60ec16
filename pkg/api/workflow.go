package api

import "time"

// WorkflowStatus is the lifecycle state of a tracked workflow.
type WorkflowStatus string

const (
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
)

// Terminal reports whether s is COMPLETED or FAILED.
func (s WorkflowStatus) Terminal() bool {
	return s == WorkflowCompleted || s == WorkflowFailed
}

// StepStatus is the lifecycle state of a step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Terminal reports whether s is COMPLETED or FAILED.
func (s StepStatus) Terminal() bool {
	return s == StepCompleted || s == StepFailed
}

// ToolCallStatus is the lifecycle state of a tool call.
type ToolCallStatus string

const (
	ToolCallRunning   ToolCallStatus = "running"
	ToolCallCompleted ToolCallStatus = "completed"
	ToolCallFailed    ToolCallStatus = "failed"
)

// Workflow is one end-to-end generation request and its tracked execution.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      WorkflowStatus `json:"status"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     *time.Time     `json:"end_time"`
	Input       any            `json:"input_data,omitempty"`
	Output      any            `json:"output_data,omitempty"`
	Error       string         `json:"error,omitempty"`
	Steps       []Step         `json:"steps"`
}

// Step is a named phase within a Workflow.
type Step struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      StepStatus `json:"status"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Input       any        `json:"input_data,omitempty"`
	Output      any        `json:"output_data,omitempty"`
	Error       string     `json:"error,omitempty"`
	ToolCalls   []ToolCall `json:"tool_calls"`
}

// ToolCall is a single invocation of a named capability within a Step.
type ToolCall struct {
	ID        string         `json:"id"`
	ToolName  string         `json:"tool_name"`
	Status    ToolCallStatus `json:"status"`
	Input     any            `json:"input_data,omitempty"`
	Output    any            `json:"output_data,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`

	// AutoCompleted is set when the call was completed on behalf of an
	// engine that never reported its end.
	AutoCompleted bool `json:"auto_completed,omitempty"`
}

// Duration returns the wall-clock duration of the call and whether it has
// ended.
func (c ToolCall) Duration() (time.Duration, bool) {
	if c.EndTime == nil {
		return 0, false
	}
	return c.EndTime.Sub(c.StartTime), true
}
