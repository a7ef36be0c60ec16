package api

// WorkflowReport is the evaluation summary of a single workflow.
type WorkflowReport struct {
	WorkflowID   string         `json:"workflow_id"`
	WorkflowName string         `json:"workflow_name"`
	Status       WorkflowStatus `json:"status"`

	// ExecutionTime is the wall-clock duration in seconds, nil while the
	// workflow is still running.
	ExecutionTime *float64 `json:"execution_time"`

	ToolCallStatistics ToolCallStatistics   `json:"tool_call_statistics"`
	ToolDistribution   map[string]ToolStats `json:"tool_distribution"`
	StepStatistics     StepStatistics       `json:"step_statistics"`
	PerformanceMetrics PerformanceMetrics   `json:"performance_metrics"`
}

type ToolCallStatistics struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// ToolStats aggregates the calls made to one tool name.
type ToolStats struct {
	Total                int     `json:"total"`
	Successful           int     `json:"successful"`
	Failed               int     `json:"failed"`
	AverageExecutionTime float64 `json:"average_execution_time"`
}

type StepStatistics struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Failed         int     `json:"failed"`
	CompletionRate float64 `json:"completion_rate"`
}

type PerformanceMetrics struct {
	AverageToolExecutionTime float64 `json:"average_tool_execution_time"`
}
