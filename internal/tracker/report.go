package tracker

import (
	"errors"

	"github.com/petrijr/quizforge/pkg/api"
)

// ErrWorkflowNotFound is returned by Report for unknown ids.
var ErrWorkflowNotFound = errors.New("workflow not found")

// Report builds the evaluation report of one workflow.
func (t *Tracker) Report(id string) (api.WorkflowReport, error) {
	wf, ok := t.Workflow(id)
	if !ok {
		return api.WorkflowReport{}, ErrWorkflowNotFound
	}
	return BuildReport(wf), nil
}

// Reports builds the reports of every workflow in start order.
func (t *Tracker) Reports() []api.WorkflowReport {
	wfs := t.Workflows()
	out := make([]api.WorkflowReport, 0, len(wfs))
	for _, wf := range wfs {
		out = append(out, BuildReport(wf))
	}
	return out
}

// BuildReport derives the evaluation report of wf. Durations are in seconds;
// averages only consider tool calls that have ended.
func BuildReport(wf api.Workflow) api.WorkflowReport {
	r := api.WorkflowReport{
		WorkflowID:       wf.ID,
		WorkflowName:     wf.Name,
		Status:           wf.Status,
		ToolDistribution: map[string]api.ToolStats{},
	}
	if wf.EndTime != nil {
		secs := wf.EndTime.Sub(wf.StartTime).Seconds()
		r.ExecutionTime = &secs
	}

	type acc struct {
		stats api.ToolStats
		total float64
		timed int
	}
	perTool := map[string]*acc{}
	var allTime float64
	var allTimed int

	for _, s := range wf.Steps {
		r.StepStatistics.Total++
		switch s.Status {
		case api.StepCompleted:
			r.StepStatistics.Completed++
		case api.StepFailed:
			r.StepStatistics.Failed++
		}

		for _, c := range s.ToolCalls {
			a := perTool[c.ToolName]
			if a == nil {
				a = &acc{}
				perTool[c.ToolName] = a
			}
			r.ToolCallStatistics.Total++
			a.stats.Total++
			switch c.Status {
			case api.ToolCallCompleted:
				r.ToolCallStatistics.Successful++
				a.stats.Successful++
			case api.ToolCallFailed:
				r.ToolCallStatistics.Failed++
				a.stats.Failed++
			}
			if d, ok := c.Duration(); ok {
				a.total += d.Seconds()
				a.timed++
				allTime += d.Seconds()
				allTimed++
			}
		}
	}

	for name, a := range perTool {
		if a.timed > 0 {
			a.stats.AverageExecutionTime = a.total / float64(a.timed)
		}
		r.ToolDistribution[name] = a.stats
	}
	if n := r.ToolCallStatistics.Total; n > 0 {
		r.ToolCallStatistics.SuccessRate = float64(r.ToolCallStatistics.Successful) / float64(n)
	}
	if n := r.StepStatistics.Total; n > 0 {
		r.StepStatistics.CompletionRate = float64(r.StepStatistics.Completed) / float64(n)
	}
	if allTimed > 0 {
		r.PerformanceMetrics.AverageToolExecutionTime = allTime / float64(allTimed)
	}
	return r
}
