package quizforge

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cannedGenerator answers each prompt with a valid block of the requested kind.
func cannedGenerator(calls *atomic.Int32) Generator {
	return GeneratorFunc(func(ctx context.Context, req GenerationRequest) (string, error) {
		calls.Add(1)
		p := req.Messages[0].Content
		switch {
		case strings.Contains(p, KindMultipleChoice.Header()):
			return "## MultipleChoice\n\nWhich are prime?\n\n- [x] 2\n- [x] 3\n- [ ] 4", nil
		case strings.Contains(p, KindFillBlank.Header()):
			return "The capital of France is ______.\n\n- R:= Paris", nil
		}
		return "## SingleChoice\n\n1 + 1 = ?\n\n- (x) 2\n- ( ) 3", nil
	})
}

func TestLocalRunner_Run(t *testing.T) {
	var calls atomic.Int32
	runner, err := NewLocalRunner(cannedGenerator(&calls), LocalOptions{RenderDir: t.TempDir()})
	require.NoError(t, err)
	defer runner.Close()

	out, err := runner.Run(context.Background(), map[string]any{
		"subject": "math",
		"count":   3,
		"types":   []string{"singleChoice", "multipleChoice", "fillBlank"},
	})
	require.NoError(t, err)

	res := Validate(out.Document)
	assert.True(t, res.Valid)
	assert.Contains(t, out.Render.URL, "file://")
	assert.EqualValues(t, 3, calls.Load())

	report, err := runner.Report(out.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, WorkflowCompleted, report.Status)
	assert.Equal(t, 3, report.ToolCallStatistics.Total)
	assert.Equal(t, 3, report.ToolCallStatistics.Successful)
	assert.Len(t, runner.Reports(), 1)
}

// A second run of the same request is served from the fingerprint cache.
func TestLocalRunner_CacheReuse(t *testing.T) {
	var calls atomic.Int32
	runner, err := NewLocalRunner(cannedGenerator(&calls), LocalOptions{RenderDir: t.TempDir()})
	require.NoError(t, err)

	inputs := map[string]any{"subject": "history", "count": 2, "topics": "rome,egypt"}
	_, err = runner.Run(context.Background(), inputs)
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), inputs)
	require.NoError(t, err)

	snap := runner.Metrics.Snapshot()
	assert.EqualValues(t, 2, calls.Load(), "second run is served from the cache")
	assert.EqualValues(t, 2, snap.CacheHits)
	assert.EqualValues(t, 2, snap.Generated)
}

func TestLocalRunner_FallbackOnPermanentFailure(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, req GenerationRequest) (string, error) {
		return "", Permanent(errors.New("access denied"))
	})
	policy := Retry(3).Immediate().Policy()
	runner, err := NewLocalRunner(gen, LocalOptions{RenderDir: t.TempDir(), Retry: &policy})
	require.NoError(t, err)

	out, err := runner.Run(context.Background(), map[string]any{"subject": "art", "count": 2})
	require.NoError(t, err)

	spec := out.Plan.Specs[0]
	assert.Contains(t, out.Document, strings.TrimSpace(Placeholder(spec)))
	assert.EqualValues(t, 2, runner.Metrics.Snapshot().Fallbacks)
}

func TestLocalRunner_GenerateQuestion(t *testing.T) {
	var calls atomic.Int32
	runner, err := NewLocalRunner(cannedGenerator(&calls), LocalOptions{RenderDir: t.TempDir()})
	require.NoError(t, err)

	text, wfID, err := runner.GenerateQuestion(context.Background(), QuestionSpec{
		Kind: KindFillBlank, Topic: "geography", Difficulty: DifficultyEasy,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, KindFillBlank.Header()))

	wf, ok := runner.Tracker.Workflow(wfID)
	require.True(t, ok)
	assert.Equal(t, WorkflowCompleted, wf.Status)
}

func TestLocalRunner_ExplicitZeroTemperature(t *testing.T) {
	var got []float64
	gen := GeneratorFunc(func(ctx context.Context, req GenerationRequest) (string, error) {
		got = append(got, req.Temperature)
		return "## FillBlank\n\nx ______\n\n- R:= y", nil
	})
	spec := QuestionSpec{Kind: KindFillBlank, Topic: "zero", Difficulty: DifficultyEasy}

	zero := 0.0
	runner, err := NewLocalRunner(gen, LocalOptions{RenderDir: t.TempDir(), Temperature: &zero})
	require.NoError(t, err)
	_, _, err = runner.GenerateQuestion(context.Background(), spec)
	require.NoError(t, err)

	runner, err = NewLocalRunner(gen, LocalOptions{RenderDir: t.TempDir()})
	require.NoError(t, err)
	spec.Topic = "default"
	_, _, err = runner.GenerateQuestion(context.Background(), spec)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Zero(t, got[0])
	assert.NotZero(t, got[1], "unset temperature keeps the default")
}
