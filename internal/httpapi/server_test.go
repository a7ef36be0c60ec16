package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/quizforge/internal/exam"
	"github.com/petrijr/quizforge/internal/examdoc"
	"github.com/petrijr/quizforge/internal/metrics"
	"github.com/petrijr/quizforge/internal/render"
	"github.com/petrijr/quizforge/internal/tracker"
	"github.com/petrijr/quizforge/pkg/api"
)

type placeholderDispatcher struct {
	oneErr error
}

func (placeholderDispatcher) Dispatch(ctx context.Context, specs []api.QuestionSpec) []string {
	out := make([]string, len(specs))
	for i, spec := range specs {
		out[i] = examdoc.Placeholder(spec)
	}
	return out
}

func (d placeholderDispatcher) GenerateOne(ctx context.Context, spec api.QuestionSpec) (string, error) {
	if d.oneErr != nil {
		return "", d.oneErr
	}
	return examdoc.Placeholder(spec), nil
}

func newTestServer(t *testing.T, d exam.Dispatcher) (*Server, *tracker.Tracker) {
	t.Helper()
	r, err := render.NewLocalRenderer(t.TempDir())
	require.NoError(t, err)

	tr := tracker.New()
	svc := exam.NewService(tr, d, nil, r)
	srv := New(svc, Config{
		Host:     "127.0.0.1",
		Port:     5001,
		Provider: "messages",
		Model:    "test-model",
		Metrics:  metrics.NewObserver().Handler(),
		Now:      func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	return srv, tr
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func TestRunWorkflow_Success(t *testing.T) {
	srv, tr := newTestServer(t, placeholderDispatcher{})

	rec, resp := do(t, srv.Handler(), http.MethodPost, "/workflows/run",
		`{"inputs":{"subject":"math","count":3,"types":"singleChoice,fillBlank"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, EventWorkflowFinished, resp["event"])
	wfID, _ := resp["workflow_id"].(string)
	require.NotEmpty(t, wfID)

	body := resp["data"].(map[string]any)["outputs"].(map[string]any)["body"].(string)
	var msg map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &msg))
	assert.Contains(t, msg["message"], "file://")

	wf, ok := tr.Workflow(wfID)
	require.True(t, ok)
	assert.Equal(t, api.WorkflowCompleted, wf.Status)
}

func TestRunWorkflow_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, placeholderDispatcher{})

	cases := map[string]string{
		"malformed":      `{"inputs":`,
		"empty inputs":   `{"inputs":{}}`,
		"unknown type":   `{"inputs":{"subject":"math","types":"essay"}}`,
		"negative count": `{"inputs":{"subject":"math","count":-2}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec, resp := do(t, srv.Handler(), http.MethodPost, "/workflows/run", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
			errBody := resp["data"].(map[string]any)["outputs"].(map[string]any)["body"].(map[string]any)
			assert.NotEmpty(t, errBody["error"])
		})
	}
}

func TestGenerateQuestion(t *testing.T) {
	srv, tr := newTestServer(t, placeholderDispatcher{})

	rec, resp := do(t, srv.Handler(), http.MethodPost, "/questions/generate",
		`{"kind":"fill_blank","topic":"fractions","difficulty":"easy"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, resp["question"], "R:=")

	wf, ok := tr.Workflow(resp["workflow_id"].(string))
	require.True(t, ok)
	assert.Equal(t, exam.QuestionWorkflowName, wf.Name)

	rec, _ = do(t, srv.Handler(), http.MethodPost, "/questions/generate", `{"kind":"essay"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateQuestion_Failure(t *testing.T) {
	srv, tr := newTestServer(t, placeholderDispatcher{oneErr: errors.New("boom")})

	rec, resp := do(t, srv.Handler(), http.MethodPost, "/questions/generate", `{"kind":"single"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", resp["status"])
	assert.Contains(t, resp["message"], "boom")

	wf, ok := tr.Workflow(resp["workflow_id"].(string))
	require.True(t, ok)
	assert.Equal(t, api.WorkflowFailed, wf.Status)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	srv, tr := newTestServer(t, placeholderDispatcher{})
	huge := strings.Repeat("a", 2<<20)

	rec, _ := do(t, srv.Handler(), http.MethodPost, "/workflows/run",
		`{"inputs":{"subject":"`+huge+`"}}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec, _ = do(t, srv.Handler(), http.MethodPost, "/questions/generate",
		`{"kind":"single","topic":"`+huge+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	assert.Empty(t, tr.Workflows())
}

func TestReport(t *testing.T) {
	srv, tr := newTestServer(t, placeholderDispatcher{})
	id := tr.StartWorkflow("demo", "", nil)
	tr.CompleteWorkflow(id, "done")

	rec, resp := do(t, srv.Handler(), http.MethodGet, "/evaluation/report?workflow_id="+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, id, resp["report"].(map[string]any)["workflow_id"])

	rec, resp = do(t, srv.Handler(), http.MethodGet, "/evaluation/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp["report"], 1)

	rec, resp = do(t, srv.Handler(), http.MethodGet, "/evaluation/report?workflow_id=missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", resp["status"])
}

func TestInterrupted(t *testing.T) {
	srv, tr := newTestServer(t, placeholderDispatcher{})
	running := tr.StartWorkflow("running", "", nil)
	done := tr.StartWorkflow("done", "", nil)
	tr.CompleteWorkflow(done, nil)

	rec, resp := do(t, srv.Handler(), http.MethodGet, "/workflows/interrupted", "")
	require.Equal(t, http.StatusOK, rec.Code)
	wfs := resp["workflows"].([]any)
	require.Len(t, wfs, 1)
	assert.Equal(t, running, wfs[0].(map[string]any)["id"])
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, placeholderDispatcher{})

	rec, resp := do(t, srv.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "2025-03-01T12:00:00Z", resp["timestamp"])
	assert.Equal(t, "test-model", resp["generation"].(map[string]any)["model"])

	rec, _ = do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
