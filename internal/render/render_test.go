package render

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare(t *testing.T) {
	in := "Here is your exam.\n## SingleChoice\n\nQ\n\n   - (x) a\n    - ( ) b"
	assert.Equal(t, "## SingleChoice\n\nQ\n\n    - (x) a\n    - ( ) b", Prepare(in))

	canonical := "## FillBlank\n\nx ______\n\n- R:= y"
	assert.Equal(t, canonical, Prepare(canonical))
}

func TestExtractURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5006/get_html/abc123", ExtractURL("Saved\nView at http://localhost:5006/get_html/abc123"))
	assert.Empty(t, ExtractURL("no link"))
}

func TestHTTPRenderer(t *testing.T) {
	var gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"message":"Saved\nView at http://render.local/get_html/42"}`))
	}))
	defer srv.Close()

	res, err := NewHTTPRenderer(srv.URL+"/upload_markdown", nil, nil).Render(context.Background(), "intro\n## SingleChoice\n\nQ\n\n- (x) a")
	require.NoError(t, err)
	assert.Equal(t, "http://render.local/get_html/42", res.URL)
	assert.Contains(t, res.Message, "Saved")
	assert.Equal(t, "text/plain; charset=utf-8", gotType)
	assert.Equal(t, "## SingleChoice\n\nQ\n\n- (x) a", gotBody)
}

func TestHTTPRenderer_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/bad-json") {
			_, _ = w.Write([]byte("not json"))
			return
		}
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPRenderer(srv.URL+"/upload", nil, nil).Render(context.Background(), "## SingleChoice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	_, err = NewHTTPRenderer(srv.URL+"/bad-json", nil, nil).Render(context.Background(), "## SingleChoice")
	require.Error(t, err)
}

func TestLocalRenderer(t *testing.T) {
	dir := t.TempDir()
	r, err := NewLocalRenderer(dir)
	require.NoError(t, err)
	r.newID = func() string { return "fixed" }

	res, err := r.Render(context.Background(), "## SingleChoice\n\nWhat is **2+2**?\n\n- (x) 4\n- ( ) 5")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.URL, "file://"))
	assert.True(t, strings.HasSuffix(res.URL, "/fixed.html"))
	assert.Contains(t, res.Message, res.URL)

	html, err := os.ReadFile(strings.TrimPrefix(res.URL, "file://"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h2>SingleChoice</h2>")
	assert.Contains(t, string(html), "<strong>2+2</strong>")
}
