// Package render publishes a finished exam document and returns where it can
// be viewed.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const DefaultTimeout = 10 * time.Second

// Result is the renderer's answer.
type Result struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// Renderer publishes a document.
type Renderer interface {
	Render(ctx context.Context, doc string) (Result, error)
}

var (
	threeSpaceDashRe = regexp.MustCompile(`(?m)^[ \t]{3}-`)
	urlRe            = regexp.MustCompile(`https?://[^\s"'<>]+`)
)

// Prepare drops any summary text in front of the first block header and
// widens three-space list indentation to four spaces.
func Prepare(doc string) string {
	if !strings.HasPrefix(strings.TrimSpace(doc), "## ") {
		if pos := strings.Index(doc, "\n## "); pos > 0 {
			doc = doc[pos+1:]
		}
	}
	return threeSpaceDashRe.ReplaceAllString(doc, "    -")
}

// ExtractURL returns the first http(s) URL in message.
func ExtractURL(message string) string {
	return urlRe.FindString(message)
}

// HTTPRenderer posts documents to a remote rendering service that answers
// with {"message": "... <url>"}.
type HTTPRenderer struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTPRenderer creates an HTTPRenderer. A nil client gets a 10s timeout.
func NewHTTPRenderer(endpoint string, client *http.Client, logger *slog.Logger) *HTTPRenderer {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPRenderer{endpoint: endpoint, client: client, logger: logger}
}

func (r *HTTPRenderer) Render(ctx context.Context, doc string) (Result, error) {
	body := Prepare(doc)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("render request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("render service unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read render response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("render service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, fmt.Errorf("decode render response: %w", err)
	}
	if res.URL == "" {
		res.URL = ExtractURL(res.Message)
	}
	r.logger.InfoContext(ctx, "document_rendered", slog.String("url", res.URL))
	return res, nil
}

// LocalRenderer converts documents to HTML files in a directory.
type LocalRenderer struct {
	dir   string
	md    goldmark.Markdown
	newID func() string
}

// NewLocalRenderer creates a LocalRenderer writing into dir.
func NewLocalRenderer(dir string) (*LocalRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &LocalRenderer{
		dir:   abs,
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		newID: uuid.NewString,
	}, nil
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Exam</title>
<style>
body { font-family: 'Segoe UI', Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 0 auto; padding: 40px 20px; color: #333; }
h2 { color: #2c3e50; border-bottom: 1px solid #ddd; }
ul { list-style: none; padding-left: 1em; }
</style>
</head>
<body>
%s
</body>
</html>
`

func (r *LocalRenderer) Render(ctx context.Context, doc string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(Prepare(doc)), &buf); err != nil {
		return Result{}, fmt.Errorf("convert markdown: %w", err)
	}

	path := filepath.Join(r.dir, r.newID()+".html")
	if err := os.WriteFile(path, []byte(fmt.Sprintf(pageTemplate, buf.String())), 0o644); err != nil {
		return Result{}, fmt.Errorf("write rendered document: %w", err)
	}

	url := "file://" + filepath.ToSlash(path)
	return Result{Message: "Saved. View at " + url, URL: url}, nil
}
