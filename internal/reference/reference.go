// Package reference turns a teacher-supplied reference (plain text or a URL)
// into bounded text suitable for a generation prompt.
package reference

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markusmobius/go-trafilatura"
	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultMaxLength is the default rune budget of a processed reference.
	DefaultMaxLength = 5000

	DefaultFetchTimeout = 10 * time.Second

	// maxBodyBytes bounds how much of a fetched page is read.
	maxBodyBytes = 5 << 20
)

// IsURL reports whether s is an absolute http or https URL with a host.
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Truncate limits text to max runes, appending a note with the original and
// truncated lengths. A non-positive max disables truncation.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	return string(runes[:max]) +
		fmt.Sprintf("\n\n[content truncated: original length %d characters, truncated to %d characters]", len(runes), max)
}

// Processor resolves references.
type Processor struct {
	client    *http.Client
	maxLength int
	logger    *slog.Logger
	pages     *gocache.Cache
}

// Option configures a Processor.
type Option func(*Processor)

// WithMaxLength sets the rune budget.
func WithMaxLength(n int) Option {
	return func(p *Processor) { p.maxLength = n }
}

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(p *Processor) {
		if c != nil {
			p.client = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPageCache keeps extracted pages for ttl so that repeated requests for
// the same URL fetch it once.
func WithPageCache(ttl time.Duration) Option {
	return func(p *Processor) {
		if ttl > 0 {
			p.pages = gocache.New(ttl, 2*ttl)
		}
	}
}

// NewProcessor creates a Processor.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		client:    &http.Client{Timeout: DefaultFetchTimeout},
		maxLength: DefaultMaxLength,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process returns the text to use for ref. Empty references yield "". URLs
// are fetched and reduced to their main content; when fetching fails the
// reference itself is used. The result is truncated to the rune budget.
func (p *Processor) Process(ctx context.Context, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if !IsURL(ref) {
		return Truncate(ref, p.maxLength)
	}

	text, err := p.fetch(ctx, ref)
	if err != nil {
		p.logger.WarnContext(ctx, "reference_fetch_failed", slog.String("url", ref), slog.Any("error", err))
		return Truncate(ref, p.maxLength)
	}
	return Truncate(text, p.maxLength)
}

func (p *Processor) fetch(ctx context.Context, rawURL string) (string, error) {
	if p.pages != nil {
		if v, ok := p.pages.Get(rawURL); ok {
			return v.(string), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP error %d: %s", resp.StatusCode, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	text := p.extract(ctx, rawURL, body)
	if p.pages != nil {
		p.pages.SetDefault(rawURL, text)
	}
	return text, nil
}

// extract returns the main content of an HTML page, or the body as text when
// extraction finds nothing.
func (p *Processor) extract(ctx context.Context, rawURL string, body []byte) string {
	opts := trafilatura.Options{EnableFallback: true}
	if u, err := url.Parse(rawURL); err == nil {
		opts.OriginalURL = u
	}
	result, err := trafilatura.Extract(bytes.NewReader(body), opts)
	if err == nil && result != nil && strings.TrimSpace(result.ContentText) != "" {
		return strings.TrimSpace(result.ContentText)
	}
	p.logger.DebugContext(ctx, "reference_extraction_fallback", slog.String("url", rawURL), slog.Any("error", err))
	return collapseBlankLines(string(body))
}

func collapseBlankLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}
