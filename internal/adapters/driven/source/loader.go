package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
	"github.com/custodia-labs/highlight/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultFetchRate is the number of URL fetches allowed per second.
	DefaultFetchRate = 2.0

	// MaxBodySize caps how much of a fetched page is read.
	MaxBodySize = 10 << 20
)

// Kind is the format of a loaded input.
type Kind string

// Input kinds.
const (
	KindHTML     Kind = "html"
	KindMarkdown Kind = "markdown"
	KindURL      Kind = "url"
)

// Page is a loaded document and where it came from.
type Page struct {
	Ref  string
	Kind Kind
	Doc  *dom.Document
}

// Loader resolves input references to documents.
type Loader struct {
	client   *http.Client
	limiter  *rate.Limiter
	markdown goldmark.Markdown
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for URL inputs.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithFetchRate limits URL fetches to perSecond. Zero or less disables
// the limit.
func WithFetchRate(perSecond float64) Option {
	return func(l *Loader) {
		if perSecond <= 0 {
			l.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		l.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultFetchRate), 1),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Expand resolves refs into loadable references. URLs and existing files
// pass through unchanged; anything else is treated as a glob pattern.
// A pattern that matches nothing is an error wrapping domain.ErrNotFound.
func (l *Loader) Expand(refs []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(ref string) {
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}

	for _, ref := range refs {
		if IsURL(ref) {
			add(ref)
			continue
		}
		if info, err := os.Stat(ref); err == nil && !info.IsDir() {
			add(ref)
			continue
		}

		matches, err := doublestar.FilepathGlob(ref, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", domain.ErrInvalidInput, ref, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: no files match %q", domain.ErrNotFound, ref)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

// Load reads ref and parses it into a document.
func (l *Loader) Load(ctx context.Context, ref string) (*Page, error) {
	if IsURL(ref) {
		doc, err := l.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		return &Page{Ref: ref, Kind: KindURL, Doc: doc}, nil
	}

	raw, err := os.ReadFile(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("reading %s: %w", ref, err)
	}

	if IsMarkdown(ref) {
		doc, err := l.RenderMarkdown(raw)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", ref, err)
		}
		return &Page{Ref: ref, Kind: KindMarkdown, Doc: doc}, nil
	}

	doc, err := dom.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ref, err)
	}
	return &Page{Ref: ref, Kind: KindHTML, Doc: doc}, nil
}

// RenderMarkdown converts Markdown to a document whose content sits in
// <main>, so the main-content region picks it up.
func (l *Loader) RenderMarkdown(src []byte) (*dom.Document, error) {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body><main>\n")
	if err := l.markdown.Convert(src, &buf); err != nil {
		return nil, err
	}
	buf.WriteString("</main></body></html>\n")
	return dom.Parse(&buf)
}

func (l *Loader) fetch(ctx context.Context, ref string) (*dom.Document, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	logger.Debug("Fetching %s", ref)
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", ref, resp.StatusCode)
	}

	doc, err := dom.Parse(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ref, err)
	}
	return doc, nil
}

// IsURL reports whether ref is an http or https URL.
func IsURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsMarkdown reports whether path has a Markdown extension.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown":
		return true
	default:
		return false
	}
}

// OutputName returns the file name an annotated copy of ref is written to.
// Markdown inputs become .html files; URLs are named after their last
// path segment, or the host when the path is empty.
func OutputName(ref string) string {
	if IsURL(ref) {
		u, _ := url.Parse(ref)
		base := strings.Trim(u.Path, "/")
		if base == "" {
			return u.Host + ".html"
		}
		base = filepath.Base(base)
		if filepath.Ext(base) == "" {
			base += ".html"
		}
		return base
	}
	base := filepath.Base(ref)
	if IsMarkdown(base) {
		return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
	}
	return base
}
