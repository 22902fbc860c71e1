package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/mdsplit/internal/cache"
	"github.com/hyperifyio/mdsplit/internal/document"
)

// StatusError reports a non-success HTTP response while fetching a URL
// source, carrying the numeric status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %d", e.Code)
}

// NotFoundError reports a local source path that does not exist or is not a
// regular file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// Fetcher acquires raw document content from local files or HTTP(S) URLs.
// The zero value is usable; a nil HTTPClient falls back to a default client
// bounded by Timeout.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each URL fetch. Zero means no client-side bound beyond
	// what the underlying transport imposes.
	Timeout time.Duration
	// Cache, when set, serves URL content from disk and stores fresh
	// fetches. Local files are never cached.
	Cache *cache.Cache
	// CacheMaxAge bounds how old a cached entry may be before it is
	// refetched. Zero accepts any stored entry.
	CacheMaxAge time.Duration
}

// Fetched pairs raw content with its provenance metadata.
type Fetched struct {
	Content string
	Meta    document.Metadata
}

// IsURL classifies a source identifier by scheme prefix; anything that is
// not http(s) is treated as a filesystem path.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch reads one source, local or remote, and returns its content plus
// provenance metadata. The metadata's PageBreaks list starts empty and is
// filled in later by the parser.
func (f *Fetcher) Fetch(ctx context.Context, source string) (Fetched, error) {
	if IsURL(source) {
		return f.fetchURL(ctx, source)
	}
	return f.fetchFile(source)
}

// FetchAll reads sources in order. A failure on any source aborts the rest
// of the batch; sources already fetched are discarded.
func (f *Fetcher) FetchAll(ctx context.Context, sources []string) ([]Fetched, error) {
	results := make([]Fetched, 0, len(sources))
	for _, source := range sources {
		fetched, err := f.Fetch(ctx, source)
		if err != nil {
			log.Warn().Str("source", source).Err(err).Msg("fetch failed, aborting batch")
			return nil, err
		}
		log.Info().Str("source", source).Int("lines", fetched.Meta.TotalLines).Msg("fetched content")
		results = append(results, fetched)
	}
	return results, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, rawURL string) (Fetched, error) {
	log.Info().Str("url", rawURL).Msg("fetching content from URL")

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Fetched{}, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	if f.Cache != nil {
		if content, ok := f.Cache.Load(ctx, rawURL, f.CacheMaxAge); ok {
			log.Debug().Str("url", rawURL).Msg("serving content from cache")
			return Fetched{
				Content: content,
				Meta:    newMetadata(filenameFromURL(parsed), document.SourceURL, content),
			}, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Fetched{}, fmt.Errorf("new request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.httpClient().Do(req)
	if err != nil {
		return Fetched{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Fetched{}, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fetched{}, fmt.Errorf("read body: %w", err)
	}
	if !utf8.Valid(body) {
		return Fetched{}, fmt.Errorf("content from %s is not valid UTF-8", rawURL)
	}

	content := string(body)
	if f.Cache != nil {
		if err := f.Cache.Save(ctx, rawURL, content); err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("cache save failed")
		}
	}
	return Fetched{
		Content: content,
		Meta:    newMetadata(filenameFromURL(parsed), document.SourceURL, content),
	}, nil
}

func (f *Fetcher) fetchFile(path string) (Fetched, error) {
	log.Info().Str("path", path).Msg("reading file")

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Fetched{}, &NotFoundError{Path: path}
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return Fetched{}, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(body) {
		return Fetched{}, fmt.Errorf("content of %s is not valid UTF-8", path)
	}

	content := string(body)
	return Fetched{
		Content: content,
		Meta:    newMetadata(filepath.Base(path), document.SourceLocalFile, content),
	}, nil
}

func (f *Fetcher) httpClient() *http.Client {
	if f.HTTPClient != nil {
		return f.HTTPClient
	}
	return &http.Client{Timeout: f.Timeout}
}

func newMetadata(filename string, kind document.SourceKind, content string) document.Metadata {
	return document.Metadata{
		Filename:   filename,
		SourceKind: kind,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		TotalLines: countLines(content),
		PageBreaks: []int{},
	}
}

// filenameFromURL derives a provenance name from the last non-empty path
// segment, falling back to a generic name for bare hosts.
func filenameFromURL(u *url.URL) string {
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return "downloaded.md"
}

// countLines counts lines the way the parser does: a trailing newline does
// not start an extra line.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// ValidateSources checks each source up front: URLs must parse, local paths
// must exist as regular files. The first invalid source aborts validation.
func ValidateSources(sources []string) ([]string, error) {
	validated := make([]string, 0, len(sources))
	for _, source := range sources {
		if IsURL(source) {
			if _, err := url.Parse(source); err != nil {
				return nil, fmt.Errorf("invalid URL %q: %w", source, err)
			}
			validated = append(validated, source)
			continue
		}
		info, err := os.Stat(source)
		if err != nil || info.IsDir() {
			return nil, &NotFoundError{Path: source}
		}
		validated = append(validated, source)
	}
	return validated, nil
}
