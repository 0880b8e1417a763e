// Package fetch acquires raw metadata XML from the supported sources: a
// local file, a URL, or stdin. Each acquisition is a single attempt with no
// retry or streaming; a failure is terminal for that attempt and the caller
// simply issues a new one.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Fetcher acquires metadata documents.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with the default HTTP timeout.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// Acquire reads from a URL when the source looks like one, otherwise from a
// file. "-" reads stdin.
func (f *Fetcher) Acquire(ctx context.Context, source string) (string, error) {
	switch {
	case source == "-":
		return f.FromReader(os.Stdin)
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return f.FromURL(ctx, source)
	default:
		return f.FromFile(source)
	}
}

// FromFile reads a metadata document from disk.
func (f *Fetcher) FromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading metadata file: %w", err)
	}
	return string(data), nil
}

// FromURL fetches a metadata document over HTTP. Any non-2xx status is an
// error; there is exactly one attempt.
func (f *Fetcher) FromURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching metadata: server returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(data), nil
}

// FromReader drains a reader, for piped input.
func (f *Fetcher) FromReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}
