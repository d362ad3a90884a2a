package resource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	stdnet "pinecone/std/net"
)

// ErrUnsupportedScheme is returned for URIs the fetcher will not follow.
var ErrUnsupportedScheme = errors.New("unsupported URI scheme")

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, uri string) ([]byte, string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	return f(ctx, uri)
}

// DefaultFetcher fetches data: URIs, HTTP/HTTPS URLs, and, when a base
// directory is set, local files.
type DefaultFetcher struct {
	baseURL string
	baseDir string
}

// NewFetcher creates a DefaultFetcher with the given base URL.
// Relative URIs passed to Fetch will be resolved against this base.
func NewFetcher(baseURL string) *DefaultFetcher {
	return &DefaultFetcher{baseURL: baseURL}
}

// WithBaseDir allows relative and file: URIs to be read from dir.
func (f *DefaultFetcher) WithBaseDir(dir string) *DefaultFetcher {
	f.baseDir = dir
	return f
}

// Fetch retrieves the resource at the given URI.
// Relative URIs are resolved against the fetcher's base URL, or the base
// directory when no base URL is set.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	uri = strings.TrimSpace(uri)
	if stdnet.IsDataURI(uri) {
		return stdnet.DecodeDataURI(uri)
	}
	resolved := uri
	if !stdnet.IsNetworkURL(uri) && f.baseURL != "" {
		resolved = stdnet.ResolveURL(f.baseURL, uri)
	}
	if stdnet.IsNetworkURL(resolved) {
		return stdnet.Fetch(ctx, resolved)
	}
	if f.baseDir != "" {
		return f.readFile(resolved)
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, resolved)
}

func (f *DefaultFetcher) readFile(uri string) ([]byte, string, error) {
	path := strings.TrimPrefix(uri, "file://")
	if strings.Contains(path, "://") {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.baseDir, filepath.FromSlash(path))
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return body, "", nil
}
