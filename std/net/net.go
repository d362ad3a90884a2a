package net

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "pinecone/1.0 (compatible; Go)"

// maxBody caps how much of a response is read.
const maxBody = 16 << 20

// ErrNotDataURI is returned by DecodeDataURI for anything that is not a
// well-formed data: URI.
var ErrNotDataURI = errors.New("not a data URI")

// httpClient is a shared HTTP client. Callers bound individual requests with
// their context; the client timeout is only a backstop.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// Fetch retrieves the content at the given URL via HTTP/HTTPS.
// Returns the response body, content type, and any error.
func Fetch(ctx context.Context, rawURL string) (body []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}

	contentType = resp.Header.Get("Content-Type")
	return body, contentType, nil
}

// ResolveURL resolves a possibly-relative URI against a base URL.
// If ref is already absolute, it is returned as-is.
func ResolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// IsNetworkURL returns true if the string looks like an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsDataURI reports whether s uses the data: scheme.
func IsDataURI(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// DecodeDataURI returns the payload and media type of a data: URI. Both the
// base64 and the percent-encoded forms are accepted.
func DecodeDataURI(uri string) (body []byte, mediaType string, err error) {
	if !IsDataURI(uri) {
		return nil, "", ErrNotDataURI
	}
	header, payload, ok := strings.Cut(uri[5:], ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing comma", ErrNotDataURI)
	}
	mediaType = header
	isBase64 := false
	if before, found := strings.CutSuffix(header, ";base64"); found {
		mediaType, isBase64 = before, true
	}
	if mediaType == "" {
		mediaType = "text/plain;charset=US-ASCII"
	}
	if isBase64 {
		body, err = base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return nil, "", fmt.Errorf("decoding base64 payload: %w", err)
		}
		return body, mediaType, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding payload: %w", err)
	}
	return []byte(decoded), mediaType, nil
}
