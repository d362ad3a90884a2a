package resource

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestLoader_HTTP(t *testing.T) {
	body := pngBytes(t, 40, 30)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	l := NewLoader(NewFetcher(srv.URL))
	img := l.Load(context.Background(), "/pic.png")
	require.NoError(t, img.Err)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 30, img.Height)

	again := l.Load(context.Background(), "/pic.png")
	assert.Equal(t, img, again)
	assert.Equal(t, int32(1), hits.Load(), "a URI is fetched once per loader")
}

func TestLoader_DataURI(t *testing.T) {
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 2, 5))
	img := NewLoader(NewFetcher("")).Load(context.Background(), uri)
	require.NoError(t, img.Err)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 5, img.Height)
}

func TestLoader_TimeoutGivesPlaceholder(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := FetcherFunc(func(ctx context.Context, uri string) ([]byte, string, error) {
		<-release
		return nil, "", nil
	})

	core, logs := observer.New(zap.WarnLevel)
	l := NewLoader(slow, WithTimeout(20*time.Millisecond), WithLogger(zap.New(core)))

	start := time.Now()
	img := l.Load(context.Background(), "http://slow.example/x.png")
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, img.Err, ErrTimeout)
	assert.Zero(t, img.Width)
	assert.Zero(t, img.Height)
	assert.Equal(t, 1, logs.Len(), "timeout is logged")
}

func TestLoader_ContextCancel(t *testing.T) {
	block := FetcherFunc(func(ctx context.Context, uri string) ([]byte, string, error) {
		<-ctx.Done()
		return nil, "", ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img := NewLoader(block).Load(ctx, "x.png")
	assert.ErrorIs(t, img.Err, context.Canceled)
}

func TestLoader_Failures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	tests := []struct {
		name    string
		fetcher Fetcher
		uri     string
	}{
		{"404", NewFetcher(srv.URL), "/missing.png"},
		{"not an image", FetcherFunc(func(context.Context, string) ([]byte, string, error) {
			return []byte("hello"), "text/plain", nil
		}), "x"},
		{"fetch error", FetcherFunc(func(context.Context, string) ([]byte, string, error) {
			return nil, "", errors.New("boom")
		}), "x"},
		{"panicking fetcher", FetcherFunc(func(context.Context, string) ([]byte, string, error) {
			panic("boom")
		}), "x"},
		{"unsupported scheme", NewFetcher(""), "ftp://example.com/x.png"},
		{"nil fetcher", nil, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewLoader(tt.fetcher).Load(context.Background(), tt.uri)
			assert.Error(t, img.Err)
			assert.Zero(t, img.Width)
			assert.Zero(t, img.Height)
		})
	}
}

func TestDefaultFetcher_BaseDir(t *testing.T) {
	dir := t.TempDir()
	body := pngBytes(t, 1, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), body, 0o644))

	f := NewFetcher("").WithBaseDir(dir)
	got, _, err := f.Fetch(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Equal(t, body, got)

	_, _, err = NewFetcher("").Fetch(context.Background(), "a.png")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}
