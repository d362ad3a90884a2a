package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pinecone/pkg/images"
)

// DefaultTimeout bounds how long a pass waits for one image.
const DefaultTimeout = 2 * time.Second

// ErrTimeout is recorded on an Image whose fetch did not finish in time.
var ErrTimeout = errors.New("resource fetch timed out")

// Image is the outcome of loading one image URI. A failed load has a zero
// size and a non-nil Err.
type Image struct {
	URI    string
	Width  int
	Height int
	Err    error
}

// Loader resolves image URIs to intrinsic sizes for a single pass. Each
// distinct URI is fetched at most once; a Loader should not outlive the pass
// that created it.
type Loader struct {
	fetcher Fetcher
	timeout time.Duration
	log     *zap.Logger

	mu   sync.Mutex
	memo map[string]Image
}

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout sets the per-request wait. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLogger sets the logger used for fetch warnings.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log.Named("resource")
		}
	}
}

// NewLoader creates a Loader that fetches through f.
func NewLoader(f Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher: f,
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
		memo:    make(map[string]Image),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the intrinsic size of the image at uri. The fetch runs on its
// own goroutine and reports back over a one-slot channel; Load waits for that
// report, the loader's timeout, or ctx, whichever comes first. Failures are
// logged and yield a zero-size Image.
func (l *Loader) Load(ctx context.Context, uri string) Image {
	l.mu.Lock()
	if img, ok := l.memo[uri]; ok {
		l.mu.Unlock()
		return img
	}
	l.mu.Unlock()

	img := l.wait(ctx, uri)
	if img.Err != nil {
		l.log.Warn("image unavailable, using empty placeholder",
			zap.String("uri", uri), zap.Error(img.Err))
		img.Width, img.Height = 0, 0
	}

	l.mu.Lock()
	l.memo[uri] = img
	l.mu.Unlock()
	return img
}

func (l *Loader) wait(ctx context.Context, uri string) Image {
	if l.fetcher == nil {
		return Image{URI: uri, Err: fmt.Errorf("%w: no fetcher", ErrUnsupportedScheme)}
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	// The worker never blocks on send, so it exits even if nobody receives.
	done := make(chan Image, 1)
	go func() {
		done <- l.fetch(ctx, uri)
	}()

	select {
	case img := <-done:
		return img
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrTimeout, l.timeout)
		}
		return Image{URI: uri, Err: err}
	}
}

func (l *Loader) fetch(ctx context.Context, uri string) (img Image) {
	img.URI = uri
	defer func() {
		if r := recover(); r != nil {
			img = Image{URI: uri, Err: fmt.Errorf("fetcher panicked: %v", r)}
		}
	}()
	body, _, err := l.fetcher.Fetch(ctx, uri)
	if err != nil {
		img.Err = err
		return img
	}
	size, err := images.DecodeSize(body)
	if err != nil {
		img.Err = err
		return img
	}
	img.Width, img.Height = size.Width, size.Height
	return img
}
