package js

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"pinecone/pkg/html"
)

// ErrInterrupted is returned when a script is stopped by its context.
var ErrInterrupted = errors.New("js: script interrupted")

// Runner executes a document's inline scripts against its tree. Every call
// gets a fresh goja runtime; nothing a script defines survives the call.
type Runner struct {
	log     *zap.Logger
	timeout time.Duration
}

type Option func(*Runner)

// WithLogger sets the logger console output and script failures go to.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l.Named("js")
		}
	}
}

// WithTimeout bounds the total time one Run or Eval may take. Zero means
// only the caller's context applies.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

func New(opts ...Option) *Runner {
	r := &Runner{log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every inline script of doc in document order. The first
// script that throws stops the run; its error is returned.
func (r *Runner) Run(ctx context.Context, doc *html.Document) error {
	if doc == nil || doc.Root == nil {
		return nil
	}
	scripts := doc.Scripts()
	if len(scripts) == 0 {
		return nil
	}
	return r.exec(ctx, doc.Root, func(vm *goja.Runtime) error {
		for i, src := range scripts {
			if _, err := vm.RunString(src); err != nil {
				r.log.Warn("script failed", zap.Int("index", i), zap.Error(err))
				return fmt.Errorf("script %d: %w", i, interrupted(err))
			}
		}
		return nil
	})
}

// Eval runs src against root and returns the exported completion value.
func (r *Runner) Eval(ctx context.Context, root *html.Node, src string) (any, error) {
	var out any
	err := r.exec(ctx, root, func(vm *goja.Runtime) error {
		v, err := vm.RunString(src)
		if err != nil {
			return interrupted(err)
		}
		out = v.Export()
		return nil
	})
	return out, err
}

// exec prepares a runtime bound to root and runs fn on it. The runtime is
// interrupted when ctx ends.
func (r *Runner) exec(ctx context.Context, root *html.Node, fn func(*goja.Runtime) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	vm := goja.New()
	(&consoleAPI{log: r.log}).register(vm)
	registerDocument(vm, root)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	return fn(vm)
}

func interrupted(err error) error {
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		if cause, ok := ie.Value().(error); ok {
			return fmt.Errorf("%w: %w", ErrInterrupted, cause)
		}
		return ErrInterrupted
	}
	return err
}
