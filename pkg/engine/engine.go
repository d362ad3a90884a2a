// Package engine wires the pipeline together: markup and stylesheet text in,
// a laid-out box tree and a display list out. Every pass builds its own
// tree, styles, boxes and resource memo; an Engine only carries
// configuration, so one Engine may serve concurrent passes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pinecone/pkg/css"
	"pinecone/pkg/html"
	"pinecone/pkg/layout"
	"pinecone/pkg/paint"
	"pinecone/pkg/resource"
	"pinecone/pkg/snapshot"
	"pinecone/pkg/text"
)

var (
	// ErrPassFailed is returned when a pass panics. The panic is logged with
	// its stack.
	ErrPassFailed = errors.New("engine: pass failed")
	// ErrSurfaceUnavailable is returned by RenderTo for a nil surface or one
	// that rejects the display list.
	ErrSurfaceUnavailable = errors.New("engine: surface unavailable")
	// ErrEmptySnapshot is returned by RenderSnapshot for input with no markup.
	ErrEmptySnapshot = errors.New("engine: empty snapshot")
)

// Surface consumes display lists. render.Canvas is the raster one.
type Surface interface {
	Apply(list paint.DisplayList) error
}

// ScriptRunner executes the scripts of a parsed document against its tree.
// js.Runner implements it.
type ScriptRunner interface {
	Run(ctx context.Context, doc *html.Document) error
}

// Config controls Setup. Zero values take the defaults below.
type Config struct {
	Viewport     layout.Size   // default 800x600
	FetchTimeout time.Duration // default resource.DefaultTimeout
	MetricsScale float64       // default 1

	// BaseURL resolves relative image URLs; BaseDir allows file paths.
	BaseURL string
	BaseDir string

	// LogLevel and LogFormat ("json" or "console") build the logger when
	// Logger is nil. Both empty means no logging.
	LogLevel  string
	LogFormat string
	Logger    *zap.Logger

	// Fetcher replaces the default data:/http/file fetcher.
	Fetcher resource.Fetcher
	// Scripts, if set, is used by RunScripts.
	Scripts ScriptRunner
}

func (c *Config) applyDefaults() {
	if c.Viewport.Width <= 0 && c.Viewport.Height <= 0 {
		c.Viewport = layout.Size{Width: 800, Height: 600}
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = resource.DefaultTimeout
	}
	if c.MetricsScale <= 0 {
		c.MetricsScale = 1
	}
}

// Engine runs passes with a fixed configuration.
type Engine struct {
	cfg     Config
	log     *zap.Logger
	metrics *text.Metrics
	fetcher resource.Fetcher
	scripts ScriptRunner
}

// Result is everything one pass produced.
type Result struct {
	Document *html.Document
	Style    string
	Styles   css.StyleMap
	Box      *layout.Box
	List     paint.DisplayList
}

// Setup validates cfg and builds an Engine. Each call returns an independent
// engine.
func Setup(cfg Config) (*Engine, error) {
	cfg.applyDefaults()
	log, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = resource.NewFetcher(cfg.BaseURL).WithBaseDir(cfg.BaseDir)
	}
	e := &Engine{
		cfg:     cfg,
		log:     log,
		metrics: text.NewMetrics(cfg.MetricsScale),
		fetcher: fetcher,
		scripts: cfg.Scripts,
	}
	log.Debug("engine ready",
		zap.Float64("viewport_width", cfg.Viewport.Width),
		zap.Float64("viewport_height", cfg.Viewport.Height),
		zap.Duration("fetch_timeout", cfg.FetchTimeout))
	return e, nil
}

func buildLogger(cfg Config) (*zap.Logger, error) {
	if cfg.Logger != nil {
		return cfg.Logger, nil
	}
	return NewLogger(cfg.LogLevel, cfg.LogFormat)
}

// NewLogger builds a zap logger. format is "json" (production encoder) or
// "console" (development encoder). Both arguments empty gives a no-op logger.
func NewLogger(level, format string) (*zap.Logger, error) {
	if level == "" && format == "" {
		return zap.NewNop(), nil
	}
	var zc zap.Config
	switch strings.ToLower(format) {
	case "", "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("engine: unknown log format %q", format)
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		zc.Level = lvl
	}
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("engine: build logger: %w", err)
	}
	return log, nil
}

func (e *Engine) Logger() *zap.Logger { return e.log }

// Metrics is the measurer layout uses. Surfaces must draw with it.
func (e *Engine) Metrics() *text.Metrics { return e.metrics }

func (e *Engine) Viewport() layout.Size { return e.cfg.Viewport }

// Render runs one pass over markup and style and returns its display list.
func (e *Engine) Render(markup, style string) (paint.DisplayList, error) {
	return e.RenderContext(context.Background(), markup, style)
}

// RenderContext is Render with a context bounding resource waits.
func (e *Engine) RenderContext(ctx context.Context, markup, style string) (paint.DisplayList, error) {
	res, err := e.Pass(ctx, markup, style)
	if err != nil {
		return nil, err
	}
	return res.List, nil
}

// RenderNode renders an already parsed tree. The tree is not modified.
func (e *Engine) RenderNode(root *html.Node, style string) (paint.DisplayList, error) {
	if root == nil {
		root = html.Parse("")
	}
	res, err := e.PassDocument(context.Background(), &html.Document{Root: root}, style)
	if err != nil {
		return nil, err
	}
	return res.List, nil
}

// RenderSnapshot decodes a stored snapshot and renders it exactly as Render
// would render its markup and stylesheet text.
func (e *Engine) RenderSnapshot(raw []byte) (paint.DisplayList, error) {
	snap, err := snapshot.Decode(raw)
	if errors.Is(err, snapshot.ErrEmpty) {
		return nil, fmt.Errorf("%w: %w", ErrEmptySnapshot, err)
	}
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return e.Render(snap.HTML, snap.CSS)
}

// RenderTo renders markup and style and applies the result to s.
func (e *Engine) RenderTo(s Surface, markup, style string) error {
	if s == nil {
		return ErrSurfaceUnavailable
	}
	list, err := e.Render(markup, style)
	if err != nil {
		return err
	}
	if err := s.Apply(list); err != nil {
		return fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
	}
	return nil
}

// Pass parses markup and runs a full pass. Parsing is covered by the same
// panic recovery as the rest of the pass.
func (e *Engine) Pass(ctx context.Context, markup, style string) (res *Result, err error) {
	defer e.recoverPass(&res, &err)
	return e.pass(ctx, html.ParseDocument(markup), style), nil
}

// PassDocument runs a full pass over doc. Author sheets come from the
// document's <style> and <link> elements in order, then style.
func (e *Engine) PassDocument(ctx context.Context, doc *html.Document, style string) (res *Result, err error) {
	defer e.recoverPass(&res, &err)
	return e.pass(ctx, doc, style), nil
}

func (e *Engine) recoverPass(res **Result, err *error) {
	if r := recover(); r != nil {
		e.log.Error("pass panicked", zap.Any("panic", r), zap.Stack("stack"))
		*res, *err = nil, fmt.Errorf("%w: %v", ErrPassFailed, r)
	}
}

func (e *Engine) pass(ctx context.Context, doc *html.Document, style string) *Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if doc == nil {
		doc = html.ParseDocument("")
	}

	var sheets []*css.Stylesheet
	for _, s := range doc.Styles() {
		sheets = append(sheets, css.ParseStylesheet(s))
	}
	if strings.TrimSpace(style) != "" {
		sheets = append(sheets, css.ParseStylesheet(style))
	}
	styles := css.Resolve(doc.Root, sheets...)

	loader := resource.NewLoader(e.fetcher,
		resource.WithTimeout(e.cfg.FetchTimeout),
		resource.WithLogger(e.log))
	box := layout.Layout(doc.Root, styles, e.cfg.Viewport,
		layout.WithMeasurer(e.metrics),
		layout.WithResources(loader),
		layout.WithLogger(e.log),
		layout.WithContext(ctx))
	list := paint.Paint(box)

	e.log.Debug("pass complete", zap.Int("sheets", len(sheets)), zap.Int("commands", len(list)))
	return &Result{Document: doc, Style: style, Styles: styles, Box: box, List: list}
}

// RunScripts executes the document's scripts with the configured runner and
// runs a second pass over the mutated tree. A script failure is logged and
// the second pass still runs, so the result reflects whatever the scripts
// managed to change. Without a runner res is returned unchanged.
func (e *Engine) RunScripts(ctx context.Context, res *Result) (*Result, error) {
	if e.scripts == nil || res == nil || res.Document == nil {
		return res, nil
	}
	if err := e.scripts.Run(ctx, res.Document); err != nil {
		e.log.Warn("scripts failed", zap.Error(err))
	}
	return e.PassDocument(ctx, res.Document, res.Style)
}
