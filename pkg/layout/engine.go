package layout

import (
	"context"

	"go.uber.org/zap"

	"pinecone/pkg/css"
	"pinecone/pkg/html"
	"pinecone/pkg/resource"
	"pinecone/pkg/text"
)

// LayoutEngine holds the per-pass state of one layout run.
type LayoutEngine struct {
	ctx       context.Context
	viewport  Size
	styles    css.StyleMap
	measurer  text.Measurer
	resources *resource.Loader
	log       *zap.Logger
}

// Option configures a layout pass.
type Option func(*LayoutEngine)

// WithMeasurer sets the text measurer. The default is text.DefaultMetrics.
func WithMeasurer(m text.Measurer) Option {
	return func(le *LayoutEngine) {
		if m != nil {
			le.measurer = m
		}
	}
}

// WithResources sets the loader used for image sizes. Without one, images
// without explicit dimensions lay out at zero size.
func WithResources(l *resource.Loader) Option {
	return func(le *LayoutEngine) { le.resources = l }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(le *LayoutEngine) {
		if log != nil {
			le.log = log.Named("layout")
		}
	}
}

// WithContext bounds the waits on image resources.
func WithContext(ctx context.Context) Option {
	return func(le *LayoutEngine) {
		if ctx != nil {
			le.ctx = ctx
		}
	}
}

// NewLayoutEngine creates an engine for a viewport of the given size.
func NewLayoutEngine(viewport Size, opts ...Option) *LayoutEngine {
	le := &LayoutEngine{
		ctx:      context.Background(),
		viewport: viewport,
		measurer: text.DefaultMetrics,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(le)
	}
	return le
}

// Layout builds and positions the box tree for root. It never fails: nodes
// without a style fall back to defaults and every dimension is clamped at zero.
func Layout(root *html.Node, styles css.StyleMap, viewport Size, opts ...Option) *Box {
	return NewLayoutEngine(viewport, opts...).Layout(root, styles)
}

// Layout builds and positions the box tree for root.
func (le *LayoutEngine) Layout(root *html.Node, styles css.StyleMap) *Box {
	le.styles = styles
	vw := max(le.viewport.Width, 0)
	vh := max(le.viewport.Height, 0)

	box := le.buildRoot(root)
	initial := Dimensions{Content: Rect{Width: vw, Height: vh}}
	le.layoutBlock(box, initial, true)
	le.log.Debug("layout complete",
		zap.Float64("width", box.Dimensions.MarginBox().Width),
		zap.Float64("height", box.Dimensions.MarginBox().Height))
	return box
}

func (le *LayoutEngine) styleOf(n *html.Node) *css.ComputedStyle {
	return le.styles.Of(n)
}
