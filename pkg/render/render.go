package render

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/fogleman/gg"

	"pinecone/pkg/css"
	"pinecone/pkg/paint"
	"pinecone/pkg/text"
)

// ErrNoContext is returned when a canvas has no drawing context behind it.
var ErrNoContext = errors.New("render: canvas has no drawing context")

// italicShear slants glyphs for italic runs.
const italicShear = -0.2

// Canvas applies display lists to an in-memory RGBA image.
type Canvas struct {
	context    *gg.Context
	metrics    *text.Metrics
	background css.Color
}

type Option func(*Canvas)

// WithMetrics draws glyphs with the advances of m. It must match the
// measurer layout used, or text will drift from its runs.
func WithMetrics(m *text.Metrics) Option {
	return func(c *Canvas) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithBackground sets the colour the canvas is cleared to before each list.
func WithBackground(bg css.Color) Option {
	return func(c *Canvas) { c.background = bg }
}

// NewCanvas returns a width x height canvas cleared to white.
func NewCanvas(width, height int, opts ...Option) *Canvas {
	c := &Canvas{
		context:    gg.NewContext(max(width, 0), max(height, 0)),
		metrics:    text.DefaultMetrics,
		background: css.White,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply clears the canvas and executes every command of list in order.
func (c *Canvas) Apply(list paint.DisplayList) error {
	if c == nil || c.context == nil {
		return ErrNoContext
	}
	dc := c.context
	dc.SetColor(c.background)
	dc.Clear()
	for _, cmd := range list {
		switch cmd.Kind {
		case paint.FillRect:
			c.fillRect(cmd)
		case paint.DrawText:
			c.drawText(cmd)
		}
	}
	return nil
}

func (c *Canvas) fillRect(cmd paint.DrawCommand) {
	r := cmd.Rect
	if r.Width <= 0 || r.Height <= 0 || cmd.Color.IsTransparent() {
		return
	}
	c.context.SetColor(cmd.Color)
	c.context.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	c.context.Fill()
}

// drawText sets the glyphs of a run one by one, advancing by the same widths
// the measurer reported so the painted text covers exactly the run's rect.
// The glyph table is drawn at its native size under a scale transform.
func (c *Canvas) drawText(cmd paint.DrawCommand) {
	f := cmd.Font
	if f.Size <= 0 || cmd.Text == "" {
		return
	}
	m := c.metrics
	k := f.Size / m.FaceHeight() * m.Scale()
	top := cmd.Rect.Y + (cmd.Rect.Height-f.Size)/2

	dc := c.context
	dc.Push()
	defer dc.Pop()
	dc.SetFontFace(m.Face())
	dc.SetColor(cmd.Color)
	dc.Translate(cmd.Rect.X, top)
	dc.Scale(k, f.Size/m.FaceHeight())
	if f.Italic {
		dc.ShearAbout(italicShear, 0, 0, m.Ascent(m.FaceHeight()))
	}

	baseline := m.Ascent(m.FaceHeight())
	native := text.Font{Size: m.FaceHeight(), Bold: f.Bold}
	x := 0.0
	for _, r := range cmd.Text {
		g := string(r)
		dc.DrawString(g, x, baseline)
		if f.Bold {
			dc.DrawString(g, x+1, baseline)
		}
		x += m.Width(g, native) / m.Scale()
	}
}

// Image returns the canvas pixels.
func (c *Canvas) Image() image.Image {
	if c == nil || c.context == nil {
		return nil
	}
	return c.context.Image()
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (width, height int) {
	if c == nil || c.context == nil {
		return 0, 0
	}
	return c.context.Width(), c.context.Height()
}

// SavePNG writes the canvas to a PNG file.
func (c *Canvas) SavePNG(filename string) error {
	if c == nil || c.context == nil {
		return ErrNoContext
	}
	return c.context.SavePNG(filename)
}

// EncodePNG writes the canvas to w as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if c == nil || c.context == nil {
		return ErrNoContext
	}
	return png.Encode(w, c.context.Image())
}
