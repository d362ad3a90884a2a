package layout

import (
	"pinecone/pkg/css"
	"pinecone/pkg/html"
	"pinecone/pkg/text"
)

// BoxType distinguishes the kinds of boxes in the layout tree.
type BoxType int

const (
	BlockBox     BoxType = iota // block-level element
	InlineBox                   // inline-level element
	AnonymousBox                // block wrapper around a run of inline content
)

func (t BoxType) String() string {
	switch t {
	case BlockBox:
		return "block"
	case InlineBox:
		return "inline"
	case AnonymousBox:
		return "anonymous"
	}
	return "unknown"
}

// Rect represents a rectangular region
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// expand grows r by the given edges.
func (r Rect) expand(e EdgeSizes) Rect {
	return Rect{
		X:      r.X - e.Left,
		Y:      r.Y - e.Top,
		Width:  r.Width + e.Left + e.Right,
		Height: r.Height + e.Top + e.Bottom,
	}
}

// union returns the smallest rect containing r and o. A zero rect is the
// identity.
func (r Rect) union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1 := max(r.X+r.Width, o.X+o.Width)
	y1 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// EdgeSizes holds one value per side.
type EdgeSizes struct {
	Top, Right, Bottom, Left float64
}

// Size represents dimensions (width and height)
type Size struct {
	Width  float64
	Height float64
}

// Dimensions is the CSS box model of one box. Content is in absolute
// coordinates; the other edges surround it.
type Dimensions struct {
	Content Rect
	Padding EdgeSizes
	Border  EdgeSizes
	Margin  EdgeSizes
}

// PaddingBox is the content area plus padding.
func (d Dimensions) PaddingBox() Rect { return d.Content.expand(d.Padding) }

// BorderBox is the content area plus padding and borders.
func (d Dimensions) BorderBox() Rect { return d.PaddingBox().expand(d.Border) }

// MarginBox is the content area plus padding, borders and margins.
func (d Dimensions) MarginBox() Rect { return d.BorderBox().expand(d.Margin) }

// TextRun is a stretch of text from one text node placed on one line.
type TextRun struct {
	Text  string
	Rect  Rect // Width is the measured advance, Height the line height
	Font  text.Font
	Style *css.ComputedStyle
	Node  *html.Node
}

// Replaced describes the content of a replaced element.
type Replaced struct {
	Src             string
	IntrinsicWidth  int
	IntrinsicHeight int
	Err             error // non-nil when the image could not be loaded
}

// Box is one node of the layout tree.
type Box struct {
	Type       BoxType
	Node       *html.Node // nil for anonymous boxes
	Style      *css.ComputedStyle
	Dimensions Dimensions
	Children   []*Box

	// Runs holds the text this box directly contains, in line order.
	Runs []TextRun

	// Fragments holds one border-box rect per line an inline box touches.
	Fragments []Rect

	Replaced *Replaced

	// Lines holds the line boxes of an anonymous box.
	Lines []Rect

	// content is the inline-level content in document order: child boxes
	// interleaved with the text nodes that become Runs.
	content []content
}

type content struct {
	box  *Box
	text *html.Node
}

// IsInlineLevel reports whether b participates in an inline formatting
// context.
func (b *Box) IsInlineLevel() bool { return b.Type == InlineBox }

// Walk visits b and its descendants in pre-order.
func (b *Box) Walk(fn func(*Box)) {
	if b == nil {
		return
	}
	fn(b)
	for _, c := range b.Children {
		c.Walk(fn)
	}
}
