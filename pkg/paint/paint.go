package paint

import (
	"fmt"

	"pinecone/pkg/css"
	"pinecone/pkg/layout"
	"pinecone/pkg/text"
)

// CommandKind identifies a drawing operation.
type CommandKind int

const (
	FillRect CommandKind = iota
	DrawText
)

func (k CommandKind) String() string {
	switch k {
	case FillRect:
		return "FillRect"
	case DrawText:
		return "DrawText"
	}
	return "Unknown"
}

// DrawCommand is one drawing operation in absolute coordinates. For DrawText,
// Rect is the line-height box of the run and Text/Font describe the glyphs.
type DrawCommand struct {
	Kind  CommandKind
	Rect  layout.Rect
	Color css.Color
	Text  string
	Font  text.Font
}

func (c DrawCommand) String() string {
	if c.Kind == DrawText {
		return fmt.Sprintf("%s %q @(%g,%g) %s", c.Kind, c.Text, c.Rect.X, c.Rect.Y, c.Color)
	}
	return fmt.Sprintf("%s (%g,%g %gx%g) %s", c.Kind, c.Rect.X, c.Rect.Y, c.Rect.Width, c.Rect.Height, c.Color)
}

// DisplayList is the ordered output of one paint pass, back to front.
type DisplayList []DrawCommand

// Count returns how many commands of the given kind the list holds.
func (l DisplayList) Count(kind CommandKind) int {
	n := 0
	for _, c := range l {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Texts returns the text of every DrawText command in order.
func (l DisplayList) Texts() []string {
	var out []string
	for _, c := range l {
		if c.Kind == DrawText {
			out = append(out, c.Text)
		}
	}
	return out
}

// Paint walks the box tree in pre-order and emits, per box, its background,
// its borders and its text, then recurses into its children. Boxes with
// visibility: hidden emit nothing themselves, but their children are still
// visited.
func Paint(root *layout.Box) DisplayList {
	var list DisplayList
	paintBox(&list, root, decorations{})
	return list
}

// decorations are the text decorations in effect for a box's runs: its own
// plus those of every ancestor box.
type decorations struct {
	underline, lineThrough bool
}

func (d decorations) with(st *css.ComputedStyle) decorations {
	if st == nil {
		return d
	}
	switch st.TextDecoration() {
	case css.TextDecorationUnderline:
		d.underline = true
	case css.TextDecorationLineThrough:
		d.lineThrough = true
	}
	return d
}

func paintBox(list *DisplayList, b *layout.Box, inherited decorations) {
	if b == nil {
		return
	}
	deco := inherited.with(b.Style)
	if b.Style != nil && b.Style.Visible() {
		if b.Type == layout.InlineBox && len(b.Fragments) > 0 {
			paintFragments(list, b)
		} else {
			paintBackground(list, b.Style, b.Dimensions.PaddingBox())
			paintBorders(list, b.Style, b.Dimensions, true, true)
		}
		for _, run := range b.Runs {
			paintRun(list, run, deco)
		}
	}
	for _, c := range b.Children {
		paintBox(list, c, deco)
	}
}

// paintFragments paints an inline box split across lines. Every fragment
// gets the top and bottom borders; only the first gets the left border and
// only the last the right one.
func paintFragments(list *DisplayList, b *layout.Box) {
	d := b.Dimensions
	last := len(b.Fragments) - 1
	for i, frag := range b.Fragments {
		first, final := i == 0, i == last
		edges := d
		if !first {
			edges.Border.Left, edges.Padding.Left = 0, 0
		}
		if !final {
			edges.Border.Right, edges.Padding.Right = 0, 0
		}
		// Recover the fragment's content rect from its border box.
		edges.Content = layout.Rect{
			X:      frag.X + edges.Border.Left + edges.Padding.Left,
			Y:      frag.Y + edges.Border.Top + edges.Padding.Top,
			Width:  frag.Width - edges.Border.Left - edges.Padding.Left - edges.Padding.Right - edges.Border.Right,
			Height: frag.Height - edges.Border.Top - edges.Padding.Top - edges.Padding.Bottom - edges.Border.Bottom,
		}
		paintBackground(list, b.Style, edges.PaddingBox())
		paintBorders(list, b.Style, edges, first, final)
	}
}

func paintBackground(list *DisplayList, st *css.ComputedStyle, r layout.Rect) {
	bg := st.BackgroundColor()
	if bg.IsTransparent() || r.Width <= 0 || r.Height <= 0 {
		return
	}
	*list = append(*list, DrawCommand{Kind: FillRect, Rect: r, Color: bg})
}

// paintBorders emits one FillRect per visible side. Top and bottom span the
// full border box; left and right fill the height between them.
func paintBorders(list *DisplayList, st *css.ComputedStyle, d layout.Dimensions, left, right bool) {
	bb := d.BorderBox()
	b := d.Border
	sides := []struct {
		name string
		show bool
		rect layout.Rect
	}{
		{"top", true, layout.Rect{X: bb.X, Y: bb.Y, Width: bb.Width, Height: b.Top}},
		{"right", right, layout.Rect{X: bb.X + bb.Width - b.Right, Y: bb.Y + b.Top, Width: b.Right, Height: bb.Height - b.Top - b.Bottom}},
		{"bottom", true, layout.Rect{X: bb.X, Y: bb.Y + bb.Height - b.Bottom, Width: bb.Width, Height: b.Bottom}},
		{"left", left, layout.Rect{X: bb.X, Y: bb.Y + b.Top, Width: b.Left, Height: bb.Height - b.Top - b.Bottom}},
	}
	for _, s := range sides {
		if !s.show || s.rect.Width <= 0 || s.rect.Height <= 0 {
			continue
		}
		switch st.BorderStyle(s.name) {
		case "", "none", "hidden":
			continue
		}
		c := st.BorderColor(s.name)
		if c.IsTransparent() {
			continue
		}
		*list = append(*list, DrawCommand{Kind: FillRect, Rect: s.rect, Color: c})
	}
}

// paintRun emits the text of a run and its decoration lines. Decorations
// set on ancestor boxes apply to the run as well as its own.
func paintRun(list *DisplayList, run layout.TextRun, deco decorations) {
	st := run.Style
	if st == nil || !st.Visible() || run.Text == "" {
		return
	}
	color := st.Color()
	*list = append(*list, DrawCommand{
		Kind:  DrawText,
		Rect:  run.Rect,
		Color: color,
		Text:  run.Text,
		Font:  run.Font,
	})

	deco = deco.with(st)
	size := run.Font.Size
	thickness := max(size/12, 1)
	top := run.Rect.Y + (run.Rect.Height-size)/2
	line := func(y float64) {
		*list = append(*list, DrawCommand{
			Kind:  FillRect,
			Rect:  layout.Rect{X: run.Rect.X, Y: y, Width: run.Rect.Width, Height: thickness},
			Color: color,
		})
	}
	if deco.underline {
		line(top + size*0.9)
	}
	if deco.lineThrough {
		line(top + size*0.5)
	}
}
