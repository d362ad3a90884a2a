package layout

import (
	"pinecone/pkg/css"
)

// layoutBlock lays out a block-level box (block or anonymous) whose margin
// box starts at y inside the containing block's content rect cb. cbDefinite
// reports whether cb.Height can resolve percentage heights.
func (le *LayoutEngine) layoutBlock(b *Box, cb Dimensions, cbDefinite bool) {
	le.layoutBlockAt(b, cb.Content, cbDefinite, cb.Content.Y)
}

func (le *LayoutEngine) layoutBlockAt(b *Box, cb Rect, cbDefinite bool, y float64) {
	le.calculateWidth(b, cb.Width)
	le.calculatePosition(b, cb, y)

	height, definite := specifiedHeight(b.Style, cb.Height, cbDefinite)
	if b.Type == AnonymousBox {
		le.layoutInline(b)
	} else {
		le.layoutBlockChildren(b, height, definite)
	}
	if definite {
		b.Dimensions.Content.Height = height
	}
	b.Dimensions.Content.Height = clampHeight(b.Style, b.Dimensions.Content.Height, cb.Height, cbDefinite)
}

// layoutBlockChildren stacks the children vertically. Margins do not
// collapse: each child starts below the previous child's margin box.
func (le *LayoutEngine) layoutBlockChildren(b *Box, height float64, definite bool) {
	d := &b.Dimensions
	cb := d.Content
	cb.Height = height
	cursor := d.Content.Y
	for _, child := range b.Children {
		le.layoutBlockAt(child, cb, definite, cursor)
		cursor += child.Dimensions.MarginBox().Height
	}
	d.Content.Height = nonNegative(cursor - d.Content.Y)
}

// calculateWidth resolves the horizontal box model of a block-level box
// against the containing block width.
func (le *LayoutEngine) calculateWidth(b *Box, cbWidth float64) {
	st := b.Style
	d := &b.Dimensions
	margin := st.Margin()
	padding := st.Padding()
	border := st.BorderWidth()

	d.Padding.Left = nonNegative(padding.Left.Resolve(cbWidth))
	d.Padding.Right = nonNegative(padding.Right.Resolve(cbWidth))
	d.Border.Left = nonNegative(border.Left)
	d.Border.Right = nonNegative(border.Right)
	edges := d.Padding.Left + d.Padding.Right + d.Border.Left + d.Border.Right

	width := st.Width()
	if b.Type == AnonymousBox {
		width = css.Auto
	}
	w, ml, mr := solveWidth(width, margin.Left, margin.Right, edges, cbWidth)

	if maxW := st.MaxWidth(); !maxW.IsNone() && !maxW.IsAuto() {
		if limit := nonNegative(maxW.Resolve(cbWidth)); w > limit {
			w, ml, mr = solveWidth(css.Px(limit), margin.Left, margin.Right, edges, cbWidth)
		}
	}
	if minW := st.MinWidth(); !minW.IsAuto() && !minW.IsNone() {
		if limit := nonNegative(minW.Resolve(cbWidth)); w < limit {
			w, ml, mr = solveWidth(css.Px(limit), margin.Left, margin.Right, edges, cbWidth)
		}
	}

	d.Content.Width = w
	d.Margin.Left = ml
	d.Margin.Right = mr
}

// solveWidth satisfies
//
//	margin-left + edges + width + margin-right = containing width
//
// filling auto width first, then centering between two auto margins, and
// otherwise letting margin-right absorb the difference. Results are clamped
// at zero, so an overflowing box simply sticks out of its container.
func solveWidth(width, marginLeft, marginRight css.Length, edges, cbWidth float64) (w, ml, mr float64) {
	autoW, autoL, autoR := width.IsAuto(), marginLeft.IsAuto(), marginRight.IsAuto()
	w = nonNegative(width.Resolve(cbWidth))
	ml = nonNegative(marginLeft.Resolve(cbWidth))
	mr = nonNegative(marginRight.Resolve(cbWidth))

	underflow := cbWidth - (ml + mr + edges + w)
	switch {
	case autoW:
		if underflow >= 0 {
			w = underflow
		} else {
			mr += underflow
		}
	case autoL && autoR:
		ml, mr = underflow/2, underflow/2
	case autoL:
		ml = underflow
	case autoR:
		mr = underflow
	default:
		mr += underflow
	}
	return nonNegative(w), nonNegative(ml), nonNegative(mr)
}

// calculatePosition resolves the vertical edges and places the content box.
func (le *LayoutEngine) calculatePosition(b *Box, cb Rect, y float64) {
	st := b.Style
	d := &b.Dimensions
	margin := st.Margin()
	padding := st.Padding()
	border := st.BorderWidth()

	d.Margin.Top = nonNegative(margin.Top.Resolve(cb.Width))
	d.Margin.Bottom = nonNegative(margin.Bottom.Resolve(cb.Width))
	d.Padding.Top = nonNegative(padding.Top.Resolve(cb.Width))
	d.Padding.Bottom = nonNegative(padding.Bottom.Resolve(cb.Width))
	d.Border.Top = nonNegative(border.Top)
	d.Border.Bottom = nonNegative(border.Bottom)

	d.Content.X = cb.X + d.Margin.Left + d.Border.Left + d.Padding.Left
	d.Content.Y = y + d.Margin.Top + d.Border.Top + d.Padding.Top
}

// specifiedHeight returns the explicit content height of a box, if it has
// one. Percentages need a definite containing block height.
func specifiedHeight(st *css.ComputedStyle, cbHeight float64, cbDefinite bool) (float64, bool) {
	h := st.Height()
	switch h.Unit {
	case css.UnitPx, css.UnitEm:
		return nonNegative(h.Resolve(0)), true
	case css.UnitPercent:
		if cbDefinite {
			return nonNegative(h.Resolve(cbHeight)), true
		}
	}
	return 0, false
}

func clampHeight(st *css.ComputedStyle, h, cbHeight float64, cbDefinite bool) float64 {
	if maxH := st.MaxHeight(); resolvableHeight(maxH, cbDefinite) {
		h = min(h, nonNegative(maxH.Resolve(cbHeight)))
	}
	if minH := st.MinHeight(); resolvableHeight(minH, cbDefinite) {
		h = max(h, nonNegative(minH.Resolve(cbHeight)))
	}
	return nonNegative(h)
}

func resolvableHeight(l css.Length, cbDefinite bool) bool {
	switch l.Unit {
	case css.UnitPx, css.UnitEm:
		return true
	case css.UnitPercent:
		return cbDefinite
	}
	return false
}

func nonNegative(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	return v
}
