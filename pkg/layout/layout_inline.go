package layout

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"pinecone/pkg/css"
	"pinecone/pkg/html"
	"pinecone/pkg/text"
)

// Inline layout runs in three phases over an anonymous box:
//
//  1. collect flattens the inline content into pieces: words, the open and
//     close edges of inline boxes, and atomic images;
//  2. breakLines groups pieces into segments that cannot be split and fills
//     lines left to right;
//  3. place assigns absolute positions, producing text runs, inline
//     fragments and image boxes.

type pieceKind int

const (
	pieceWord pieceKind = iota
	pieceOpen
	pieceClose
	pieceAtomic
)

type piece struct {
	kind       pieceKind
	box        *Box // the inline box of an edge or atomic piece
	owner      *Box // the box whose Runs receive a word
	node       *html.Node
	style      *css.ComputedStyle
	text       string
	font       text.Font
	width      float64
	height     float64 // line height contribution
	space      bool    // preceded by collapsible whitespace
	spaceWidth float64
	breakable  bool // a line may end before this piece

	// ancestors are the inline boxes enclosing the piece, outermost first.
	ancestors []*Box
}

type segment struct {
	pieces []*piece
	width  float64
}

type line struct {
	pieces []placedPiece
	width  float64
	height float64
}

type placedPiece struct {
	*piece
	x float64 // offset from the line start
}

type span struct{ x0, x1 float64 }

// inlineContext is the state of one inline formatting context.
type inlineContext struct {
	le      *LayoutEngine
	anon    *Box
	cbWidth float64

	pieces       []*piece
	stack        []*Box
	pendingSpace bool

	inlines   []*Box // inline boxes in open order
	fragments map[*Box]map[int]*span
	lastRun   map[*Box]runKey
}

type runKey struct {
	line int
	node *html.Node
}

// layoutInline lays out the content of an anonymous box and sets its content
// height to the sum of its line heights.
func (le *LayoutEngine) layoutInline(anon *Box) {
	ic := &inlineContext{
		le:        le,
		anon:      anon,
		cbWidth:   anon.Dimensions.Content.Width,
		fragments: make(map[*Box]map[int]*span),
		lastRun:   make(map[*Box]runKey),
	}
	ic.collect(anon, anon.content)
	lines := ic.breakLines(anon.Dimensions.Content.Width)
	ic.place(lines)
}

// collect flattens items into pieces.
func (ic *inlineContext) collect(owner *Box, items []content) {
	for _, it := range items {
		if it.text != nil {
			ic.addText(owner, it.text)
			continue
		}
		b := it.box
		if b.Replaced != nil {
			ic.addAtomic(b)
			continue
		}
		ic.open(b)
		ic.stack = append(ic.stack, b)
		ic.collect(b, b.content)
		ic.stack = ic.stack[:len(ic.stack)-1]
		ic.close(b)
	}
}

func (ic *inlineContext) ancestors() []*Box {
	return append([]*Box(nil), ic.stack...)
}

// contextStyle is the style governing breaks between pieces at the current
// nesting level.
func (ic *inlineContext) contextStyle() *css.ComputedStyle {
	if n := len(ic.stack); n > 0 {
		return ic.stack[n-1].Style
	}
	return ic.anon.Style
}

func (ic *inlineContext) addText(owner *Box, node *html.Node) {
	data := node.Data
	if data == "" {
		return
	}
	style := ic.le.styleOf(node)
	font := fontOf(style)
	nowrap := style.WhiteSpace() == css.WhiteSpaceNowrap
	spaceWidth := ic.le.measurer.Width(" ", font)

	if first, _ := utf8.DecodeRuneInString(data); text.IsCollapsible(first) {
		ic.pendingSpace = true
	}
	for i, word := range text.Words(data) {
		space := ic.pendingSpace || i > 0
		ic.pendingSpace = false
		ic.pieces = append(ic.pieces, &piece{
			kind:       pieceWord,
			owner:      owner,
			node:       node,
			style:      style,
			text:       word,
			font:       font,
			width:      ic.le.measurer.Width(word, font),
			height:     style.LineHeight(),
			space:      space,
			spaceWidth: spaceWidth,
			breakable:  space && !nowrap,
			ancestors:  ic.ancestors(),
		})
	}
	if last, _ := utf8.DecodeLastRuneInString(data); text.IsCollapsible(last) {
		ic.pendingSpace = true
	}
}

func (ic *inlineContext) open(b *Box) {
	ic.resolveInlineEdges(b)
	d := b.Dimensions
	parent := ic.contextStyle()
	ic.inlines = append(ic.inlines, b)
	ic.pieces = append(ic.pieces, &piece{
		kind:       pieceOpen,
		box:        b,
		style:      b.Style,
		width:      d.Margin.Left + d.Border.Left + d.Padding.Left,
		height:     b.Style.LineHeight(),
		space:      ic.pendingSpace,
		spaceWidth: ic.le.measurer.Width(" ", fontOf(parent)),
		breakable:  ic.pendingSpace && parent.WhiteSpace() != css.WhiteSpaceNowrap,
		ancestors:  ic.ancestors(),
	})
	ic.pendingSpace = false
}

func (ic *inlineContext) close(b *Box) {
	d := b.Dimensions
	ic.pieces = append(ic.pieces, &piece{
		kind:      pieceClose,
		box:       b,
		style:     b.Style,
		width:     d.Padding.Right + d.Border.Right + d.Margin.Right,
		height:    b.Style.LineHeight(),
		ancestors: ic.ancestors(),
	})
}

func (ic *inlineContext) addAtomic(b *Box) {
	ic.resolveInlineEdges(b)
	ic.le.sizeReplaced(b, ic.cbWidth)
	mb := b.Dimensions.MarginBox()
	parent := ic.contextStyle()
	ic.pieces = append(ic.pieces, &piece{
		kind:       pieceAtomic,
		box:        b,
		style:      b.Style,
		width:      mb.Width,
		height:     mb.Height,
		space:      ic.pendingSpace,
		spaceWidth: ic.le.measurer.Width(" ", fontOf(parent)),
		breakable:  parent.WhiteSpace() != css.WhiteSpaceNowrap,
		ancestors:  ic.ancestors(),
	})
	ic.pendingSpace = false
}

// resolveInlineEdges resolves padding, borders and margins of an inline-level
// box. Percentages refer to the width of the anonymous box; auto margins are 0.
func (ic *inlineContext) resolveInlineEdges(b *Box) {
	st := b.Style
	d := &b.Dimensions
	cbw := ic.cbWidth
	m, p, bw := st.Margin(), st.Padding(), st.BorderWidth()
	d.Margin = EdgeSizes{
		Top:    nonNegative(m.Top.Resolve(cbw)),
		Right:  nonNegative(m.Right.Resolve(cbw)),
		Bottom: nonNegative(m.Bottom.Resolve(cbw)),
		Left:   nonNegative(m.Left.Resolve(cbw)),
	}
	d.Padding = EdgeSizes{
		Top:    nonNegative(p.Top.Resolve(cbw)),
		Right:  nonNegative(p.Right.Resolve(cbw)),
		Bottom: nonNegative(p.Bottom.Resolve(cbw)),
		Left:   nonNegative(p.Left.Resolve(cbw)),
	}
	d.Border = EdgeSizes{
		Top:    nonNegative(bw.Top),
		Right:  nonNegative(bw.Right),
		Bottom: nonNegative(bw.Bottom),
		Left:   nonNegative(bw.Left),
	}
}

// segments groups pieces so that a segment only ever starts at a break
// opportunity.
func (ic *inlineContext) segments() []segment {
	var segs []segment
	for i, p := range ic.pieces {
		if i == 0 || p.breakable {
			segs = append(segs, segment{})
		}
		s := &segs[len(segs)-1]
		if len(s.pieces) > 0 && p.space {
			s.width += p.spaceWidth
		}
		s.pieces = append(s.pieces, p)
		s.width += p.width
	}
	return segs
}

// breakLines fills lines of the given width. A segment that would overflow
// starts a new line unless the current line is empty, so an oversized word
// sits alone on its own line. Spaces at the start of a line are dropped.
func (ic *inlineContext) breakLines(avail float64) []*line {
	var lines []*line
	cur := &line{}
	for _, s := range ic.segments() {
		first := s.pieces[0]
		lead := 0.0
		if first.space && len(cur.pieces) > 0 {
			lead = first.spaceWidth
		}
		if len(cur.pieces) > 0 && first.breakable && cur.width+lead+s.width > avail {
			lines = append(lines, cur)
			cur = &line{}
			lead = 0
		}
		x := cur.width + lead
		for j, p := range s.pieces {
			if j > 0 && p.space {
				x += p.spaceWidth
			}
			cur.pieces = append(cur.pieces, placedPiece{piece: p, x: x})
			x += p.width
			cur.height = max(cur.height, p.height)
		}
		cur.width = x
	}
	if len(cur.pieces) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// place positions every piece and records the results on the boxes.
func (ic *inlineContext) place(lines []*line) {
	anon := ic.anon
	area := anon.Dimensions.Content
	y := area.Y
	for li, ln := range lines {
		offset := 0.0
		if free := area.Width - ln.width; free > 0 {
			switch anon.Style.TextAlign() {
			case css.TextAlignCenter:
				offset = free / 2
			case css.TextAlignRight:
				offset = free
			}
		}
		lineRect := Rect{X: area.X + offset, Y: y, Width: ln.width, Height: ln.height}
		anon.Lines = append(anon.Lines, lineRect)
		for _, pp := range ln.pieces {
			ic.placePiece(pp.piece, li, lineRect, lineRect.X+pp.x)
		}
		y += ln.height
	}
	anon.Dimensions.Content.Height = y - area.Y
	ic.finishInlineBoxes(anon.Lines)
}

func (ic *inlineContext) placePiece(p *piece, li int, lineRect Rect, x float64) {
	for _, a := range p.ancestors {
		ic.extend(a, li, x, x+p.width)
	}
	switch p.kind {
	case pieceWord:
		ic.addRun(p, li, lineRect, x)
	case pieceOpen:
		ic.extend(p.box, li, x+p.box.Dimensions.Margin.Left, x+p.width)
	case pieceClose:
		ic.extend(p.box, li, x, x+p.width-p.box.Dimensions.Margin.Right)
	case pieceAtomic:
		d := &p.box.Dimensions
		d.Content.X = x + d.Margin.Left + d.Border.Left + d.Padding.Left
		top := lineRect.Y + lineRect.Height - p.height
		d.Content.Y = top + d.Margin.Top + d.Border.Top + d.Padding.Top
	}
}

// addRun appends a word to its owner's runs, merging it into the previous
// run when both come from the same text node on the same line.
func (ic *inlineContext) addRun(p *piece, li int, lineRect Rect, x float64) {
	owner := p.owner
	key := runKey{line: li, node: p.node}
	if last, ok := ic.lastRun[owner]; ok && last == key && len(owner.Runs) > 0 {
		run := &owner.Runs[len(owner.Runs)-1]
		if p.space {
			run.Text += " "
		}
		run.Text += p.text
		run.Rect.Width = x + p.width - run.Rect.X
		return
	}
	ic.lastRun[owner] = key
	owner.Runs = append(owner.Runs, TextRun{
		Text:  p.text,
		Rect:  Rect{X: x, Y: lineRect.Y + (lineRect.Height-p.height)/2, Width: p.width, Height: p.height},
		Font:  p.font,
		Style: p.style,
		Node:  p.node,
	})
}

func (ic *inlineContext) extend(b *Box, li int, x0, x1 float64) {
	if x1 < x0 {
		x1 = x0
	}
	lines := ic.fragments[b]
	if lines == nil {
		lines = make(map[int]*span)
		ic.fragments[b] = lines
	}
	s, ok := lines[li]
	if !ok {
		lines[li] = &span{x0: x0, x1: x1}
		return
	}
	s.x0 = min(s.x0, x0)
	s.x1 = max(s.x1, x1)
}

// finishInlineBoxes turns the horizontal spans of each inline box into one
// border-box fragment per line and a bounding content rect.
func (ic *inlineContext) finishInlineBoxes(lineRects []Rect) {
	for _, b := range ic.inlines {
		d := &b.Dimensions
		lh := b.Style.LineHeight()
		var bounds Rect
		for li, lr := range lineRects {
			s, ok := ic.fragments[b][li]
			if !ok {
				continue
			}
			top := lr.Y + (lr.Height-lh)/2 - d.Padding.Top - d.Border.Top
			frag := Rect{
				X:      s.x0,
				Y:      top,
				Width:  s.x1 - s.x0,
				Height: lh + d.Padding.Top + d.Padding.Bottom + d.Border.Top + d.Border.Bottom,
			}
			b.Fragments = append(b.Fragments, frag)
			bounds = bounds.union(frag)
		}
		d.Content = Rect{
			X:      bounds.X + d.Border.Left + d.Padding.Left,
			Y:      bounds.Y + d.Border.Top + d.Padding.Top,
			Width:  nonNegative(bounds.Width - d.Border.Left - d.Padding.Left - d.Padding.Right - d.Border.Right),
			Height: nonNegative(bounds.Height - d.Border.Top - d.Padding.Top - d.Padding.Bottom - d.Border.Bottom),
		}
	}
}

// sizeReplaced resolves the content size of an image from CSS, then the
// width/height attributes, then its intrinsic size. With one dimension given
// the other keeps the intrinsic aspect ratio.
func (le *LayoutEngine) sizeReplaced(b *Box, cbWidth float64) {
	st := b.Style
	width, haveW := 0.0, false
	if w := st.Width(); !w.IsAuto() && !w.IsNone() {
		width, haveW = w.Resolve(cbWidth), true
	} else if v, ok := attrPixels(b.Node, "width"); ok {
		width, haveW = v, true
	}
	height, haveH := 0.0, false
	if h := st.Height(); h.Unit == css.UnitPx || h.Unit == css.UnitEm {
		height, haveH = h.Resolve(0), true
	} else if v, ok := attrPixels(b.Node, "height"); ok {
		height, haveH = v, true
	}

	if !haveW || !haveH {
		le.loadReplaced(b)
		iw := float64(b.Replaced.IntrinsicWidth)
		ih := float64(b.Replaced.IntrinsicHeight)
		switch {
		case !haveW && !haveH:
			width, height = iw, ih
		case !haveW:
			width = iw
			if ih > 0 {
				width = height * iw / ih
			}
		default:
			height = ih
			if iw > 0 {
				height = width * ih / iw
			}
		}
	}
	b.Dimensions.Content.Width = nonNegative(width)
	b.Dimensions.Content.Height = nonNegative(height)
}

func (le *LayoutEngine) loadReplaced(b *Box) {
	r := b.Replaced
	if r.Src == "" {
		return
	}
	if le.resources == nil {
		le.log.Debug("no resource loader, image has no intrinsic size", zap.String("src", r.Src))
		return
	}
	img := le.resources.Load(le.ctx, r.Src)
	r.IntrinsicWidth, r.IntrinsicHeight, r.Err = img.Width, img.Height, img.Err
}

func attrPixels(n *html.Node, name string) (float64, bool) {
	if n == nil {
		return 0, false
	}
	v, ok := n.Attr(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil || f < 0 || f != f {
		return 0, false
	}
	return f, true
}

func fontOf(st *css.ComputedStyle) text.Font {
	return text.Font{
		Size:   st.FontSize(),
		Bold:   st.FontWeight() == css.FontWeightBold,
		Italic: st.FontStyle() == css.FontStyleItalic,
		Family: st.FontFamily(),
	}
}
