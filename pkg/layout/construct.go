package layout

import (
	"strings"

	"pinecone/pkg/css"
	"pinecone/pkg/html"
	"pinecone/pkg/text"
)

// buildRoot generates the box tree for root. The result is always a
// block-level box so it can be laid out against the viewport. A root that
// produces no box (display:none, non-rendering) yields an empty structural
// box bound to no node.
func (le *LayoutEngine) buildRoot(root *html.Node) *Box {
	box := le.buildBox(root, false)
	if box == nil {
		style := css.DefaultStyle().With("display", "block")
		return &Box{Type: BlockBox, Style: style}
	}
	if box.Type == InlineBox {
		anon := newAnonymousBox(box.Style)
		anon.adopt(box)
		return anon
	}
	return box
}

// buildBox generates the box for one element and its subtree. It returns nil
// for nodes that produce no box: comments, non-rendering elements and
// display:none subtrees. Inside an inline box every element is inline-level.
func (le *LayoutEngine) buildBox(n *html.Node, inInline bool) *Box {
	if n == nil || !n.IsElement() || n.NonRendering {
		return nil
	}
	style := le.styleOf(n)
	display := style.Display()
	if display == css.DisplayNone {
		return nil
	}

	box := &Box{Type: InlineBox, Node: n, Style: style}
	if n.TagName == "img" {
		src, _ := n.Attr("src")
		box.Replaced = &Replaced{Src: strings.TrimSpace(src)}
		return box
	}
	if display == css.DisplayBlock && !inInline {
		box.Type = BlockBox
		le.buildBlockChildren(box)
		return box
	}
	le.buildInlineChildren(box)
	return box
}

// buildBlockChildren gives a block box block-level children only: every
// maximal run of inline boxes and text is wrapped in an anonymous box.
func (le *LayoutEngine) buildBlockChildren(box *Box) {
	var anon *Box
	for _, c := range box.Node.Children {
		switch {
		case c.IsText():
			if anon == nil {
				if isCollapsibleOnly(c.Data) && box.Style.WhiteSpace() == css.WhiteSpaceNormal {
					continue
				}
				anon = newAnonymousBox(box.Style)
				box.Children = append(box.Children, anon)
			}
			anon.content = append(anon.content, content{text: c})
		case c.IsElement():
			child := le.buildBox(c, false)
			if child == nil {
				continue
			}
			if child.Type == BlockBox {
				anon = nil
				box.Children = append(box.Children, child)
				continue
			}
			if anon == nil {
				anon = newAnonymousBox(box.Style)
				box.Children = append(box.Children, anon)
			}
			anon.adopt(child)
		}
	}
}

func (le *LayoutEngine) buildInlineChildren(box *Box) {
	for _, c := range box.Node.Children {
		switch {
		case c.IsText():
			box.content = append(box.content, content{text: c})
		case c.IsElement():
			if child := le.buildBox(c, true); child != nil {
				box.adopt(child)
			}
		}
	}
}

func newAnonymousBox(parent *css.ComputedStyle) *Box {
	return &Box{Type: AnonymousBox, Style: parent.Inherit()}
}

// adopt appends child to both the box list and the inline content sequence.
func (b *Box) adopt(child *Box) {
	b.Children = append(b.Children, child)
	b.content = append(b.content, content{box: child})
}

func isCollapsibleOnly(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !text.IsCollapsible(r) }) < 0
}
