package layout

import (
	"fmt"
	"strings"

	tp "github.com/xlab/treeprint"
)

// Dump renders the box tree as an indented outline, one line per box with
// its type, element, border box and runs.
func Dump(b *Box) string {
	if b == nil {
		return ""
	}
	p := tp.New()
	dumpBox(p, b)
	return p.String()
}

func dumpBox(p tp.Tree, b *Box) {
	label := boxLabel(b)
	if len(b.Children) == 0 && len(b.Runs) == 0 {
		p.AddNode(label)
		return
	}
	branch := p.AddBranch(label)
	for _, r := range b.Runs {
		branch.AddNode(fmt.Sprintf("%q @(%g,%g) w=%g", r.Text, r.Rect.X, r.Rect.Y, r.Rect.Width))
	}
	for _, c := range b.Children {
		dumpBox(branch, c)
	}
}

func boxLabel(b *Box) string {
	var sb strings.Builder
	sb.WriteString(b.Type.String())
	if b.Node != nil {
		sb.WriteString(" <" + b.Node.TagName)
		if id := b.Node.ID(); id != "" {
			sb.WriteString(" #" + id)
		}
		sb.WriteString(">")
	}
	r := b.Dimensions.BorderBox()
	fmt.Fprintf(&sb, " (%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
	if n := len(b.Fragments); n > 1 {
		fmt.Fprintf(&sb, " fragments=%d", n)
	}
	if b.Replaced != nil {
		fmt.Fprintf(&sb, " src=%q", b.Replaced.Src)
	}
	return sb.String()
}
