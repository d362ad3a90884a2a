package paint

import (
	"reflect"
	"testing"

	"pinecone/pkg/css"
	"pinecone/pkg/html"
	"pinecone/pkg/layout"
)

const baseCSS = `html { font-size: 13px; line-height: 20px } `

func paintMarkup(t *testing.T, markup, style string) DisplayList {
	t.Helper()
	root := html.Parse(markup)
	styles := css.Resolve(root, css.ParseStylesheet(baseCSS+style))
	box := layout.Layout(root, styles, layout.Size{Width: 400, Height: 300})
	return Paint(box)
}

func fills(list DisplayList) []DrawCommand {
	var out []DrawCommand
	for _, c := range list {
		if c.Kind == FillRect {
			out = append(out, c)
		}
	}
	return out
}

func TestPaint_DisplayNoneEmitsNothing(t *testing.T) {
	list := paintMarkup(t, `<div class="none"><p>x</p></div><span>y</span>`, `.none { display: none }`)
	if len(list) != 1 {
		t.Fatalf("expected exactly one command, got %v", list)
	}
	c := list[0]
	if c.Kind != DrawText || c.Text != "y" {
		t.Errorf("expected DrawText \"y\", got %s", c)
	}
	if c.Rect.X != 0 || c.Rect.Y != 0 {
		t.Errorf("expected the text at the origin, got (%v, %v)", c.Rect.X, c.Rect.Y)
	}
	if c.Color != css.Black {
		t.Errorf("expected black text, got %s", c.Color)
	}
}

func TestPaint_EmptyDocument(t *testing.T) {
	if list := paintMarkup(t, ``, ""); len(list) != 0 {
		t.Errorf("expected an empty list, got %v", list)
	}
	if list := Paint(nil); len(list) != 0 {
		t.Errorf("Paint(nil) should be empty, got %v", list)
	}
}

func TestPaint_BackgroundCoversPaddingBox(t *testing.T) {
	list := paintMarkup(t, `<div id="a"></div>`, `#a { margin: 10px; padding: 5px; height: 10px; width: 100px; background-color: red }`)
	want := DisplayList{{Kind: FillRect, Rect: layout.Rect{X: 10, Y: 10, Width: 110, Height: 20}, Color: css.Color{R: 255, A: 255}}}
	if !reflect.DeepEqual(list, want) {
		t.Errorf("got %v, want %v", list, want)
	}
}

func TestPaint_TransparentBackgroundSkipped(t *testing.T) {
	list := paintMarkup(t, `<div></div>`, `div { height: 10px; background-color: transparent }`)
	if len(list) != 0 {
		t.Errorf("expected no commands, got %v", list)
	}
}

func TestPaint_Borders(t *testing.T) {
	tests := []struct {
		name  string
		style string
		rects []layout.Rect
	}{
		{
			name:  "all sides",
			style: `border: 2px solid blue`,
			rects: []layout.Rect{
				{X: 0, Y: 0, Width: 14, Height: 2},
				{X: 12, Y: 2, Width: 2, Height: 10},
				{X: 0, Y: 12, Width: 14, Height: 2},
				{X: 0, Y: 2, Width: 2, Height: 10},
			},
		},
		{
			name:  "one side",
			style: `border-left: 3px solid blue`,
			rects: []layout.Rect{{X: 0, Y: 0, Width: 3, Height: 10}},
		},
		{
			name:  "style none",
			style: `border: 2px none blue`,
		},
		{
			name:  "transparent colour",
			style: `border: 2px solid transparent`,
		},
		{
			name:  "zero width",
			style: `border: 0 solid blue`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := paintMarkup(t, `<div id="a"></div>`, `#a { width: 10px; height: 10px; `+tt.style+` }`)
			var got []layout.Rect
			for _, c := range fills(list) {
				got = append(got, c.Rect)
			}
			if !reflect.DeepEqual(got, tt.rects) {
				t.Errorf("border rects = %v, want %v", got, tt.rects)
			}
		})
	}
}

func TestPaint_PreOrder(t *testing.T) {
	list := paintMarkup(t, `<div id="outer">a<div id="inner">b</div></div>`,
		`#outer { background-color: red } #inner { background-color: lime }`)
	var order []string
	for _, c := range list {
		switch {
		case c.Kind == DrawText:
			order = append(order, c.Text)
		case c.Color.R == 255:
			order = append(order, "outer")
		default:
			order = append(order, "inner")
		}
	}
	want := []string{"outer", "a", "inner", "b"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("paint order = %v, want %v", order, want)
	}
}

func TestPaint_HiddenBoxStillPaintsChildren(t *testing.T) {
	list := paintMarkup(t, `<div id="h">gone<p id="v">seen</p></div>`,
		`#h { visibility: hidden; background-color: red } #v { visibility: visible }`)
	if got := list.Texts(); !reflect.DeepEqual(got, []string{"seen"}) {
		t.Errorf("texts = %v, want [seen]", got)
	}
	if n := list.Count(FillRect); n != 0 {
		t.Errorf("hidden box should not paint its background, got %d fills", n)
	}
}

func TestPaint_TextDecoration(t *testing.T) {
	list := paintMarkup(t, `<u>ab</u>-<s>cd</s>`, "")
	if got := list.Texts(); !reflect.DeepEqual(got, []string{"-", "ab", "cd"}) {
		t.Fatalf("texts = %v", got)
	}
	lines := fills(list)
	if len(lines) != 2 {
		t.Fatalf("expected two decoration lines, got %v", lines)
	}
	under, through := lines[0].Rect, lines[1].Rect
	if under.X != 0 || under.Width != 14 || under.Height != 13.0/12 {
		t.Errorf("underline rect = %+v", under)
	}
	if through.X != 21 || through.Width != 14 {
		t.Errorf("line-through rect = %+v", through)
	}
	if through.Y >= under.Y {
		t.Errorf("line-through (y=%v) should sit above the underline (y=%v)", through.Y, under.Y)
	}
}

func TestPaint_TextDecorationPropagates(t *testing.T) {
	list := paintMarkup(t, `<u>a<b>bc</b></u>`, "")
	if got := list.Texts(); !reflect.DeepEqual(got, []string{"a", "bc"}) {
		t.Fatalf("texts = %v", got)
	}
	lines := fills(list)
	if len(lines) != 2 {
		t.Fatalf("expected an underline under both runs, got %v", lines)
	}
	if lines[0].Rect.X != 0 || lines[1].Rect.X <= lines[0].Rect.X {
		t.Errorf("underlines out of place: %+v %+v", lines[0].Rect, lines[1].Rect)
	}
	if lines[0].Rect.Y != lines[1].Rect.Y {
		t.Errorf("underlines at different heights: %v and %v", lines[0].Rect.Y, lines[1].Rect.Y)
	}

	list = paintMarkup(t, `<u><s>x</s></u>`, "")
	if n := len(fills(list)); n != 2 {
		t.Errorf("nested underline and line-through: got %d lines, want 2", n)
	}

	list = paintMarkup(t, `<div style="text-decoration: underline">a</div>`, "")
	if n := len(fills(list)); n != 1 {
		t.Errorf("block decoration: got %d lines, want 1", n)
	}
}

func TestPaint_InlineFragments(t *testing.T) {
	list := paintMarkup(t, `<div style="width: 70px"><span>aaaa bbbb cccc</span></div>`,
		`span { background-color: yellow; border-left: 2px solid red; border-right: 2px solid red }`)
	var bgs, borders int
	for _, c := range fills(list) {
		if c.Color.B == 0 && c.Color.G == 255 {
			bgs++
		} else {
			borders++
		}
	}
	if bgs != 2 {
		t.Errorf("expected one background per fragment, got %d", bgs)
	}
	if borders != 2 {
		t.Errorf("expected the left border on the first fragment and the right on the last, got %d", borders)
	}
}

func TestPaint_Deterministic(t *testing.T) {
	markup := `<div style="border: 1px solid; padding: 2px">hello <b>world</b> <u>again</u></div>`
	first := paintMarkup(t, markup, "")
	for i := 0; i < 3; i++ {
		if again := paintMarkup(t, markup, ""); !reflect.DeepEqual(first, again) {
			t.Fatalf("paint differs between runs:\n%v\n%v", first, again)
		}
	}
}

func TestCommandKind_String(t *testing.T) {
	if FillRect.String() != "FillRect" || DrawText.String() != "DrawText" || CommandKind(9).String() != "Unknown" {
		t.Error("unexpected command kind names")
	}
}
