package css

import "testing"

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want Length
		ok   bool
	}{
		{"100px", Px(100), true},
		{"100", Px(100), true},
		{" 12.5PX ", Px(12.5), true},
		{"-4px", Px(-4), true},
		{"50%", Length{50, UnitPercent}, true},
		{"1.5em", Length{1.5, UnitEm}, true},
		{"2rem", Px(32), true},
		{"auto", Auto, true},
		{"none", None, true},
		{"", Length{}, false},
		{"wide", Length{}, false},
		{"10vw", Length{}, false},
		{"NaN", Length{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLength(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseLength(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLength_Resolve(t *testing.T) {
	if got := (Length{25, UnitPercent}).Resolve(200); got != 50 {
		t.Errorf("25%% of 200 = %v", got)
	}
	if got := Px(7).Resolve(200); got != 7 {
		t.Errorf("7px = %v", got)
	}
	if got := Auto.Resolve(200); got != 0 {
		t.Errorf("auto = %v", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"red", Color{255, 0, 0, 255}, true},
		{"Blue", Color{0, 0, 255, 255}, true},
		{"green", Color{0, 128, 0, 255}, true},
		{"#fff", Color{255, 255, 255, 255}, true},
		{"#0f08", Color{0, 255, 0, 136}, true},
		{"#336699", Color{0x33, 0x66, 0x99, 255}, true},
		{"#33669980", Color{0x33, 0x66, 0x99, 0x80}, true},
		{"rgb(10, 20, 30)", Color{10, 20, 30, 255}, true},
		{"rgb(100%, 0%, 50%)", Color{255, 0, 128, 255}, true},
		{"rgba(0,0,0,0.5)", Color{0, 0, 0, 128}, true},
		{"rgb(300, -5, 0)", Color{255, 0, 0, 255}, true},
		{"transparent", Color{}, true},
		{"#12345", Color{}, false},
		{"#ggg", Color{}, false},
		{"rgb(1, 2)", Color{}, false},
		{"notacolour", Color{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseColor(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseColor(%q) = (%+v, %v), want (%+v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestColor_RGBA(t *testing.T) {
	r, g, b, a := Color{255, 0, 0, 255}.RGBA()
	if r != 0xffff || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("unexpected RGBA %x %x %x %x", r, g, b, a)
	}
	if !Transparent.IsTransparent() || Black.IsTransparent() {
		t.Error("IsTransparent mismatch")
	}
}

func TestDefaultStyle(t *testing.T) {
	s := DefaultStyle()
	if s.Display() != DisplayInline {
		t.Errorf("initial display should be inline, got %s", s.Display())
	}
	if s.FontSize() != 16 {
		t.Errorf("expected 16px font, got %v", s.FontSize())
	}
	if s.LineHeight() != 16*1.2 {
		t.Errorf("expected normal line height, got %v", s.LineHeight())
	}
	if s.Color() != Black || !s.BackgroundColor().IsTransparent() {
		t.Error("expected black on transparent")
	}
	if s.BorderWidth() != (BoxEdge{}) {
		t.Errorf("border style none should give zero widths, got %+v", s.BorderWidth())
	}
	if !s.Width().IsAuto() || !s.MaxWidth().IsNone() {
		t.Error("expected auto width and no max-width")
	}
}

func TestComputedStyle_WithIsACopy(t *testing.T) {
	base := DefaultStyle()
	changed := base.With("color", "red")
	if base.Get("color") != "black" {
		t.Error("With must not modify the receiver")
	}
	if changed.Get("color") != "red" {
		t.Error("With should set the value on the copy")
	}
	if base.With("no-such-property", "x").Get("no-such-property") != "" {
		t.Error("unknown properties are ignored")
	}
}

func TestComputedStyle_Inherit(t *testing.T) {
	s := DefaultStyle().With("color", "red").With("background-color", "blue").With("display", "block")
	anon := s.Inherit()
	if anon.Get("color") != "red" {
		t.Error("color should be inherited")
	}
	if anon.Get("background-color") != "transparent" || anon.Display() != DisplayInline {
		t.Error("non-inherited properties should be initial")
	}
}

func TestComputedStyle_BorderWidth(t *testing.T) {
	s := DefaultStyle().
		With("border-top-style", "solid").With("border-top-width", "thin").
		With("border-right-style", "hidden").With("border-right-width", "10px").
		With("border-bottom-style", "dashed").With("border-bottom-width", "thick").
		With("border-left-style", "solid").With("border-left-width", "-3px")
	want := BoxEdge{Top: 1, Right: 0, Bottom: 5, Left: 0}
	if got := s.BorderWidth(); got != want {
		t.Errorf("BorderWidth() = %+v, want %+v", got, want)
	}
}

func TestComputedStyle_Keywords(t *testing.T) {
	s := DefaultStyle().
		With("font-weight", "700").
		With("font-style", "oblique").
		With("font-family", `"Fira Code", monospace`).
		With("white-space", "nowrap").
		With("visibility", "hidden").
		With("text-decoration", "underline dotted").
		With("text-align", "center").
		With("display", "list-item")

	if s.FontWeight() != FontWeightBold {
		t.Error("700 should be bold")
	}
	if s.FontStyle() != FontStyleItalic {
		t.Error("oblique should be italic")
	}
	if s.FontFamily() != "Fira Code" {
		t.Errorf("unexpected family %q", s.FontFamily())
	}
	if s.WhiteSpace() != WhiteSpaceNowrap {
		t.Error("expected nowrap")
	}
	if s.Visible() {
		t.Error("expected hidden")
	}
	if s.TextDecoration() != TextDecorationUnderline {
		t.Error("expected underline")
	}
	if s.TextAlign() != TextAlignCenter {
		t.Error("expected center")
	}
	if s.Display() != DisplayBlock {
		t.Error("list-item should behave as block")
	}
}

func TestComputedStyle_LineHeight(t *testing.T) {
	base := DefaultStyle().With("font-size", "20px")
	tests := map[string]float64{
		"normal": 24,
		"2":      40,
		"30px":   30,
		"bogus":  24,
	}
	for value, want := range tests {
		if got := base.With("line-height", value).LineHeight(); got != want {
			t.Errorf("line-height %q = %v, want %v", value, got, want)
		}
	}
}
