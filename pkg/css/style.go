package css

import (
	"math"
	"strconv"
	"strings"
)

// ComputedStyle holds one resolved value per registered property. It is
// never modified once the cascade has built it; With returns a copy.
type ComputedStyle struct {
	values []string
}

// DefaultStyle returns the style made of initial values only. It is the
// parent style of the root element.
func DefaultStyle() *ComputedStyle {
	s := &ComputedStyle{values: make([]string, len(properties))}
	for i, p := range properties {
		s.values[i] = p.Initial
	}
	return s
}

// Get returns the computed value of a registered property, or "" for an
// unknown name.
func (s *ComputedStyle) Get(property string) string {
	i, ok := propertyIndex[property]
	if !ok {
		return ""
	}
	return s.values[i]
}

// With returns a copy of s with one property replaced. Unknown properties
// are ignored.
func (s *ComputedStyle) With(property, value string) *ComputedStyle {
	c := &ComputedStyle{values: make([]string, len(s.values))}
	copy(c.values, s.values)
	if i, ok := propertyIndex[property]; ok {
		c.values[i] = value
	}
	return c
}

// Inherit returns the style of an anonymous child: inherited properties
// come from s, everything else is initial.
func (s *ComputedStyle) Inherit() *ComputedStyle {
	c := &ComputedStyle{values: make([]string, len(properties))}
	for i, p := range properties {
		if p.Inherited {
			c.values[i] = s.values[i]
		} else {
			c.values[i] = p.Initial
		}
	}
	return c
}

// Equal reports whether both styles hold the same values.
func (s *ComputedStyle) Equal(o *ComputedStyle) bool {
	if len(s.values) != len(o.values) {
		return false
	}
	for i := range s.values {
		if s.values[i] != o.values[i] {
			return false
		}
	}
	return true
}

type Unit int

const (
	UnitPx Unit = iota
	UnitPercent
	UnitEm
	UnitAuto
	UnitNone
)

// Length is a parsed length value. Em lengths only appear before the
// cascade resolves them; computed styles carry px, %, auto or none.
type Length struct {
	Value float64
	Unit  Unit
}

func Px(v float64) Length { return Length{Value: v, Unit: UnitPx} }

var (
	Auto = Length{Unit: UnitAuto}
	None = Length{Unit: UnitNone}
)

func (l Length) IsAuto() bool { return l.Unit == UnitAuto }
func (l Length) IsNone() bool { return l.Unit == UnitNone }

// Resolve converts the length to px. Percentages resolve against ref;
// auto and none resolve to 0.
func (l Length) Resolve(ref float64) float64 {
	switch l.Unit {
	case UnitPx:
		return l.Value
	case UnitPercent:
		return l.Value * ref / 100
	case UnitEm:
		return l.Value * defaultFontSize
	}
	return 0
}

func (l Length) String() string {
	switch l.Unit {
	case UnitPercent:
		return formatNumber(l.Value) + "%"
	case UnitEm:
		return formatNumber(l.Value) + "em"
	case UnitAuto:
		return "auto"
	case UnitNone:
		return "none"
	}
	return formatNumber(l.Value) + "px"
}

const defaultFontSize = 16.0

// ParseLength parses a length value: "100px", "100" (px), "50%", "1.5em",
// "2rem", "auto" or "none".
func ParseLength(val string) (Length, bool) {
	val = strings.ToLower(strings.TrimSpace(val))
	switch val {
	case "auto":
		return Auto, true
	case "none":
		return None, true
	case "":
		return Length{}, false
	}

	unit := UnitPx
	num := val
	scale := 1.0
	switch {
	case strings.HasSuffix(val, "px"):
		num = val[:len(val)-2]
	case strings.HasSuffix(val, "%"):
		num, unit = val[:len(val)-1], UnitPercent
	case strings.HasSuffix(val, "rem"):
		num, scale = val[:len(val)-3], defaultFontSize
	case strings.HasSuffix(val, "em"):
		num, unit = val[:len(val)-2], UnitEm
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Length{}, false
	}
	return Length{Value: f * scale, Unit: unit}, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// BoxEdge represents the four sides of a box (top, right, bottom, left)
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// LengthEdges holds unresolved lengths for the four sides.
type LengthEdges struct {
	Top    Length
	Right  Length
	Bottom Length
	Left   Length
}

func (s *ComputedStyle) lengthOr(property string, fallback Length) Length {
	if l, ok := ParseLength(s.Get(property)); ok {
		return l
	}
	return fallback
}

func (s *ComputedStyle) edges(prefix string) LengthEdges {
	return LengthEdges{
		Top:    s.lengthOr(prefix+"-top", Px(0)),
		Right:  s.lengthOr(prefix+"-right", Px(0)),
		Bottom: s.lengthOr(prefix+"-bottom", Px(0)),
		Left:   s.lengthOr(prefix+"-left", Px(0)),
	}
}

// Margin returns the margin lengths for all four sides
func (s *ComputedStyle) Margin() LengthEdges { return s.edges("margin") }

// Padding returns the padding lengths for all four sides
func (s *ComputedStyle) Padding() LengthEdges { return s.edges("padding") }

func (s *ComputedStyle) Width() Length     { return s.lengthOr("width", Auto) }
func (s *ComputedStyle) Height() Length    { return s.lengthOr("height", Auto) }
func (s *ComputedStyle) MinWidth() Length  { return s.lengthOr("min-width", Px(0)) }
func (s *ComputedStyle) MaxWidth() Length  { return s.lengthOr("max-width", None) }
func (s *ComputedStyle) MinHeight() Length { return s.lengthOr("min-height", Px(0)) }
func (s *ComputedStyle) MaxHeight() Length { return s.lengthOr("max-height", None) }

// BorderStyle returns the border style of one side ("top", "right", ...).
func (s *ComputedStyle) BorderStyle(side string) string {
	return strings.ToLower(s.Get("border-" + side + "-style"))
}

// BorderWidth returns the used border widths. A side whose style is none
// or hidden has width 0.
func (s *ComputedStyle) BorderWidth() BoxEdge {
	return BoxEdge{
		Top:    s.borderWidth("top"),
		Right:  s.borderWidth("right"),
		Bottom: s.borderWidth("bottom"),
		Left:   s.borderWidth("left"),
	}
}

func (s *ComputedStyle) borderWidth(side string) float64 {
	switch s.BorderStyle(side) {
	case "none", "hidden", "":
		return 0
	}
	val := strings.ToLower(s.Get("border-" + side + "-width"))
	switch val {
	case "thin":
		return 1
	case "medium":
		return 3
	case "thick":
		return 5
	}
	l, ok := ParseLength(val)
	if !ok || l.Unit != UnitPx || l.Value < 0 {
		return 0
	}
	return l.Value
}

// BorderColor returns the colour of one side, resolving currentcolor.
func (s *ComputedStyle) BorderColor(side string) Color {
	val := s.Get("border-" + side + "-color")
	if strings.EqualFold(val, "currentcolor") {
		return s.Color()
	}
	if c, ok := ParseColor(val); ok {
		return c
	}
	return s.Color()
}

// FontSize returns the font-size in pixels (default: 16px)
func (s *ComputedStyle) FontSize() float64 {
	if l, ok := ParseLength(s.Get("font-size")); ok && l.Unit == UnitPx && l.Value >= 0 {
		return l.Value
	}
	return defaultFontSize
}

// LineHeight returns the line-height in pixels (normal: 1.2 * font-size)
func (s *ComputedStyle) LineHeight() float64 {
	val := strings.ToLower(s.Get("line-height"))
	fs := s.FontSize()
	if val == "normal" || val == "" {
		return fs * 1.2
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil && f >= 0 {
		// unitless multiplier
		return f * fs
	}
	if l, ok := ParseLength(val); ok && l.Value >= 0 {
		return l.Resolve(fs)
	}
	return fs * 1.2
}

// Color returns the text color (default: black)
func (s *ComputedStyle) Color() Color {
	if c, ok := ParseColor(s.Get("color")); ok {
		return c
	}
	return Black
}

// BackgroundColor returns the background colour (default: transparent)
func (s *ComputedStyle) BackgroundColor() Color {
	if c, ok := ParseColor(s.Get("background-color")); ok {
		return c
	}
	return Transparent
}

// DisplayType represents the display property value
type DisplayType string

const (
	DisplayBlock       DisplayType = "block"
	DisplayInline      DisplayType = "inline"
	DisplayInlineBlock DisplayType = "inline-block"
	DisplayNone        DisplayType = "none"
)

// Display returns the display value. Block-level keywords this engine has
// no dedicated layout for (list-item, table, flex, grid) behave as block.
func (s *ComputedStyle) Display() DisplayType {
	switch strings.ToLower(s.Get("display")) {
	case "block", "list-item", "table", "flex", "grid", "flow-root":
		return DisplayBlock
	case "inline-block", "inline-flex", "inline-grid", "inline-table":
		return DisplayInlineBlock
	case "none":
		return DisplayNone
	}
	return DisplayInline
}

// TextAlign represents the text-align property value
type TextAlign string

const (
	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

// TextAlign returns the text-align value (default: left)
func (s *ComputedStyle) TextAlign() TextAlign {
	switch strings.ToLower(s.Get("text-align")) {
	case "center":
		return TextAlignCenter
	case "right", "end":
		return TextAlignRight
	}
	return TextAlignLeft
}

// FontWeight represents the font-weight property value
type FontWeight string

const (
	FontWeightNormal FontWeight = "normal"
	FontWeightBold   FontWeight = "bold"
)

// FontWeight returns the font-weight value (default: normal)
func (s *ComputedStyle) FontWeight() FontWeight {
	val := strings.ToLower(s.Get("font-weight"))
	switch val {
	case "bold", "bolder":
		return FontWeightBold
	}
	if n, err := strconv.Atoi(val); err == nil && n >= 600 {
		return FontWeightBold
	}
	return FontWeightNormal
}

type FontStyle string

const (
	FontStyleNormal FontStyle = "normal"
	FontStyleItalic FontStyle = "italic"
)

func (s *ComputedStyle) FontStyle() FontStyle {
	switch strings.ToLower(s.Get("font-style")) {
	case "italic", "oblique":
		return FontStyleItalic
	}
	return FontStyleNormal
}

// FontFamily returns the first family of the font-family list, unquoted.
func (s *ComputedStyle) FontFamily() string {
	first, _, _ := strings.Cut(s.Get("font-family"), ",")
	first = unquote(strings.TrimSpace(first))
	if first == "" {
		return "monospace"
	}
	return first
}

type WhiteSpace string

const (
	WhiteSpaceNormal WhiteSpace = "normal"
	WhiteSpaceNowrap WhiteSpace = "nowrap"
)

// WhiteSpace reports whether lines may break. Only wrapping is modelled,
// so pre behaves like nowrap.
func (s *ComputedStyle) WhiteSpace() WhiteSpace {
	switch strings.ToLower(s.Get("white-space")) {
	case "nowrap", "pre":
		return WhiteSpaceNowrap
	}
	return WhiteSpaceNormal
}

// Visible is false for visibility: hidden and collapse.
func (s *ComputedStyle) Visible() bool {
	switch strings.ToLower(s.Get("visibility")) {
	case "hidden", "collapse":
		return false
	}
	return true
}

type TextDecoration string

const (
	TextDecorationNone        TextDecoration = "none"
	TextDecorationUnderline   TextDecoration = "underline"
	TextDecorationLineThrough TextDecoration = "line-through"
)

func (s *ComputedStyle) TextDecoration() TextDecoration {
	val := strings.ToLower(s.Get("text-decoration"))
	switch {
	case strings.Contains(val, "underline"):
		return TextDecorationUnderline
	case strings.Contains(val, "line-through"):
		return TextDecorationLineThrough
	}
	return TextDecorationNone
}
