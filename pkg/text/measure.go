package text

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Font describes the face a run of text is set in.
type Font struct {
	Size   float64
	Bold   bool
	Italic bool
	Family string
}

// Measurer reports the advance width of a string. Layout only ever asks for
// widths; line heights come from the computed style.
type Measurer interface {
	Width(s string, f Font) float64
}

// Metrics measures text against a fixed glyph table. Every pass measures the
// same string identically, which keeps layout deterministic and independent of
// which fonts are installed on the host.
type Metrics struct {
	face  *basicfont.Face
	scale float64
}

// NewMetrics returns a Metrics backed by the 7x13 bitmap face. scale widens or
// narrows every advance; values <= 0 mean 1.
func NewMetrics(scale float64) *Metrics {
	if scale <= 0 {
		scale = 1
	}
	return &Metrics{face: basicfont.Face7x13, scale: scale}
}

// DefaultMetrics is the measurer used when none is configured.
var DefaultMetrics = NewMetrics(1)

// FaceHeight is the pixel height of the glyph table's em box.
func (m *Metrics) FaceHeight() float64 { return float64(m.face.Height) }

// Ascent is the distance from the top of a line box to the baseline for the
// given font size.
func (m *Metrics) Ascent(size float64) float64 {
	return float64(m.face.Ascent) * size / m.FaceHeight()
}

// Face exposes the underlying glyph table so surfaces can draw with the same
// advances layout measured.
func (m *Metrics) Face() font.Face { return m.face }

// Scale is the advance multiplier applied on top of the face.
func (m *Metrics) Scale() float64 { return m.scale }

// Width implements Measurer. Wide East-Asian runes take two cells, zero-width
// and control runes take none, and bold text gains one pixel per glyph at the
// table's native size.
func (m *Metrics) Width(s string, f Font) float64 {
	if s == "" || f.Size <= 0 {
		return 0
	}
	var cells fixed.Int26_6
	glyphs := 0
	for _, r := range s {
		w := runeCells(r)
		if w == 0 {
			continue
		}
		adv, ok := m.face.GlyphAdvance(r)
		if !ok {
			adv = fixed.I(m.face.Advance)
		}
		cells += adv * fixed.Int26_6(w)
		glyphs++
	}
	width := float64(cells) / 64
	if f.Bold {
		width += float64(glyphs)
	}
	return width * f.Size / m.FaceHeight() * m.scale
}

func runeCells(r rune) int {
	if unicode.IsControl(r) {
		return 0
	}
	return runewidth.RuneWidth(r)
}

// Words splits text at collapsible whitespace.
func Words(s string) []string {
	return strings.FieldsFunc(s, IsCollapsible)
}

// IsCollapsible reports whether r is whitespace that collapses in normal flow.
func IsCollapsible(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

// CollapseSpaces reduces every run of collapsible whitespace to one space.
func CollapseSpaces(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		if IsCollapsible(r) {
			if !space {
				sb.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}
