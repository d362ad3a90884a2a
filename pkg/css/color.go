package css

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a non-premultiplied sRGB colour with alpha.
type Color struct {
	R, G, B, A uint8
}

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{}
)

func (c Color) IsTransparent() bool { return c.A == 0 }

// RGBA implements color.Color with alpha-premultiplied components.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A)
	r = uint32(c.R) * a / 255
	g = uint32(c.G) * a / 255
	b = uint32(c.B) * a / 255
	return r * 0x101, g * 0x101, b * 0x101, a * 0x101
}

func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatNumber(float64(c.A)/255))
}

var namedColors = map[string]Color{
	"black":   {0, 0, 0, 255},
	"silver":  {192, 192, 192, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"white":   {255, 255, 255, 255},
	"maroon":  {128, 0, 0, 255},
	"red":     {255, 0, 0, 255},
	"purple":  {128, 0, 128, 255},
	"fuchsia": {255, 0, 255, 255},
	"magenta": {255, 0, 255, 255},
	"green":   {0, 128, 0, 255},
	"lime":    {0, 255, 0, 255},
	"olive":   {128, 128, 0, 255},
	"yellow":  {255, 255, 0, 255},
	"navy":    {0, 0, 128, 255},
	"blue":    {0, 0, 255, 255},
	"teal":    {0, 128, 128, 255},
	"aqua":    {0, 255, 255, 255},
	"cyan":    {0, 255, 255, 255},
	"orange":  {255, 165, 0, 255},
	"pink":    {255, 192, 203, 255},
	"brown":   {165, 42, 42, 255},
	"gold":    {255, 215, 0, 255},
	"indigo":  {75, 0, 130, 255},
	"violet":  {238, 130, 238, 255},
	"coral":   {255, 127, 80, 255},
	"salmon":  {250, 128, 114, 255},
	"khaki":   {240, 230, 140, 255},
	"crimson": {220, 20, 60, 255},
	"tomato":  {255, 99, 71, 255},

	"lightgray":     {211, 211, 211, 255},
	"lightgrey":     {211, 211, 211, 255},
	"darkgray":      {169, 169, 169, 255},
	"darkgrey":      {169, 169, 169, 255},
	"lightblue":     {173, 216, 230, 255},
	"darkblue":      {0, 0, 139, 255},
	"lightgreen":    {144, 238, 144, 255},
	"darkgreen":     {0, 100, 0, 255},
	"darkred":       {139, 0, 0, 255},
	"lightyellow":   {255, 255, 224, 255},
	"whitesmoke":    {245, 245, 245, 255},
	"gainsboro":     {220, 220, 220, 255},
	"steelblue":     {70, 130, 180, 255},
	"skyblue":       {135, 206, 235, 255},
	"rebeccapurple": {102, 51, 153, 255},
	"transparent":   {0, 0, 0, 0},
}

// ParseColor parses named colours, #rgb, #rgba, #rrggbb, #rrggbbaa,
// rgb(), rgba() and transparent.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	if c, ok := namedColors[colorStr]; ok {
		return c, true
	}
	if strings.HasPrefix(colorStr, "#") {
		return parseHexColor(colorStr[1:])
	}
	if args, ok := functionArgs(colorStr, "rgba"); ok {
		return parseRGBArgs(args)
	}
	if args, ok := functionArgs(colorStr, "rgb"); ok {
		return parseRGBArgs(args)
	}
	return Color{}, false
}

func parseHexColor(hex string) (Color, bool) {
	var digits [8]uint8
	for i := 0; i < len(hex); i++ {
		if i >= len(digits) {
			return Color{}, false
		}
		v, err := strconv.ParseUint(hex[i:i+1], 16, 8)
		if err != nil {
			return Color{}, false
		}
		digits[i] = uint8(v)
	}
	switch len(hex) {
	case 3, 4:
		c := Color{digits[0] * 17, digits[1] * 17, digits[2] * 17, 255}
		if len(hex) == 4 {
			c.A = digits[3] * 17
		}
		return c, true
	case 6, 8:
		c := Color{
			digits[0]<<4 | digits[1],
			digits[2]<<4 | digits[3],
			digits[4]<<4 | digits[5],
			255,
		}
		if len(hex) == 8 {
			c.A = digits[6]<<4 | digits[7]
		}
		return c, true
	}
	return Color{}, false
}

// functionArgs returns the comma or space separated arguments of name(...).
func functionArgs(s, name string) ([]string, bool) {
	if !strings.HasPrefix(s, name+"(") || !strings.HasSuffix(s, ")") {
		return nil, false
	}
	inner := s[len(name)+1 : len(s)-1]
	inner = strings.ReplaceAll(inner, "/", " ")
	inner = strings.ReplaceAll(inner, ",", " ")
	return strings.Fields(inner), true
}

func parseRGBArgs(args []string) (Color, bool) {
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}
	var c Color
	channels := []*uint8{&c.R, &c.G, &c.B}
	for i, ch := range channels {
		v, ok := parseChannel(args[i], 255)
		if !ok {
			return Color{}, false
		}
		*ch = v
	}
	c.A = 255
	if len(args) == 4 {
		a, ok := parseChannel(args[3], 1)
		if !ok {
			return Color{}, false
		}
		c.A = a
	}
	return c, true
}

// parseChannel parses a number (scaled from 0..scale to 0-255) or a percentage.
func parseChannel(s string, scale float64) (uint8, bool) {
	var f float64
	var err error
	if strings.HasSuffix(s, "%") {
		f, err = strconv.ParseFloat(s[:len(s)-1], 64)
		f = f / 100 * 255
	} else {
		f, err = strconv.ParseFloat(s, 64)
		f = f / scale * 255
	}
	if err != nil || f != f {
		return 0, false
	}
	if f < 0 {
		f = 0
	}
	if f > 255 {
		f = 255
	}
	return uint8(f + 0.5), true
}
