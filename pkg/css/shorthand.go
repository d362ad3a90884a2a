package css

import (
	"strings"
)

var sides = [4]string{"top", "right", "bottom", "left"}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dotted": true,
	"dashed": true, "double": true, "groove": true, "ridge": true,
	"inset": true, "outset": true,
}

// expandShorthand expands shorthand CSS properties into longhands. A
// shorthand whose value cannot be split is dropped.
func expandShorthand(d Declaration) []Declaration {
	set := func(out []Declaration, property, value string) []Declaration {
		return append(out, Declaration{Property: property, Value: value, Important: d.Important})
	}
	var out []Declaration

	switch d.Property {
	case "margin", "padding":
		// margin: 10px -> margin-top/right/bottom/left: 10px
		values, ok := boxValues(splitValue(d.Value))
		if !ok {
			return nil
		}
		for i, side := range sides {
			out = set(out, d.Property+"-"+side, values[i])
		}

	case "border-width", "border-style", "border-color":
		values, ok := boxValues(splitValue(d.Value))
		if !ok {
			return nil
		}
		suffix := strings.TrimPrefix(d.Property, "border-")
		for i, side := range sides {
			out = set(out, "border-"+side+"-"+suffix, values[i])
		}

	case "border":
		// border: 1px solid black -> border-*-width/style/color
		width, style, color, ok := borderParts(d.Value)
		if !ok {
			return nil
		}
		for _, side := range sides {
			out = set(out, "border-"+side+"-width", width)
			out = set(out, "border-"+side+"-style", style)
			out = set(out, "border-"+side+"-color", color)
		}

	case "border-top", "border-right", "border-bottom", "border-left":
		width, style, color, ok := borderParts(d.Value)
		if !ok {
			return nil
		}
		out = set(out, d.Property+"-width", width)
		out = set(out, d.Property+"-style", style)
		out = set(out, d.Property+"-color", color)

	case "background":
		// only the colour layer is kept
		color := "transparent"
		for _, part := range splitValue(d.Value) {
			if _, ok := ParseColor(part); ok {
				color = part
			}
		}
		out = set(out, "background-color", color)

	default:
		out = append(out, d)
	}
	return out
}

// boxValues maps 1-4 values onto top, right, bottom, left.
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
// "10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l)
func boxValues(parts []string) ([4]string, bool) {
	switch len(parts) {
	case 1:
		return [4]string{parts[0], parts[0], parts[0], parts[0]}, true
	case 2:
		return [4]string{parts[0], parts[1], parts[0], parts[1]}, true
	case 3:
		return [4]string{parts[0], parts[1], parts[2], parts[1]}, true
	case 4:
		return [4]string{parts[0], parts[1], parts[2], parts[3]}, true
	}
	return [4]string{}, false
}

// borderParts splits a border shorthand into width, style and colour.
// Parts that are absent reset to their initial values.
func borderParts(value string) (width, style, color string, ok bool) {
	width, style, color = "medium", "none", "currentcolor"
	parts := splitValue(value)
	if len(parts) == 0 || len(parts) > 3 {
		return "", "", "", false
	}
	for _, part := range parts {
		lower := strings.ToLower(part)
		switch {
		case borderStyles[lower]:
			style = lower
		case lower == "thin" || lower == "medium" || lower == "thick":
			width = lower
		default:
			if _, isLen := ParseLength(part); isLen {
				width = part
			} else if _, isColor := ParseColor(part); isColor || lower == "currentcolor" {
				color = part
			} else {
				return "", "", "", false
			}
		}
	}
	return width, style, color, true
}

// splitValue splits a value on whitespace outside parentheses, so
// "1px solid rgb(0, 0, 0)" yields three parts.
func splitValue(value string) []string {
	var parts []string
	depth := 0
	start := -1
	for i, r := range value {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case (r == ' ' || r == '\t' || r == '\n') && depth == 0:
			if start >= 0 {
				parts = append(parts, value[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, value[start:])
	}
	return parts
}
