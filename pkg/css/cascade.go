package css

import (
	"sort"
	"strconv"
	"strings"

	"pinecone/pkg/html"
)

// StyleMap holds the computed style of every node of one tree. Text and
// comment nodes share their parent element's style.
type StyleMap map[*html.Node]*ComputedStyle

// Of returns the style of n, or the default style for a node that was not
// part of the resolved tree.
func (m StyleMap) Of(n *html.Node) *ComputedStyle {
	if s, ok := m[n]; ok {
		return s
	}
	return DefaultStyle()
}

const (
	originUserAgent = iota
	originAuthor
)

// The user-agent sheet is parsed once; stylesheets are never mutated after
// parsing so it is shared read-only between passes.
var userAgentSheet = ParseStylesheet(userAgentCSS())

func userAgentCSS() string {
	blocks := html.BlockElements()
	sort.Strings(blocks)
	hidden := html.NonRenderingElements()
	sort.Strings(hidden)

	var sb strings.Builder
	sb.WriteString(strings.Join(blocks, ", ") + " { display: block }\n")
	sb.WriteString(strings.Join(hidden, ", ") + " { display: none }\n")
	sb.WriteString(`
b, strong, th, h1, h2, h3, h4, h5, h6 { font-weight: bold }
i, em, cite, var, dfn { font-style: italic }
u, ins { text-decoration: underline }
s, strike, del { text-decoration: line-through }
a { color: #0645ad; text-decoration: underline }
center { text-align: center }
pre { white-space: pre }
h1 { font-size: 2em }
h2 { font-size: 1.5em }
h3 { font-size: 1.17em }
h5 { font-size: 0.83em }
h6 { font-size: 0.67em }
small { font-size: smaller }
big { font-size: larger }
`)
	return sb.String()
}

// Resolve computes the style of every node under root. The user-agent sheet
// comes first, then the author sheets in the order given, then each
// element's style attribute. It never fails.
func Resolve(root *html.Node, sheets ...*Stylesheet) StyleMap {
	r := &resolver{styles: make(StyleMap)}

	r.add(userAgentSheet, originUserAgent)
	for _, ss := range sheets {
		if ss != nil {
			r.add(ss, originAuthor)
		}
	}

	if root != nil {
		r.resolveNode(root, DefaultStyle())
	}
	return r.styles
}

type resolver struct {
	rules  []matchedRule
	styles StyleMap
	next   int // running source order across sheets
}

func (r *resolver) add(ss *Stylesheet, origin int) {
	base := r.next
	for i := range ss.Rules {
		rule := &ss.Rules[i]
		order := base + rule.Order
		r.rules = append(r.rules, matchedRule{rule: rule, origin: origin, order: order})
		if order+1 > r.next {
			r.next = order + 1
		}
	}
}

func (r *resolver) resolveNode(node *html.Node, parent *ComputedStyle) {
	style := parent
	if node.Type == html.ElementNode {
		style = r.computeStyle(node, parent)
	}
	r.styles[node] = style
	for _, child := range node.Children {
		r.resolveNode(child, style)
	}
}

// computeStyle computes the final style for a node by applying the cascade
func (r *resolver) computeStyle(node *html.Node, parent *ComputedStyle) *ComputedStyle {
	matches := make([]matchedRule, 0)
	for _, m := range r.rules {
		if MatchesSelector(node, m.rule.Selector) {
			matches = append(matches, m)
		}
	}

	// Sort rules by origin, then specificity, then source order (lowest first)
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.origin != b.origin {
			return a.origin < b.origin
		}
		sa, sb := a.rule.Selector.Specificity(), b.rule.Selector.Specificity()
		if sa != sb {
			return sa.Less(sb)
		}
		return a.order < b.order
	})

	var inline []Declaration
	if attr, ok := node.Attr("style"); ok {
		inline = ParseInlineStyle(attr)
	}

	declared := make(map[string]string)
	apply := func(decls []Declaration, important bool) {
		for _, d := range decls {
			if d.Important == important && validValue(d.Property, d.Value) {
				declared[d.Property] = d.Value
			}
		}
	}
	// Normal declarations, then inline style (highest specificity), then
	// the same again for !important.
	for _, important := range []bool{false, true} {
		for _, m := range matches {
			apply(m.rule.Declarations, important)
		}
		apply(inline, important)
	}

	return computeValues(declared, parent)
}

// computeValues turns declared values into computed values: keywords
// inherit/initial/unset are applied, missing properties inherit or take
// their initial value, and font-relative lengths become px.
func computeValues(declared map[string]string, parent *ComputedStyle) *ComputedStyle {
	s := &ComputedStyle{values: make([]string, len(properties))}
	for i, p := range properties {
		v, ok := declared[p.Name]
		switch strings.ToLower(v) {
		case "inherit":
			v = parent.values[i]
		case "initial":
			v = p.Initial
		case "unset":
			ok = false
		}
		if !ok {
			if p.Inherited {
				v = parent.values[i]
			} else {
				v = p.Initial
			}
		}
		s.values[i] = v
	}

	fsIdx := propertyIndex["font-size"]
	fs := computeFontSize(s.values[fsIdx], parent.FontSize())
	s.values[fsIdx] = formatNumber(fs) + "px"

	for name := range lengthProperties {
		i := propertyIndex[name]
		if l, ok := ParseLength(s.values[i]); ok && l.Unit == UnitEm {
			s.values[i] = formatNumber(l.Value*fs) + "px"
		}
	}
	lhIdx := propertyIndex["line-height"]
	if l, ok := ParseLength(s.values[lhIdx]); ok && l.Unit == UnitPercent {
		s.values[lhIdx] = formatNumber(l.Value*fs/100) + "px"
	}

	colorIdx := propertyIndex["color"]
	if strings.EqualFold(s.values[colorIdx], "currentcolor") {
		s.values[colorIdx] = parent.values[colorIdx]
	}
	return s
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32, "xxx-large": 48,
}

func computeFontSize(val string, parentSize float64) float64 {
	val = strings.ToLower(strings.TrimSpace(val))
	if px, ok := fontSizeKeywords[val]; ok {
		return px
	}
	switch val {
	case "smaller":
		return parentSize / 1.2
	case "larger":
		return parentSize * 1.2
	}
	l, ok := ParseLength(val)
	if !ok || l.Value < 0 {
		return parentSize
	}
	switch l.Unit {
	case UnitPx:
		return l.Value
	case UnitEm:
		return l.Value * parentSize
	case UnitPercent:
		return l.Value * parentSize / 100
	}
	return parentSize
}

// validValue rejects values a property cannot use, so an invalid
// declaration falls back to whatever it would have been without it.
func validValue(property, value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	switch lower {
	case "inherit", "initial", "unset":
		return true
	}
	switch {
	case property == "color" || property == "background-color" || strings.HasSuffix(property, "-color"):
		if lower == "currentcolor" {
			return true
		}
		_, ok := ParseColor(lower)
		return ok
	case strings.HasSuffix(property, "-width") && strings.HasPrefix(property, "border-"):
		if lower == "thin" || lower == "medium" || lower == "thick" {
			return true
		}
		l, ok := ParseLength(lower)
		return ok && l.Unit != UnitPercent && l.Unit != UnitAuto && l.Unit != UnitNone
	case strings.HasSuffix(property, "-style") && strings.HasPrefix(property, "border-"):
		return borderStyles[lower]
	case property == "line-height":
		if lower == "normal" {
			return true
		}
		if _, err := strconv.ParseFloat(lower, 64); err == nil {
			return true
		}
		_, ok := ParseLength(lower)
		return ok
	case property == "font-size":
		return true
	case lengthProperties[property]:
		_, ok := ParseLength(lower)
		return ok
	}
	_, known := LookupProperty(property)
	return known
}
