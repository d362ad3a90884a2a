package css

import (
	"testing"

	"pinecone/pkg/html"
)

func mustSelector(t *testing.T, s string) Selector {
	t.Helper()
	sel, ok := ParseSelector(s)
	if !ok {
		t.Fatalf("ParseSelector(%q) failed", s)
	}
	return sel
}

func TestMatchesSelector(t *testing.T) {
	node := html.NewElement("div",
		html.Attribute{Name: "id", Value: "header"},
		html.Attribute{Name: "class", Value: "highlight  wide"},
		html.Attribute{Name: "data-kind", Value: "main"},
	)

	tests := []struct {
		selector string
		want     bool
	}{
		{"*", true},
		{"div", true},
		{"p", false},
		{".highlight", true},
		{".wide", true},
		{".other", false},
		{"#header", true},
		{"#footer", false},
		{"div.highlight.wide", true},
		{"div.highlight.narrow", false},
		{"p.highlight", false},
		{"div#header.wide", true},
		{"div[data-kind]", true},
		{"div[data-kind=main]", true},
		{"div[data-kind=side]", false},
		{"div[class~=wide]", true},
		{"div[class~=wid]", false},
		{"div[class=highlight]", false},
		{"[id=header]", true},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			if got := MatchesSelector(node, mustSelector(t, tt.selector)); got != tt.want {
				t.Errorf("MatchesSelector(div, %q) = %v, want %v", tt.selector, got, tt.want)
			}
		})
	}
}

func TestMatchesSelector_ClassIsSetMembership(t *testing.T) {
	// A class selector tests membership in the class list, not equality
	// with the whole attribute.
	node := html.NewElement("p", html.Attribute{Name: "class", Value: "hoge fuga"})
	if !MatchesSelector(node, mustSelector(t, ".fuga")) {
		t.Error("p.hoge.fuga should match .fuga")
	}
}

func TestMatchesSelector_NonElements(t *testing.T) {
	if MatchesSelector(html.NewText("div"), mustSelector(t, "*")) {
		t.Error("text nodes never match")
	}
	if MatchesSelector(html.NewComment("x"), mustSelector(t, "*")) {
		t.Error("comment nodes never match")
	}
	if MatchesSelector(nil, mustSelector(t, "*")) {
		t.Error("nil never matches")
	}
}

func TestFindMatchingRules(t *testing.T) {
	ss := ParseStylesheet(`p { color: red } .a { color: blue } div { color: green } * { width: 1px }`)
	node := html.NewElement("p", html.Attribute{Name: "class", Value: "a"})
	matches := FindMatchingRules(node, ss)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matching rules, got %d", len(matches))
	}
	if matches[0].Order != 0 || matches[1].Order != 1 || matches[2].Order != 3 {
		t.Errorf("expected source order, got %d %d %d", matches[0].Order, matches[1].Order, matches[2].Order)
	}
}
