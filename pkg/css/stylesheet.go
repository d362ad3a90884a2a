package css

import (
	"strings"
)

// Declaration is one property: value pair. Shorthands are expanded before a
// Declaration is stored, so Property is always a longhand name.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule represents a CSS rule (selector + declarations). Rules created from
// one selector group share the group's Order.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
	Order        int
}

// Stylesheet represents a parsed CSS stylesheet. Rules keep source order.
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses stylesheet text. It never fails: a rule whose
// selector list does not parse is skipped to the end of its block, a bad
// declaration is dropped up to the next ';', and at-rules are skipped.
func ParseStylesheet(text string) *Stylesheet {
	ss := &Stylesheet{Rules: make([]Rule, 0)}
	in := lex(text)
	order := 0

	for {
		in = trimSpace(in)
		if len(in) == 0 {
			return ss
		}

		if in[0].kind == kindAtKeyword {
			in = skipAtRule(in)
			continue
		}
		if in[0].is(kindChar, "}") {
			// stray close brace
			in = in[1:]
			continue
		}

		sels, rest, ok := selectorList(in)
		if !ok {
			in = skipBlock(in)
			continue
		}

		body, after := blockBody(rest)
		decls := parseDeclarations(body)
		for _, sel := range sels {
			ss.Rules = append(ss.Rules, Rule{
				Selector:     sel,
				Declarations: decls,
				Order:        order,
			})
		}
		order++
		in = after
	}
}

// ParseInlineStyle parses the body of a style="" attribute.
func ParseInlineStyle(attr string) []Declaration {
	return parseDeclarations(lex(attr))
}

// blockBody splits a '{ ... }' block off the front of in. An unclosed block
// runs to EOF.
func blockBody(in []tok) (body, after []tok) {
	depth := 0
	for i, t := range in {
		switch {
		case t.is(kindChar, "{"):
			depth++
		case t.is(kindChar, "}"):
			depth--
			if depth == 0 {
				return in[1:i], in[i+1:]
			}
		}
	}
	if len(in) == 0 {
		return nil, nil
	}
	return in[1:], nil
}

// skipBlock discards tokens through the end of the next balanced block.
// Close braces seen before any block opens are ignored.
func skipBlock(in []tok) []tok {
	for i, t := range in {
		if t.is(kindChar, "{") {
			_, after := blockBody(in[i:])
			return after
		}
	}
	return nil
}

// skipAtRule discards an at-rule: through its ';' or its balanced block,
// whichever comes first.
func skipAtRule(in []tok) []tok {
	for i, t := range in {
		if t.is(kindChar, ";") {
			return in[i+1:]
		}
		if t.is(kindChar, "{") {
			_, after := blockBody(in[i:])
			return after
		}
	}
	return nil
}

// splitDeclarations cuts a block body at top-level semicolons.
func splitDeclarations(in []tok) [][]tok {
	var out [][]tok
	depth := 0
	start := 0
	for i, t := range in {
		switch {
		case t.kind == kindFunction, t.is(kindChar, "("), t.is(kindChar, "["), t.is(kindChar, "{"):
			depth++
		case t.is(kindChar, ")"), t.is(kindChar, "]"), t.is(kindChar, "}"):
			if depth > 0 {
				depth--
			}
		case t.is(kindChar, ";") && depth == 0:
			out = append(out, in[start:i])
			start = i + 1
		}
	}
	if start < len(in) {
		out = append(out, in[start:])
	}
	return out
}

var propertyName = skipSpace(mapP(token(kindIdent), strings.ToLower))

// parseDeclaration handles `ident ':' value ['!' 'important']`.
func parseDeclaration(in []tok) (Declaration, bool) {
	name, rest, ok := left(propertyName, skipSpace(char(":")))(in)
	if !ok {
		return Declaration{}, false
	}
	value, important, ok := declarationValue(rest)
	if !ok {
		return Declaration{}, false
	}
	return Declaration{Property: name, Value: value, Important: important}, true
}

func declarationValue(in []tok) (string, bool, bool) {
	in = trimSpace(in)
	for len(in) > 0 && (in[len(in)-1].kind == kindSpace || in[len(in)-1].kind == kindComment) {
		in = in[:len(in)-1]
	}

	important := false
	if n := len(in); n >= 2 && in[n-1].kind == kindIdent && strings.EqualFold(in[n-1].value, "important") {
		i := n - 2
		for i >= 0 && in[i].kind == kindSpace {
			i--
		}
		if i >= 0 && in[i].is(kindChar, "!") {
			important = true
			in = in[:i]
		}
	}

	for _, t := range in {
		if t.is(kindChar, "{") || t.is(kindChar, "}") || t.is(kindChar, "!") {
			return "", false, false
		}
	}
	value := joinValue(in)
	if value == "" {
		return "", false, false
	}
	return value, important, true
}

// joinValue rebuilds the value text: whitespace runs become one space and
// comments disappear.
func joinValue(in []tok) string {
	var sb strings.Builder
	pendingSpace := false
	for _, t := range in {
		switch t.kind {
		case kindSpace:
			pendingSpace = sb.Len() > 0
			continue
		case kindComment:
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		sb.WriteString(t.value)
	}
	return sb.String()
}

// parseDeclarations parses a declaration block body and expands shorthands.
// Declarations that fail to parse are dropped.
func parseDeclarations(body []tok) []Declaration {
	decls := make([]Declaration, 0)
	for _, part := range splitDeclarations(body) {
		if len(trimSpace(part)) == 0 {
			continue
		}
		d, ok := parseDeclaration(part)
		if !ok {
			continue
		}
		decls = append(decls, expandShorthand(d)...)
	}
	return decls
}
