package css

import (
	"strings"
)

type SelectorKind int

const (
	UniversalSelector SelectorKind = iota // *
	TypeSelector                          // div, p, span
	ClassSelector                         // .classname
	IDSelector                            // #idname
)

type AttrOp int

const (
	AttrExists   AttrOp = iota // [attr]
	AttrEquals                 // [attr=value]
	AttrIncludes               // [attr~=value]
)

// AttrTest is an attribute condition attached to a selector, e.g.
// input[type=text] or p[class~=note].
type AttrTest struct {
	Name  string
	Op    AttrOp
	Value string
}

// Selector is a single compound selector without combinators: an optional
// tag name followed by any number of #id, .class and one [attr] test.
type Selector struct {
	Tag     string // "" matches any element
	ID      string
	Classes []string
	Attr    *AttrTest
}

// Kind reports the most specific component of the selector.
func (s Selector) Kind() SelectorKind {
	switch {
	case s.ID != "":
		return IDSelector
	case len(s.Classes) > 0:
		return ClassSelector
	case s.Tag != "":
		return TypeSelector
	}
	return UniversalSelector
}

// Specificity counts the selector's components per category.
type Specificity struct {
	IDs     int
	Classes int
	Tags    int
}

// Less compares lexicographically.
func (a Specificity) Less(b Specificity) bool {
	if a.IDs != b.IDs {
		return a.IDs < b.IDs
	}
	if a.Classes != b.Classes {
		return a.Classes < b.Classes
	}
	return a.Tags < b.Tags
}

func (s Selector) Specificity() Specificity {
	sp := Specificity{Classes: len(s.Classes)}
	if s.ID != "" {
		sp.IDs = 1
	}
	if s.Attr != nil {
		sp.Classes++
	}
	if s.Tag != "" {
		sp.Tags = 1
	}
	return sp
}

func (s Selector) String() string {
	var sb strings.Builder
	if s.Tag != "" {
		sb.WriteString(s.Tag)
	}
	if s.ID != "" {
		sb.WriteString("#" + s.ID)
	}
	for _, c := range s.Classes {
		sb.WriteString("." + c)
	}
	if s.Attr != nil {
		sb.WriteString("[" + s.Attr.Name)
		switch s.Attr.Op {
		case AttrEquals:
			sb.WriteString("=" + s.Attr.Value)
		case AttrIncludes:
			sb.WriteString("~=" + s.Attr.Value)
		}
		sb.WriteString("]")
	}
	if sb.Len() == 0 {
		return "*"
	}
	return sb.String()
}

// selector parts apply themselves to the compound being built
type selectorPart func(*Selector)

var (
	typePart = alt(
		mapP(char("*"), func(string) selectorPart { return func(*Selector) {} }),
		mapP(token(kindIdent), func(tag string) selectorPart {
			tag = strings.ToLower(tag)
			return func(s *Selector) { s.Tag = tag }
		}),
	)

	idPart = mapP(token(kindHash), func(hash string) selectorPart {
		id := strings.TrimPrefix(hash, "#")
		return func(s *Selector) { s.ID = id }
	})

	classPart = mapP(right(char("."), token(kindIdent)), func(class string) selectorPart {
		return func(s *Selector) { s.Classes = append(s.Classes, class) }
	})

	attrOp = alt(
		mapP(char("="), func(string) AttrOp { return AttrEquals }),
		mapP(token(kindIncludes), func(string) AttrOp { return AttrIncludes }),
	)

	attrValue = alt(
		token(kindIdent),
		mapP(token(kindString), unquote),
		token(kindNumber),
	)

	attrPart = func(in []tok) (selectorPart, []tok, bool) {
		name, rest, ok := right(char("["), skipSpace(token(kindIdent)))(in)
		if !ok {
			return nil, in, false
		}
		test := AttrTest{Name: strings.ToLower(name), Op: AttrExists}
		if op, r, ok := skipSpace(attrOp)(rest); ok {
			value, r, ok := skipSpace(attrValue)(r)
			if !ok {
				return nil, in, false
			}
			test.Op, test.Value = op, value
			rest = r
		}
		if _, rest, ok = skipSpace(char("]"))(rest); !ok {
			return nil, in, false
		}
		return func(s *Selector) {
			if s.Attr == nil {
				t := test
				s.Attr = &t
			}
		}, rest, true
	}
)

// parseSelector parses one compound selector. Whitespace ends it; a
// descendant combinator therefore leaves tokens the caller rejects.
func parseSelector(in []tok) (Selector, []tok, bool) {
	var sel Selector
	head, rest, _ := optional(Parser[selectorPart](typePart))(in)
	tail, rest, _ := many(alt(idPart, classPart, Parser[selectorPart](attrPart)))(rest)
	if head == nil && len(tail) == 0 {
		return sel, in, false
	}
	if head != nil {
		head(&sel)
	}
	for _, part := range tail {
		part(&sel)
	}
	return sel, rest, true
}

// selectorList = selector (',' selector)*, terminated by '{'.
func selectorList(in []tok) ([]Selector, []tok, bool) {
	sels, rest, ok := sepBy(skipSpace(Parser[Selector](parseSelector)), skipSpace(char(",")))(in)
	if !ok {
		return nil, in, false
	}
	rest = trimSpace(rest)
	if len(rest) == 0 || !rest[0].is(kindChar, "{") {
		return nil, in, false
	}
	return sels, rest, true
}

// ParseSelector parses a standalone selector such as "div.note".
func ParseSelector(text string) (Selector, bool) {
	sel, rest, ok := skipSpace(Parser[Selector](parseSelector))(lex(text))
	if !ok {
		return Selector{}, false
	}
	if _, _, ok := eof(rest); !ok {
		return Selector{}, false
	}
	return sel, true
}
