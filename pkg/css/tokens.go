package css

import (
	"github.com/gorilla/css/scanner"
)

type tokenKind int

const (
	kindEOF tokenKind = iota
	kindSpace
	kindComment
	kindIdent
	kindAtKeyword
	kindString
	kindHash
	kindNumber
	kindPercentage
	kindDimension
	kindFunction
	kindIncludes // ~=
	kindChar
	kindOther
)

// tok is one lexical token. The scanner's own token type is unexported, so
// tokens are copied into this form once at lex time.
type tok struct {
	kind  tokenKind
	value string
}

func (t tok) is(kind tokenKind, value string) bool {
	return t.kind == kind && t.value == value
}

// lex runs the gorilla scanner to completion. A scanner error ends the
// stream, which the parsers treat like EOF.
func lex(text string) []tok {
	s := scanner.New(text)
	var out []tok
	for {
		t := s.Next()
		switch t.Type {
		case scanner.TokenEOF, scanner.TokenError:
			return out
		case scanner.TokenBOM, scanner.TokenCDO, scanner.TokenCDC:
			continue
		}
		out = append(out, tok{kind: kindOf(t), value: t.Value})
	}
}

func kindOf(t *scanner.Token) tokenKind {
	switch t.Type {
	case scanner.TokenS:
		return kindSpace
	case scanner.TokenComment:
		return kindComment
	case scanner.TokenIdent:
		return kindIdent
	case scanner.TokenAtKeyword:
		return kindAtKeyword
	case scanner.TokenString:
		return kindString
	case scanner.TokenHash:
		return kindHash
	case scanner.TokenNumber:
		return kindNumber
	case scanner.TokenPercentage:
		return kindPercentage
	case scanner.TokenDimension:
		return kindDimension
	case scanner.TokenFunction:
		return kindFunction
	case scanner.TokenIncludes:
		return kindIncludes
	case scanner.TokenChar:
		return kindChar
	}
	return kindOther
}

// unquote strips the delimiters of a string token.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
