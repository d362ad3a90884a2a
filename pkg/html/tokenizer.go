package html

import (
	gohtml "html"
	"strings"
	"unicode/utf8"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenComment
	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenStartTag:
		return "StartTag"
	case TokenEndTag:
		return "EndTag"
	case TokenText:
		return "Text"
	case TokenComment:
		return "Comment"
	case TokenEOF:
		return "EOF"
	}
	return "Unknown"
}

type Token struct {
	Type        TokenType
	TagName     string
	Attrs       []Attribute
	Data        string
	SelfClosing bool // True for tags ending with /> (XHTML self-closing syntax)
}

// tokenizer states
type state int

const (
	stateData state = iota
	stateTagOpen
	stateEndTagOpen
	stateTagName
	stateBeforeAttrName
	stateAttrName
	stateAfterAttrName
	stateBeforeAttrValue
	stateAttrValueQuoted
	stateAttrValueUnquoted
	stateSelfClosingStart
	stateMarkupDeclaration
	stateComment
	stateBogusComment
	stateRawText
)

// Tokenizer is a byte-oriented state machine. It never fails: malformed
// constructs are coerced into text, truncated at EOF or skipped.
type Tokenizer struct {
	input string
	pos   int
	state state

	// rawTag is set after emitting a start tag whose body is raw text.
	rawTag string

	// current tag being built
	tag       Token
	attrName  strings.Builder
	attrValue strings.Builder
	quote     byte
}

func NewTokenizer(markup string) *Tokenizer {
	return &Tokenizer{input: markup}
}

func (t *Tokenizer) eof() bool { return t.pos >= len(t.input) }

// NextToken returns the next token. After the input is exhausted it keeps
// returning TokenEOF.
func (t *Tokenizer) NextToken() Token {
	if t.rawTag != "" {
		tag := t.rawTag
		t.rawTag = ""
		if tok, ok := t.readRawText(tag); ok {
			return tok
		}
	}
	for {
		if t.eof() && t.state == stateData {
			return Token{Type: TokenEOF}
		}
		switch t.state {
		case stateData:
			if t.input[t.pos] == '<' {
				t.pos++
				t.state = stateTagOpen
				continue
			}
			return t.readText()

		case stateTagOpen:
			if t.eof() {
				t.state = stateData
				return Token{Type: TokenText, Data: "<"}
			}
			c := t.input[t.pos]
			switch {
			case c == '!':
				t.pos++
				t.state = stateMarkupDeclaration
			case c == '/':
				t.pos++
				t.state = stateEndTagOpen
			case c == '?':
				t.state = stateBogusComment
			case isASCIILetter(c):
				t.tag = Token{Type: TokenStartTag}
				t.state = stateTagName
			default:
				// "<" not followed by a name is literal text.
				t.state = stateData
				return t.readTextWithPrefix("<")
			}

		case stateEndTagOpen:
			if t.eof() {
				t.state = stateData
				return Token{Type: TokenText, Data: "</"}
			}
			c := t.input[t.pos]
			switch {
			case c == '>':
				// "</>" is dropped
				t.pos++
				t.state = stateData
			case isASCIILetter(c):
				t.tag = Token{Type: TokenEndTag}
				t.state = stateTagName
			default:
				t.state = stateBogusComment
			}

		case stateTagName:
			start := t.pos
			for !t.eof() && isTagNameChar(t.input[t.pos]) {
				t.pos++
			}
			t.tag.TagName = strings.ToLower(t.input[start:t.pos])
			t.state = stateBeforeAttrName

		case stateBeforeAttrName:
			t.skipWhitespace()
			if t.eof() {
				return t.emitTag()
			}
			switch c := t.input[t.pos]; c {
			case '>':
				t.pos++
				return t.emitTag()
			case '/':
				t.pos++
				t.state = stateSelfClosingStart
			case '"', '\'', '<', '=':
				// stray character where a name belongs
				t.pos++
			default:
				t.attrName.Reset()
				t.attrValue.Reset()
				t.state = stateAttrName
			}

		case stateAttrName:
			for !t.eof() {
				c := t.input[t.pos]
				if isSpace(c) || c == '/' || c == '>' || c == '=' {
					break
				}
				t.attrName.WriteByte(toLowerASCII(c))
				t.pos++
			}
			t.state = stateAfterAttrName

		case stateAfterAttrName:
			t.skipWhitespace()
			if t.eof() {
				t.commitAttr()
				return t.emitTag()
			}
			if t.input[t.pos] == '=' {
				t.pos++
				t.state = stateBeforeAttrValue
				continue
			}
			t.commitAttr()
			t.state = stateBeforeAttrName

		case stateBeforeAttrValue:
			t.skipWhitespace()
			if t.eof() {
				t.commitAttr()
				return t.emitTag()
			}
			switch c := t.input[t.pos]; c {
			case '"', '\'':
				t.quote = c
				t.pos++
				t.state = stateAttrValueQuoted
			case '>':
				t.commitAttr()
				t.pos++
				return t.emitTag()
			default:
				t.state = stateAttrValueUnquoted
			}

		case stateAttrValueQuoted:
			end := strings.IndexByte(t.input[t.pos:], t.quote)
			if end < 0 {
				// Unterminated value: take the rest of the tag up to the
				// next '>' so the following markup is not swallowed.
				rest := t.input[t.pos:]
				if gt := strings.IndexByte(rest, '>'); gt >= 0 {
					t.attrValue.WriteString(rest[:gt])
					t.pos += gt
				} else {
					t.attrValue.WriteString(rest)
					t.pos = len(t.input)
				}
				t.commitAttr()
				t.state = stateBeforeAttrName
				continue
			}
			t.attrValue.WriteString(t.input[t.pos : t.pos+end])
			t.pos += end + 1
			t.commitAttr()
			t.state = stateBeforeAttrName

		case stateAttrValueUnquoted:
			for !t.eof() {
				c := t.input[t.pos]
				if isSpace(c) || c == '>' {
					break
				}
				t.attrValue.WriteByte(c)
				t.pos++
			}
			t.commitAttr()
			t.state = stateBeforeAttrName

		case stateSelfClosingStart:
			if !t.eof() && t.input[t.pos] == '>' {
				t.pos++
				t.tag.SelfClosing = true
				return t.emitTag()
			}
			t.state = stateBeforeAttrName

		case stateMarkupDeclaration:
			if strings.HasPrefix(t.input[t.pos:], "--") {
				t.pos += 2
				t.state = stateComment
				continue
			}
			// <!DOCTYPE ...>, <![CDATA[...]]> and friends are skipped.
			t.state = stateBogusComment

		case stateComment:
			end := strings.Index(t.input[t.pos:], "-->")
			var data string
			if end < 0 {
				data = t.input[t.pos:]
				t.pos = len(t.input)
			} else {
				data = t.input[t.pos : t.pos+end]
				t.pos += end + 3
			}
			t.state = stateData
			return Token{Type: TokenComment, Data: data}

		case stateBogusComment:
			end := strings.IndexByte(t.input[t.pos:], '>')
			if end < 0 {
				t.pos = len(t.input)
			} else {
				t.pos += end + 1
			}
			t.state = stateData
		}
	}
}

func (t *Tokenizer) commitAttr() {
	name := t.attrName.String()
	t.attrName.Reset()
	value := gohtml.UnescapeString(t.attrValue.String())
	t.attrValue.Reset()
	if name == "" {
		return
	}
	for _, a := range t.tag.Attrs {
		if a.Name == name {
			return
		}
	}
	t.tag.Attrs = append(t.tag.Attrs, Attribute{Name: name, Value: value})
}

func (t *Tokenizer) emitTag() Token {
	tok := t.tag
	t.tag = Token{}
	t.state = stateData
	if tok.Type == TokenEndTag {
		tok.Attrs = nil
		tok.SelfClosing = false
		return tok
	}
	if isRawTextElement(tok.TagName) && !tok.SelfClosing {
		t.rawTag = tok.TagName
	}
	return tok
}

func (t *Tokenizer) readText() Token {
	return t.readTextWithPrefix("")
}

func (t *Tokenizer) readTextWithPrefix(prefix string) Token {
	start := t.pos
	end := strings.IndexByte(t.input[start:], '<')
	if end < 0 {
		t.pos = len(t.input)
	} else {
		t.pos = start + end
	}
	raw := prefix + t.input[start:t.pos]
	return Token{Type: TokenText, Data: normalizeWhitespace(gohtml.UnescapeString(raw))}
}

// readRawText reads the body of a raw text element up to its end tag. The
// end tag itself is consumed and emitted on the following call.
func (t *Tokenizer) readRawText(tag string) (Token, bool) {
	needle := "</" + tag
	rest := t.input[t.pos:]
	idx := -1
	for i := 0; i+len(needle) <= len(rest); i++ {
		if rest[i] != '<' || !strings.EqualFold(rest[i:i+len(needle)], needle) {
			continue
		}
		after := i + len(needle)
		if after >= len(rest) || rest[after] == '>' || isSpace(rest[after]) || rest[after] == '/' {
			idx = i
			break
		}
	}
	var body string
	if idx < 0 {
		body = t.input[t.pos:]
		t.pos = len(t.input)
	} else {
		body = t.input[t.pos : t.pos+idx]
		t.pos += idx
	}
	if body == "" {
		return Token{}, false
	}
	if tag == "textarea" || tag == "title" {
		body = gohtml.UnescapeString(body)
	}
	return Token{Type: TokenText, Data: body}, true
}

// normalizeWhitespace collapses runs of whitespace to a single space,
// preserving a single space at boundaries. This is important for inline
// flow: "text <em>word</em> more" must keep the spaces between the text
// nodes and the inline element.
func normalizeWhitespace(s string) string {
	if s == "" {
		return ""
	}
	hasLeading := isSpace(s[0])
	hasTrailing := isSpace(s[len(s)-1])

	fields := strings.FieldsFunc(s, func(r rune) bool { return r < utf8.RuneSelf && isSpace(byte(r)) })
	if len(fields) == 0 {
		return " "
	}

	result := strings.Join(fields, " ")
	if hasLeading {
		result = " " + result
	}
	if hasTrailing {
		result = result + " "
	}
	return result
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && isSpace(t.input[t.pos]) {
		t.pos++
	}
}

// spaceChars is the markup whitespace set. U+00A0 is not part of it.
const spaceChars = " \t\n\r\f"

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func isTagNameChar(c byte) bool {
	return isASCIILetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':'
}
