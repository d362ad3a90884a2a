package html

// Static tag tables shared by the tokenizer, tree builder and the
// user-agent stylesheet.

var voidElements = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true,
	"meta": true, "link": true, "area": true, "base": true,
	"col": true, "embed": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// Elements whose body is read verbatim up to the matching end tag.
var rawTextElements = map[string]bool{
	"script": true, "style": true, "textarea": true, "title": true,
}

var nonRenderingElements = map[string]bool{
	"head": true, "script": true, "style": true, "title": true,
	"meta": true, "link": true, "template": true, "noscript": true,
	"base": true,
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "center": true, "details": true, "dialog": true, "dd": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hgroup": true, "hr": true, "html": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "ul": true,
}

func isVoidElement(tag string) bool { return voidElements[tag] }

func isRawTextElement(tag string) bool { return rawTextElements[tag] }

// IsNonRendering reports whether elements with this tag are kept in the
// tree but skipped by cascade consumers and layout.
func IsNonRendering(tag string) bool { return nonRenderingElements[tag] }

// IsBlockElement reports whether the tag is block-level by default.
func IsBlockElement(tag string) bool { return blockElements[tag] }

// BlockElements returns the block-level tag names. The slice is a copy.
func BlockElements() []string {
	out := make([]string, 0, len(blockElements))
	for tag := range blockElements {
		out = append(out, tag)
	}
	return out
}

// NonRenderingElements returns the non-rendering tag names. The slice is a copy.
func NonRenderingElements() []string {
	out := make([]string, 0, len(nonRenderingElements))
	for tag := range nonRenderingElements {
		out = append(out, tag)
	}
	return out
}
