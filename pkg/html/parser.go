package html

import (
	"strings"

	stdnet "pinecone/std/net"
)

// Document wraps the root of a parsed tree.
type Document struct {
	Root *Node
}

// Styles returns the text of every <style> element in document order,
// followed by data: URI stylesheets referenced from <link rel="stylesheet">
// in the position of the link.
func (d *Document) Styles() []string {
	var out []string
	d.Root.Walk(func(n *Node) bool {
		if n.Type != ElementNode {
			return false
		}
		switch n.TagName {
		case "style":
			if css := n.InnerText(); strings.TrimSpace(css) != "" {
				out = append(out, css)
			}
			return false
		case "link":
			rel, _ := n.Attr("rel")
			href, _ := n.Attr("href")
			if strings.Contains(strings.ToLower(rel), "stylesheet") {
				if css := loadLinkStylesheet(href); css != "" {
					out = append(out, css)
				}
			}
		}
		return true
	})
	return out
}

// Scripts returns the text of every inline <script> element in document order.
func (d *Document) Scripts() []string {
	var out []string
	for _, s := range d.Root.ElementsByTag("script") {
		if _, external := s.Attr("src"); external {
			continue
		}
		if src := s.InnerText(); strings.TrimSpace(src) != "" {
			out = append(out, src)
		}
	}
	return out
}

type Parser struct {
	tokenizer *Tokenizer
	top       *Node   // container for top-level nodes
	stack     []*Node // open elements; stack[0] is top
}

func NewParser(markup string) *Parser {
	top := NewElement("#document")
	return &Parser{
		tokenizer: NewTokenizer(markup),
		top:       top,
		stack:     []*Node{top},
	}
}

// Parse builds the tree. It never fails; malformed markup is repaired as it
// is read.
func Parse(markup string) *Node {
	return NewParser(markup).Parse().Root
}

// ParseDocument is Parse with the document helpers attached.
func ParseDocument(markup string) *Document {
	return NewParser(markup).Parse()
}

// ParseFragment parses markup as the content of an element and returns the
// top-level nodes, detached from any parent.
func ParseFragment(markup string) []*Node {
	p := NewParser(markup)
	p.run()
	nodes := p.top.Children
	for _, n := range nodes {
		n.Parent = nil
	}
	return nodes
}

func (p *Parser) Parse() *Document {
	p.run()
	return &Document{Root: p.root()}
}

func (p *Parser) run() {
	for {
		token := p.tokenizer.NextToken()
		if token.Type == TokenEOF {
			return
		}

		switch token.Type {
		case TokenStartTag:
			// Auto-close <p> when a block-level element is encountered inside it
			if IsBlockElement(token.TagName) {
				p.autoCloseP()
			}

			node := NewElement(token.TagName, token.Attrs...)
			p.currentParent().AddChild(node)

			if !isVoidElement(token.TagName) && !token.SelfClosing {
				p.push(node)
			}

		case TokenText:
			parent := p.currentParent()
			if isRawTextElement(parent.TagName) {
				parent.AppendText(token.Data)
				continue
			}
			// whitespace between tags carries no content
			if strings.Trim(token.Data, spaceChars) == "" {
				continue
			}
			parent.AppendText(token.Data)

		case TokenComment:
			p.currentParent().AddChild(NewComment(token.Data))

		case TokenEndTag:
			p.closeTag(token.TagName)
		}
	}
}

// root picks the document root: a lone top-level <html> element is used as
// is, anything else is wrapped in a synthetic <html>.
func (p *Parser) root() *Node {
	var html *Node
	elements := 0
	others := 0
	for _, c := range p.top.Children {
		switch c.Type {
		case ElementNode:
			elements++
			if c.TagName == "html" {
				html = c
			}
		case TextNode:
			others++
		}
	}
	if elements == 1 && others == 0 && html != nil {
		html.Parent = nil
		return html
	}

	root := NewElement("html")
	for _, c := range p.top.Children {
		root.AddChild(c)
	}
	return root
}

// currentParent returns the current parent node (top of stack)
func (p *Parser) currentParent() *Node {
	return p.stack[len(p.stack)-1]
}

func (p *Parser) push(node *Node) {
	p.stack = append(p.stack, node)
}

// closeTag pops the stack until the matching tag is found and closed.
// Elements above the match are closed implicitly.
func (p *Parser) closeTag(tagName string) {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].TagName == tagName {
			p.stack = p.stack[:i]
			return
		}
	}
	// Tag not found on stack; ignore the end tag
}

// autoCloseP closes an open <p> element if one is on the stack
func (p *Parser) autoCloseP() {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].TagName == "p" {
			p.stack = p.stack[:i]
			return
		}
		// Don't close past block-level containers
		if IsBlockElement(p.stack[i].TagName) {
			return
		}
	}
}

// loadLinkStylesheet loads CSS from a data URI href. Other schemes are not
// fetched.
func loadLinkStylesheet(href string) string {
	body, mediaType, err := stdnet.DecodeDataURI(strings.TrimSpace(href))
	if err != nil || !strings.HasPrefix(strings.ToLower(mediaType), "text/css") {
		return ""
	}
	return string(body)
}
