package html

import (
	"strings"
)

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	}
	return "unknown"
}

// Attribute is a single name="value" pair. Elements keep attributes in
// source order; a repeated name keeps its first value.
type Attribute struct {
	Name  string
	Value string
}

// Node is one entry of the document tree. Type selects the variant:
// elements use TagName, Attrs and Children; text and comment nodes use Data.
// Parent is a back-reference for traversal only; ownership flows from a
// parent to its Children.
type Node struct {
	Type     NodeType
	TagName  string
	Attrs    []Attribute
	Data     string
	Children []*Node
	Parent   *Node

	// NonRendering marks elements from the tokenizer's static table
	// (script, style, head, ...). They stay in the tree but never produce boxes.
	NonRendering bool
}

// NewElement creates a detached element node.
func NewElement(tagName string, attrs ...Attribute) *Node {
	tagName = strings.ToLower(tagName)
	return &Node{
		Type:         ElementNode,
		TagName:      tagName,
		Attrs:        attrs,
		Children:     make([]*Node, 0),
		NonRendering: IsNonRendering(tagName),
	}
}

// NewText creates a detached text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// NewComment creates a detached comment node.
func NewComment(data string) *Node {
	return &Node{Type: CommentNode, Data: data}
}

func (n *Node) IsElement() bool { return n.Type == ElementNode }
func (n *Node) IsText() bool    { return n.Type == TextNode }
func (n *Node) IsComment() bool { return n.Type == CommentNode }

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n.Type != ElementNode {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces the named attribute or appends it.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attribute{Name: name, Value: value})
}

// RemoveAttr deletes the named attribute if present.
func (n *Node) RemoveAttr(name string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

func (n *Node) ID() string {
	id, _ := n.Attr("id")
	return id
}

// Classes returns the whitespace-separated entries of the class attribute.
func (n *Node) Classes() []string {
	c, ok := n.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(c)
}

func (n *Node) HasClass(name string) bool {
	for _, c := range n.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddChild adds a child node and sets up the parent relationship
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AppendText creates a text node and adds it as a child
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.AddChild(NewText(text))
}

// RemoveChild removes the given child from this node's children list,
// clears its parent pointer, and returns the removed child.
// Returns nil if child is not found.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return child
		}
	}
	return nil
}

// Walk visits n and its descendants in document order. Returning false
// from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// ElementByID returns the first element in document order whose id matches.
func (n *Node) ElementByID(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Type == ElementNode && c.ID() == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// ElementsByTag returns every element with the given tag name in document order.
func (n *Node) ElementsByTag(tag string) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Type == ElementNode && c.TagName == tag {
			out = append(out, c)
		}
		return true
	})
	return out
}

// InnerText concatenates the text of all descendant text nodes.
func (n *Node) InnerText() string {
	if n.Type == TextNode {
		return n.Data
	}
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Type != CommentNode {
			sb.WriteString(c.InnerText())
		}
	}
	return sb.String()
}

// SetInnerText replaces all children with a single text node.
func (n *Node) SetInnerText(text string) {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = make([]*Node, 0, 1)
	n.AppendText(text)
}

// SetInnerHTML replaces all children with the nodes parsed from markup.
func (n *Node) SetInnerHTML(markup string) {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = make([]*Node, 0)
	for _, c := range ParseFragment(markup) {
		n.AddChild(c)
	}
}

// CloneNode returns a copy of the node. If deep is true, all descendants
// are cloned recursively. The clone has no parent.
func (n *Node) CloneNode(deep bool) *Node {
	clone := &Node{
		Type:         n.Type,
		TagName:      n.TagName,
		Data:         n.Data,
		NonRendering: n.NonRendering,
	}
	if n.Attrs != nil {
		clone.Attrs = make([]Attribute, len(n.Attrs))
		copy(clone.Attrs, n.Attrs)
	}
	clone.Children = make([]*Node, 0, len(n.Children))
	if deep {
		for _, child := range n.Children {
			clone.AddChild(child.CloneNode(true))
		}
	}
	return clone
}

// Serialize returns the innerHTML of this node: the serialized HTML of
// all child nodes, but not the node's own tags.
func (n *Node) Serialize() string {
	var sb strings.Builder
	for _, child := range n.Children {
		serializeNode(&sb, child)
	}
	return sb.String()
}

// SerializeOuter returns the outerHTML of this node: the node's own tags
// plus all descendants.
func (n *Node) SerializeOuter() string {
	var sb strings.Builder
	serializeNode(&sb, n)
	return sb.String()
}

func serializeNode(sb *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		if n.Parent != nil && isRawTextElement(n.Parent.TagName) {
			sb.WriteString(n.Data)
		} else {
			sb.WriteString(escapeHTML(n.Data))
		}
		return
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.Data)
		sb.WriteString("-->")
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.TagName)
	for _, a := range n.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(a.Value))
		sb.WriteByte('"')
	}

	if isVoidElement(n.TagName) {
		sb.WriteString(">")
		return
	}

	sb.WriteByte('>')
	for _, child := range n.Children {
		serializeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
