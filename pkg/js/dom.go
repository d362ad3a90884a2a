package js

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"pinecone/pkg/html"
)

// domContext holds the state shared by the DOM bindings of one runtime. The
// node-to-proxy cache returns the same JS object for the same node, so ===
// works on elements.
type domContext struct {
	vm    *goja.Runtime
	root  *html.Node
	cache map[*html.Node]goja.Value
	nodes map[*goja.Object]*html.Node
}

// registerDocument installs the global document object bound to root.
func registerDocument(vm *goja.Runtime, root *html.Node) *domContext {
	ctx := &domContext{
		vm:    vm,
		root:  root,
		cache: make(map[*html.Node]goja.Value),
		nodes: make(map[*goja.Object]*html.Node),
	}

	doc := vm.NewObject()
	doc.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if root == nil || len(call.Arguments) == 0 {
			return goja.Null()
		}
		return ctx.proxyOrNull(root.ElementByID(call.Arguments[0].String()))
	})
	doc.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if root == nil || len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(root.ElementsByTag(strings.ToLower(call.Arguments[0].String())))
	})
	doc.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		if root == nil || len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(elementsByClass(root, call.Arguments[0].String()))
	})
	doc.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("createElement: 1 argument required"))
		}
		return ctx.elementProxy(html.NewElement(call.Arguments[0].String()))
	})
	doc.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		data := ""
		if len(call.Arguments) > 0 {
			data = call.Arguments[0].String()
		}
		return ctx.elementProxy(html.NewText(data))
	})
	doc.Set("querySelector", querySelectorFn(ctx, root))
	doc.Set("querySelectorAll", querySelectorAllFn(ctx, root))
	doc.DefineAccessorProperty("documentElement", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return ctx.proxyOrNull(root)
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	doc.DefineAccessorProperty("body", vm.ToValue(func(goja.FunctionCall) goja.Value {
		if root == nil {
			return goja.Null()
		}
		if bodies := root.ElementsByTag("body"); len(bodies) > 0 {
			return ctx.elementProxy(bodies[0])
		}
		return ctx.elementProxy(root)
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	vm.Set("document", doc)
	return ctx
}

func elementsByClass(root *html.Node, class string) []*html.Node {
	var out []*html.Node
	root.Walk(func(n *html.Node) bool {
		if n.IsElement() && n.HasClass(class) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (ctx *domContext) proxyOrNull(n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	return ctx.elementProxy(n)
}

// elementArray creates a JS array of node proxies.
func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	vals := make([]any, len(nodes))
	for i, n := range nodes {
		vals[i] = ctx.elementProxy(n)
	}
	return ctx.vm.NewArray(vals...)
}

// elementProxy creates (or retrieves from cache) the JS object wrapping node.
func (ctx *domContext) elementProxy(node *html.Node) goja.Value {
	if v, ok := ctx.cache[node]; ok {
		return v
	}
	obj := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = obj
	ctx.nodes[obj] = node
	return obj
}

// unwrapNode returns the node behind a proxy, or nil for anything else.
func (ctx *domContext) unwrapNode(val goja.Value) *html.Node {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	return ctx.nodes[obj]
}

// elementAccessor implements goja.DynamicObject over one node.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

var elementKeys = []string{
	"nodeType", "nodeName", "tagName", "nodeValue", "id", "className",
	"textContent", "innerHTML", "outerHTML",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "childNodes", "parentNode", "parentElement", "firstChild", "lastChild",
	"appendChild", "removeChild", "remove",
	"querySelector", "querySelectorAll", "matches", "classList", "style",
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm
	n := e.node
	switch key {
	case "nodeType":
		switch n.Type {
		case html.TextNode:
			return vm.ToValue(3)
		case html.CommentNode:
			return vm.ToValue(8)
		}
		return vm.ToValue(1)
	case "nodeName":
		switch n.Type {
		case html.TextNode:
			return vm.ToValue("#text")
		case html.CommentNode:
			return vm.ToValue("#comment")
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "tagName":
		if !n.IsElement() {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "nodeValue":
		if n.IsElement() {
			return goja.Null()
		}
		return vm.ToValue(n.Data)
	case "id":
		return vm.ToValue(n.ID())
	case "className":
		cls, _ := n.Attr("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(n.InnerText())
	case "innerHTML":
		return vm.ToValue(n.Serialize())
	case "outerHTML":
		return vm.ToValue(n.SerializeOuter())
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			v, ok := n.Attr(strings.ToLower(call.Arguments[0].String()))
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(v)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) >= 2 && n.IsElement() {
				n.SetAttr(strings.ToLower(call.Arguments[0].String()), call.Arguments[1].String())
			}
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			_, ok := n.Attr(strings.ToLower(call.Arguments[0].String()))
			return vm.ToValue(ok)
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				n.RemoveAttr(strings.ToLower(call.Arguments[0].String()))
			}
			return goja.Undefined()
		})
	case "children":
		var els []*html.Node
		for _, c := range n.Children {
			if c.IsElement() {
				els = append(els, c)
			}
		}
		return e.ctx.elementArray(els)
	case "childNodes":
		return e.ctx.elementArray(n.Children)
	case "parentNode", "parentElement":
		return e.ctx.proxyOrNull(n.Parent)
	case "firstChild":
		if len(n.Children) == 0 {
			return goja.Null()
		}
		return e.ctx.elementProxy(n.Children[0])
	case "lastChild":
		if len(n.Children) == 0 {
			return goja.Null()
		}
		return e.ctx.elementProxy(n.Children[len(n.Children)-1])
	case "appendChild":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			child := e.argNode(call, "appendChild")
			if child.Parent != nil {
				child.Parent.RemoveChild(child)
			}
			n.AddChild(child)
			return call.Arguments[0]
		})
	case "removeChild":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			child := e.argNode(call, "removeChild")
			if n.RemoveChild(child) == nil {
				panic(vm.NewTypeError("removeChild: node is not a child of this element"))
			}
			return call.Arguments[0]
		})
	case "remove":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
			return goja.Undefined()
		})
	case "querySelector":
		return vm.ToValue(querySelectorFn(e.ctx, n))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(e.ctx, n))
	case "matches":
		return vm.ToValue(matchesFn(e.ctx, n))
	case "classList":
		return newClassListProxy(e.ctx, n)
	case "style":
		return vm.NewDynamicObject(&styleAccessor{vm: vm, node: n})
	}
	return goja.Undefined()
}

// argNode returns the node proxied by the first argument or throws a
// TypeError naming the method.
func (e *elementAccessor) argNode(call goja.FunctionCall, method string) *html.Node {
	var child *html.Node
	if len(call.Arguments) > 0 {
		child = e.ctx.unwrapNode(call.Arguments[0])
	}
	if child == nil {
		panic(e.ctx.vm.NewTypeError(method + ": argument is not a node"))
	}
	return child
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	n := e.node
	switch key {
	case "textContent":
		if n.IsElement() {
			n.SetInnerText(val.String())
		} else {
			n.Data = val.String()
		}
	case "innerHTML":
		if !n.IsElement() {
			return false
		}
		n.SetInnerHTML(val.String())
	case "nodeValue":
		if n.IsElement() {
			return false
		}
		n.Data = val.String()
	case "id":
		n.SetAttr("id", val.String())
	case "className":
		n.SetAttr("class", val.String())
	default:
		return false
	}
	return true
}

func (e *elementAccessor) Has(key string) bool {
	return slices.Contains(elementKeys, key)
}

func (e *elementAccessor) Delete(string) bool { return false }

func (e *elementAccessor) Keys() []string { return elementKeys }

// styleAccessor maps camelCase properties onto the inline style attribute.
type styleAccessor struct {
	vm   *goja.Runtime
	node *html.Node
}

func (s *styleAccessor) Get(key string) goja.Value {
	decls := s.decls()
	if v, ok := decls.get(camelToKebab(key)); ok {
		return s.vm.ToValue(v)
	}
	return s.vm.ToValue("")
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	decls := s.decls()
	decls.set(camelToKebab(key), val.String())
	s.node.SetAttr("style", decls.String())
	return true
}

func (s *styleAccessor) Has(string) bool { return true }

func (s *styleAccessor) Delete(key string) bool {
	decls := s.decls()
	decls.set(camelToKebab(key), "")
	s.node.SetAttr("style", decls.String())
	return true
}

func (s *styleAccessor) Keys() []string {
	decls := s.decls()
	keys := make([]string, len(decls))
	for i, d := range decls {
		keys[i] = d[0]
	}
	return keys
}

func (s *styleAccessor) decls() inlineStyle {
	attr, _ := s.node.Attr("style")
	return parseInlineStyle(attr)
}

// inlineStyle keeps declarations in source order so rewriting the attribute
// is stable.
type inlineStyle [][2]string

func parseInlineStyle(attr string) inlineStyle {
	var out inlineStyle
	for _, decl := range strings.Split(attr, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		prop = strings.ToLower(strings.TrimSpace(prop))
		if !ok || prop == "" {
			continue
		}
		out.set(prop, strings.TrimSpace(val))
	}
	return out
}

func (st inlineStyle) get(prop string) (string, bool) {
	for _, d := range st {
		if d[0] == prop {
			return d[1], true
		}
	}
	return "", false
}

// set replaces prop, appends it, or removes it when val is empty.
func (st *inlineStyle) set(prop, val string) {
	for i, d := range *st {
		if d[0] == prop {
			if val == "" {
				*st = append((*st)[:i], (*st)[i+1:]...)
			} else {
				(*st)[i][1] = val
			}
			return
		}
	}
	if val != "" {
		*st = append(*st, [2]string{prop, val})
	}
}

func (st inlineStyle) String() string {
	parts := make([]string, len(st))
	for i, d := range st {
		parts[i] = d[0] + ": " + d[1]
	}
	return strings.Join(parts, "; ")
}

// camelToKebab converts backgroundColor to background-color.
func camelToKebab(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// indexKey reports whether key is an array index below n.
func indexKey(key string, n int) (int, bool) {
	i, err := strconv.Atoi(key)
	return i, err == nil && i >= 0 && i < n
}
