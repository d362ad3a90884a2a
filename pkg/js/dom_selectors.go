package js

import (
	"strings"

	"github.com/dop251/goja"

	"pinecone/pkg/css"
	"pinecone/pkg/html"
)

// parseSelectorGroup parses "a, b.c" into its selectors. Unparseable
// entries throw a SyntaxError in the calling script.
func parseSelectorGroup(vm *goja.Runtime, method, group string) []css.Selector {
	var out []css.Selector
	for _, part := range strings.Split(group, ",") {
		sel, ok := css.ParseSelector(strings.TrimSpace(part))
		if !ok {
			panic(vm.NewGoError(&selectorError{method: method, selector: group}))
		}
		out = append(out, sel)
	}
	return out
}

type selectorError struct {
	method, selector string
}

func (e *selectorError) Error() string {
	return e.method + ": '" + e.selector + "' is not a valid selector"
}

func matchesAny(n *html.Node, sels []css.Selector) bool {
	for _, s := range sels {
		if css.MatchesSelector(n, s) {
			return true
		}
	}
	return false
}

// descendants returns the elements below root, in document order, that match
// any of sels. limit <= 0 means no limit.
func descendants(root *html.Node, sels []css.Selector, limit int) []*html.Node {
	var out []*html.Node
	if root == nil {
		return nil
	}
	root.Walk(func(n *html.Node) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		if n != root && matchesAny(n, sels) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func selectorArg(ctx *domContext, call goja.FunctionCall, method string) []css.Selector {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError(method + ": 1 argument required"))
	}
	return parseSelectorGroup(ctx.vm, method, call.Arguments[0].String())
}

func querySelectorFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		found := descendants(root, selectorArg(ctx, call, "querySelector"), 1)
		if len(found) == 0 {
			return goja.Null()
		}
		return ctx.elementProxy(found[0])
	}
}

func querySelectorAllFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		return ctx.elementArray(descendants(root, selectorArg(ctx, call, "querySelectorAll"), 0))
	}
}

func matchesFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		return ctx.vm.ToValue(matchesAny(node, selectorArg(ctx, call, "matches")))
	}
}
