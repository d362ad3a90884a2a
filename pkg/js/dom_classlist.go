package js

import (
	"slices"
	"strings"

	"github.com/dop251/goja"

	"pinecone/pkg/html"
)

// newClassListProxy exposes the class attribute of node as element.classList.
func newClassListProxy(ctx *domContext, node *html.Node) goja.Value {
	return ctx.vm.NewDynamicObject(&classListAccessor{ctx: ctx, node: node})
}

type classListAccessor struct {
	ctx  *domContext
	node *html.Node
}

var classListKeys = []string{"length", "value", "add", "remove", "toggle", "contains", "item"}

func (cl *classListAccessor) set(classes []string) {
	cl.node.SetAttr("class", strings.Join(classes, " "))
}

func (cl *classListAccessor) Get(key string) goja.Value {
	vm := cl.ctx.vm
	classes := cl.node.Classes()

	switch key {
	case "length":
		return vm.ToValue(len(classes))
	case "value":
		return vm.ToValue(strings.Join(classes, " "))
	case "add":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			cls := cl.node.Classes()
			for _, arg := range call.Arguments {
				if t := arg.String(); !slices.Contains(cls, t) {
					cls = append(cls, t)
				}
			}
			cl.set(cls)
			return goja.Undefined()
		})
	case "remove":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			cls := cl.node.Classes()
			for _, arg := range call.Arguments {
				t := arg.String()
				cls = slices.DeleteFunc(cls, func(c string) bool { return c == t })
			}
			cl.set(cls)
			return goja.Undefined()
		})
	case "toggle":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				panic(vm.NewTypeError("toggle: 1 argument required"))
			}
			t := call.Arguments[0].String()
			cls := cl.node.Classes()
			has := slices.Contains(cls, t)
			want := !has
			if len(call.Arguments) > 1 {
				want = call.Arguments[1].ToBoolean()
			}
			switch {
			case want && !has:
				cls = append(cls, t)
			case !want:
				cls = slices.DeleteFunc(cls, func(c string) bool { return c == t })
			}
			cl.set(cls)
			return vm.ToValue(want)
		})
	case "contains":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(len(call.Arguments) > 0 && slices.Contains(classes, call.Arguments[0].String()))
		})
	case "item":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			if i, ok := indexKey(call.Arguments[0].String(), len(classes)); ok {
				return vm.ToValue(classes[i])
			}
			return goja.Null()
		})
	}
	if i, ok := indexKey(key, len(classes)); ok {
		return vm.ToValue(classes[i])
	}
	return goja.Undefined()
}

func (cl *classListAccessor) Set(key string, val goja.Value) bool {
	if key != "value" {
		return false
	}
	cl.node.SetAttr("class", val.String())
	return true
}

func (cl *classListAccessor) Has(key string) bool {
	if slices.Contains(classListKeys, key) {
		return true
	}
	_, ok := indexKey(key, len(cl.node.Classes()))
	return ok
}

func (cl *classListAccessor) Delete(string) bool { return false }

func (cl *classListAccessor) Keys() []string { return classListKeys }
