package js

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// consoleAPI routes console.* calls from scripts into the runner's logger.
type consoleAPI struct {
	log *zap.Logger
}

func (c *consoleAPI) register(vm *goja.Runtime) {
	console := vm.NewObject()
	console.Set("log", c.at(c.log.Info))
	console.Set("info", c.at(c.log.Info))
	console.Set("debug", c.at(c.log.Debug))
	console.Set("warn", c.at(c.log.Warn))
	console.Set("error", c.at(c.log.Error))
	vm.Set("console", console)
}

func (c *consoleAPI) at(logf func(string, ...zap.Field)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		logf("console", zap.String("msg", formatArgs(call.Arguments)))
		return goja.Undefined()
	}
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
