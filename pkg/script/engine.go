// Package script provides JavaScript predicate evaluation for candidate
// filtering. A predicate is an expression over the global `element` object;
// elements for which it is truthy survive the filter.
package script

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/element"
	"github.com/devicelab-dev/uiresolve/pkg/logger"
)

// Engine wraps a goja runtime configured for element predicates. The
// runtime is deliberately small: console, a json() helper and caller-set
// variables. No timers, no network.
type Engine struct {
	runtime *goja.Runtime
	mu      sync.Mutex
}

// New creates a predicate engine.
func New() *Engine {
	e := &Engine{runtime: goja.New()}
	e.setupBuiltins()
	return e
}

func (e *Engine) setupBuiltins() {
	e.setupConsole()
	e.runtime.Set("json", e.jsonFunc())
}

// setupConsole adds console.log, console.warn and console.error, routed to
// the process log rather than stdout so predicate noise never corrupts
// machine-readable command output.
func (e *Engine) setupConsole() {
	makeConsoleFunc := func(emit func(format string, v ...interface{})) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.Export()
			}
			emit("script: %v", args)
			return goja.Undefined()
		}
	}

	console := e.runtime.NewObject()
	console.Set("log", makeConsoleFunc(logger.Debug))
	console.Set("warn", makeConsoleFunc(logger.Warn))
	console.Set("error", makeConsoleFunc(logger.Error))
	e.runtime.Set("console", console)
}

// jsonFunc returns the json() helper that parses a JSON string into a JS
// object.
func (e *Engine) jsonFunc() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(e.runtime.NewTypeError("json requires 1 argument"))
		}

		str := call.Arguments[0].String()
		result, err := e.runtime.RunString(fmt.Sprintf("JSON.parse(%q)", str))
		if err != nil {
			panic(e.runtime.NewTypeError(fmt.Sprintf("invalid JSON: %v", err)))
		}
		return result
	}
}

// SetVariable exposes a value to predicates as a global.
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runtime.Set(name, value)
}

// Eval evaluates a JavaScript expression and returns the exported result.
func (e *Engine) Eval(expr string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.runtime.RunString(expr)
	if err != nil {
		return nil, fmt.Errorf("JS eval error: %w", err)
	}
	return result.Export(), nil
}

// FilterElements keeps the elements for which expr is truthy. The expression
// is compiled once and invoked per element with the element visible as the
// global `element`. A compile error fails the whole filter; a per-element
// runtime error fails it too, because a predicate that throws on some
// elements cannot be trusted on the rest.
func (e *Engine) FilterElements(elements []*element.VisualElement, expr string) ([]*element.VisualElement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fnVal, err := e.runtime.RunString("(function(element) { return (" + expr + "); })")
	if err != nil {
		return nil, core.NewResolutionError(core.ErrCategoryScript, "predicate_compile",
			"filter expression does not parse").WithCause(err)
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, core.NewResolutionError(core.ErrCategoryScript, "predicate_compile",
			"filter expression is not callable")
	}

	kept := make([]*element.VisualElement, 0, len(elements))
	for _, el := range elements {
		verdict, err := fn(goja.Undefined(), e.runtime.ToValue(elementObject(el)))
		if err != nil {
			return nil, core.NewResolutionError(core.ErrCategoryScript, "predicate_runtime",
				fmt.Sprintf("filter expression failed on %s", el.ID)).WithCause(err)
		}
		if verdict.ToBoolean() {
			kept = append(kept, el)
		}
	}
	return kept, nil
}

// elementObject flattens an element into the shape predicates see. Bounds
// come pre-split so predicates never parse the raw bounds string.
func elementObject(el *element.VisualElement) map[string]interface{} {
	cx, cy := el.Position.Center()
	return map[string]interface{}{
		"id":          el.ID,
		"text":        el.Text,
		"description": el.Description,
		"type":        el.Type,
		"category":    string(el.Category),
		"importance":  string(el.Importance),
		"name":        el.UserFriendlyName,
		"resourceId":  el.ResourceID,
		"contentDesc": el.ContentDesc,
		"className":   el.ClassName,
		"package":     el.Package,
		"clickable":   el.Clickable,
		"enabled":     el.Enabled,
		"selected":    el.Selected,
		"scrollable":  el.Scrollable,
		"bounds": map[string]interface{}{
			"left":    el.Position.X,
			"top":     el.Position.Y,
			"right":   el.Position.X + el.Position.Width,
			"bottom":  el.Position.Y + el.Position.Height,
			"width":   el.Position.Width,
			"height":  el.Position.Height,
			"centerX": cx,
			"centerY": cy,
		},
	}
}
