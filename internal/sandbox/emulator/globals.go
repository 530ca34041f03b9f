package emulator

import (
	"strconv"
	"strings"
	"time"

	"github.com/dop251/goja"
)

// Minimum delays applied by the emulated browser
const (
	minIntervalDelay = time.Millisecond
	animationFrame   = 16 * time.Millisecond
)

func (r *Runtime) setupGlobals() error {
	vm := r.vm

	// Remove dangerous globals
	vm.Set("require", goja.Undefined())
	vm.Set("process", goja.Undefined())
	vm.Set("module", goja.Undefined())
	vm.Set("exports", goja.Undefined())

	global := vm.GlobalObject()
	vm.Set("window", global)
	vm.Set("self", global)
	vm.Set("innerWidth", r.config.ViewportWidth)
	vm.Set("innerHeight", r.config.ViewportHeight)
	vm.Set("devicePixelRatio", 1)

	parent := vm.NewObject()
	parent.Set("postMessage", r.postMessage)
	vm.Set("parent", parent)
	vm.Set("top", parent)

	location := vm.NewObject()
	location.Set("origin", r.config.HostOrigin)
	location.Set("href", "about:srcdoc")
	vm.Set("location", location)

	vm.Set("addEventListener", r.addEventListener)
	vm.Set("removeEventListener", r.removeEventListener)

	vm.Set("setTimeout", r.makeTimerFunc(false))
	vm.Set("setInterval", r.makeTimerFunc(true))
	vm.Set("clearTimeout", r.clearTimer)
	vm.Set("clearInterval", r.clearTimer)
	vm.Set("requestAnimationFrame", r.requestAnimationFrame)
	vm.Set("cancelAnimationFrame", r.clearTimer)

	vm.Set("ResizeObserver", r.newResizeObserver)

	console := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		console.Set(level, r.makeConsoleFunc(level))
	}
	vm.Set("console", console)

	return nil
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if !r.config.EnableConsole {
			return goja.Undefined()
		}

		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}

		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			At:      r.clock.now,
		})
		return goja.Undefined()
	}
}

func (r *Runtime) makeTimerFunc(repeat bool) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return r.vm.ToValue(0)
		}

		delay := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
		var args []goja.Value
		if len(call.Arguments) > 2 {
			args = append(args, call.Arguments[2:]...)
		}

		var interval time.Duration
		if repeat {
			interval = max(delay, minIntervalDelay)
		}
		return r.vm.ToValue(r.clock.schedule(fn, delay, interval, args))
	}
}

func (r *Runtime) requestAnimationFrame(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(r.vm.NewTypeError("requestAnimationFrame callback must be a function"))
	}
	stamp := r.vm.ToValue(float64(r.clock.now+animationFrame) / float64(time.Millisecond))
	return r.vm.ToValue(r.clock.schedule(fn, animationFrame, 0, []goja.Value{stamp}))
}

func (r *Runtime) clearTimer(call goja.FunctionCall) goja.Value {
	r.clock.cancel(call.Argument(0).ToInteger())
	return goja.Undefined()
}

func (r *Runtime) addEventListener(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		return goja.Undefined()
	}
	switch call.Argument(0).String() {
	case "load":
		r.onLoad = append(r.onLoad, fn)
	case "DOMContentLoaded":
		r.onReady = append(r.onReady, fn)
	}
	return goja.Undefined()
}

// removeEventListener is accepted but ignored; goja callables are not comparable
func (r *Runtime) removeEventListener(goja.FunctionCall) goja.Value {
	return goja.Undefined()
}

func (r *Runtime) newResizeObserver(call goja.ConstructorCall) *goja.Object {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(r.vm.NewTypeError("ResizeObserver callback must be a function"))
	}

	obs := &observer{
		object:   call.This,
		callback: fn,
		last:     make(map[*Element]int),
	}
	r.observers = append(r.observers, obs)

	call.This.Set("observe", func(c goja.FunctionCall) goja.Value {
		elem := r.elementOf(c.Argument(0))
		if elem == nil {
			panic(r.vm.NewTypeError("ResizeObserver.observe requires an element"))
		}
		for _, t := range obs.targets {
			if t == elem {
				return goja.Undefined()
			}
		}
		obs.targets = append(obs.targets, elem)
		obs.last[elem] = -1
		obs.disconnected = false
		return goja.Undefined()
	})
	call.This.Set("unobserve", func(c goja.FunctionCall) goja.Value {
		elem := r.elementOf(c.Argument(0))
		for i, t := range obs.targets {
			if t == elem {
				obs.targets = append(obs.targets[:i], obs.targets[i+1:]...)
				delete(obs.last, elem)
				break
			}
		}
		return goja.Undefined()
	})
	call.This.Set("disconnect", func(goja.FunctionCall) goja.Value {
		obs.targets = nil
		obs.last = make(map[*Element]int)
		obs.disconnected = true
		return goja.Undefined()
	})
	return nil
}

// injectDOM installs the document object for the loaded element tree
func (r *Runtime) injectDOM() {
	vm := r.vm
	dom := r.dom
	document := vm.NewObject()

	document.Set("body", r.elementObject(dom.Body()))
	document.Set("documentElement", r.elementObject(dom.Root()))
	document.Set("readyState", "loading")

	document.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return r.elementObject(dom.First(call.Argument(0).String()))
	})
	document.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return r.elementList(dom.Query(call.Argument(0).String()))
	})
	document.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return r.elementObject(dom.First("#" + call.Argument(0).String()))
	})
	document.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return r.elementList(dom.Query(call.Argument(0).String()))
	})
	document.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		return r.elementList(dom.Query("." + call.Argument(0).String()))
	})
	document.Set("createElement", func(call goja.FunctionCall) goja.Value {
		return r.elementObject(newElement(strings.ToLower(call.Argument(0).String())))
	})
	document.Set("addEventListener", r.addEventListener)
	document.Set("removeEventListener", r.removeEventListener)

	r.document = document
	vm.Set("document", document)
}

func (r *Runtime) elementList(elems []*Element) goja.Value {
	items := make([]any, 0, len(elems))
	for _, elem := range elems {
		items = append(items, r.elementObject(elem))
	}
	return r.vm.NewArray(items...)
}

func (r *Runtime) elementOf(v goja.Value) *Element {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	return r.byObject[obj]
}

// elementObject returns the JS proxy for elem, creating it on first use so
// that identity comparisons hold across lookups
func (r *Runtime) elementObject(elem *Element) goja.Value {
	if elem == nil {
		return goja.Null()
	}
	if obj, ok := r.elements[elem]; ok {
		return obj
	}

	vm := r.vm
	obj := vm.NewObject()
	r.elements[elem] = obj
	r.byObject[obj] = elem

	obj.Set("tagName", strings.ToUpper(elem.TagName))
	obj.Set("nodeName", strings.ToUpper(elem.TagName))
	obj.Set("style", vm.NewObject())

	r.attribute(obj, elem, "id")
	r.attributeAs(obj, elem, "className", "class")
	for _, name := range []string{"scrollHeight", "offsetHeight", "clientHeight"} {
		r.accessor(obj, name, func() goja.Value {
			return vm.ToValue(r.dom.Height(elem))
		}, nil)
	}
	if elem.TagName == "canvas" {
		r.accessor(obj, "height", func() goja.Value {
			return vm.ToValue(canvasHeight(elem))
		}, func(v goja.Value) {
			r.dom.SetAttribute(elem, "height", strconv.FormatInt(v.ToInteger(), 10))
		})
		r.attribute(obj, elem, "width")
	}
	r.accessor(obj, "parentNode", func() goja.Value {
		if elem.Parent == nil {
			return goja.Null()
		}
		return r.elementObject(elem.Parent)
	}, nil)

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		name := strings.ToLower(call.Argument(0).String())
		if _, ok := elem.Attributes[name]; !ok {
			return goja.Null()
		}
		return vm.ToValue(elem.GetAttribute(name))
	})
	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		r.dom.SetAttribute(elem, strings.ToLower(call.Argument(0).String()), call.Argument(1).String())
		return goja.Undefined()
	})
	obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := r.elementOf(call.Argument(0))
		if child == nil {
			panic(vm.NewTypeError("appendChild requires an element"))
		}
		r.dom.Append(elem, child)
		return call.Argument(0)
	})
	obj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return r.elementObject(r.dom.First(call.Argument(0).String()))
	})
	obj.Set("addEventListener", func(goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})

	return obj
}

func (r *Runtime) attribute(obj *goja.Object, elem *Element, name string) {
	r.attributeAs(obj, elem, name, name)
}

func (r *Runtime) attributeAs(obj *goja.Object, elem *Element, prop, attr string) {
	r.accessor(obj, prop, func() goja.Value {
		return r.vm.ToValue(elem.GetAttribute(attr))
	}, func(v goja.Value) {
		r.dom.SetAttribute(elem, attr, v.String())
	})
}

func (r *Runtime) accessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := r.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return get()
	})
	var setter goja.Value
	if set != nil {
		setter = r.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	_ = obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}
