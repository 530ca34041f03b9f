package emulator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/PostFrame/internal/sandbox/frame"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/message"
)

var (
	ErrClosed        = errors.New("sandbox runtime is closed")
	ErrAlreadyLoaded = errors.New("sandbox runtime already holds a document")
)

// maxReflowPasses bounds ResizeObserver delivery loops
const maxReflowPasses = 8

type observer struct {
	object       *goja.Object
	callback     goja.Callable
	targets      []*Element
	last         map[*Element]int
	disconnected bool
}

// Runtime emulates one sandboxed frame on top of a goja VM
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex
	ctx    context.Context

	dom      *DOM
	document *goja.Object
	channel  *frame.Channel
	clock    *clock

	elements  map[*Element]*goja.Object
	byObject  map[*goja.Object]*Element
	observers []*observer
	onReady   []goja.Callable
	onLoad    []goja.Callable
	loaded    bool
	fired     bool

	console  []LogEntry
	errors   []ScriptError
	posted   []Posted
	external []string
}

// New creates a new emulated sandbox
func New(config Config) (*Runtime, error) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxTimerFires <= 0 {
		config.MaxTimerFires = DefaultConfig().MaxTimerFires
	}

	r := &Runtime{config: config}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runtime) init() error {
	r.vm = goja.New()
	r.vm.SetMaxCallStackSize(1024)
	r.ctx = context.Background()
	r.dom = NewDOM()
	r.document = nil
	r.channel = nil
	r.clock = newClock()
	r.elements = make(map[*Element]*goja.Object)
	r.byObject = make(map[*goja.Object]*Element)
	r.observers = nil
	r.onReady = nil
	r.onLoad = nil
	r.loaded = false
	r.fired = false
	r.console = []LogEntry{}
	r.errors = []ScriptError{}
	r.posted = []Posted{}
	r.external = []string{}
	return r.setupGlobals()
}

// Load parses doc, builds its element tree and runs its inline scripts in
// document order. Messages posted to the parent go to channel, which may be nil.
// Script exceptions are recorded, not returned.
func (r *Runtime) Load(ctx context.Context, doc string, channel *frame.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return ErrClosed
	}
	if r.loaded {
		return ErrAlreadyLoaded
	}

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	var body *html.Node
	if nodes := parsed.Find("body").Nodes; len(nodes) > 0 {
		body = nodes[0]
	}

	r.ctx = ctx
	r.dom = ParseDOM(body)
	r.channel = channel
	r.loaded = true
	r.injectDOM()

	var blocks []string
	parsed.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			r.external = append(r.external, src)
			return
		}
		if typ, ok := s.Attr("type"); ok && !isJavaScript(typ) {
			return
		}
		blocks = append(blocks, s.Text())
	})

	for i, src := range blocks {
		name := fmt.Sprintf("script[%d]", i)
		r.guard(name, func() error {
			_, err := r.vm.RunScript(name, src)
			return err
		})
		r.reflow()
	}

	return ctx.Err()
}

// FireLoad dispatches DOMContentLoaded and load once
func (r *Runtime) FireLoad() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil || !r.loaded || r.fired {
		return
	}
	r.fired = true
	if r.document != nil {
		r.document.Set("readyState", "complete")
	}

	for _, fn := range append(r.onReady, r.onLoad...) {
		fn := fn
		r.guard("load", func() error {
			_, err := fn(goja.Undefined(), r.event("load"))
			return err
		})
		r.reflow()
	}
}

// SetContentHeight changes the laid-out height of the body content and
// delivers resize observations
func (r *Runtime) SetContentHeight(px int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return
	}
	r.dom.SetContentHeight(px)
	r.reflow()
}

// Advance moves the virtual clock forward by d, running due timers in order
func (r *Runtime) Advance(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return
	}
	until := r.clock.now + d
	for fires := 0; fires < r.config.MaxTimerFires; fires++ {
		t := r.clock.next(until)
		if t == nil {
			break
		}
		r.guard("timer", func() error {
			_, err := t.fn(goja.Undefined(), t.args...)
			return err
		})
		r.reflow()
	}
	r.clock.now = until
}

// Now returns the virtual time
func (r *Runtime) Now() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clock.now
}

// PendingTimers returns the number of scheduled timers
func (r *Runtime) PendingTimers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clock.pending()
}

// DOM returns the emulated element tree
func (r *Runtime) DOM() *DOM {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dom
}

// Errors returns the exceptions raised so far
func (r *Runtime) Errors() []ScriptError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ScriptError{}, r.errors...)
}

// Posted returns every message posted to the parent
func (r *Runtime) Posted() []Posted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Posted{}, r.posted...)
}

// External returns the src of every external script
func (r *Runtime) External() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.external...)
}

// Console returns captured console output
func (r *Runtime) Console() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogEntry{}, r.console...)
}

// Reset clears the runtime state, dropping every pending timer
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.init()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.channel = nil
	r.clock = newClock()
	r.console = nil
	return nil
}

// guard runs fn with the configured timeout and records any exception.
// Interrupts raised for fn are cleared before the next block runs.
func (r *Runtime) guard(source string, fn func() error) {
	vm := r.vm
	var pending sync.WaitGroup
	interrupt := func(reason string) func() {
		return func() {
			defer pending.Done()
			vm.Interrupt(reason)
		}
	}

	pending.Add(2)
	timer := time.AfterFunc(r.config.Timeout, interrupt("execution timeout exceeded"))
	stop := context.AfterFunc(r.ctx, interrupt("context cancelled"))

	err := fn()

	// A false Stop means the callback started and will call Done itself.
	if timer.Stop() {
		pending.Done()
	}
	if stop() {
		pending.Done()
	}
	pending.Wait()
	vm.ClearInterrupt()

	if err != nil {
		r.errors = append(r.errors, ScriptError{
			Source:  source,
			Message: errorMessage(err),
			At:      r.clock.now,
		})
	}
}

// reflow delivers ResizeObserver entries for observed elements whose height changed
func (r *Runtime) reflow() {
	for pass := 0; pass < maxReflowPasses; pass++ {
		delivered := false
		for _, obs := range r.observers {
			if obs.disconnected {
				continue
			}
			var entries []any
			for _, target := range obs.targets {
				h := r.dom.Height(target)
				if h == obs.last[target] {
					continue
				}
				obs.last[target] = h
				entries = append(entries, r.resizeEntry(target, h))
			}
			if len(entries) == 0 {
				continue
			}
			delivered = true
			obs := obs
			r.guard("observer", func() error {
				_, err := obs.callback(obs.object, r.vm.NewArray(entries...), obs.object)
				return err
			})
		}
		if !delivered {
			return
		}
	}
}

func (r *Runtime) resizeEntry(target *Element, height int) *goja.Object {
	rect := r.vm.NewObject()
	rect.Set("width", r.config.ViewportWidth)
	rect.Set("height", height)

	entry := r.vm.NewObject()
	entry.Set("target", r.elementObject(target))
	entry.Set("contentRect", rect)
	return entry
}

func (r *Runtime) event(typ string) *goja.Object {
	ev := r.vm.NewObject()
	ev.Set("type", typ)
	return ev
}

func isJavaScript(typ string) bool {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "text/javascript", "application/javascript", "module":
		return true
	default:
		return false
	}
}

func errorMessage(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) && exc.Value() != nil {
		return exc.Value().String()
	}
	return err.Error()
}

// postMessage implements window.parent.postMessage. The sandbox shares the
// host origin (allow-same-origin), so "*", "/" and the host origin deliver.
func (r *Runtime) postMessage(call goja.FunctionCall) goja.Value {
	data := call.Argument(0).Export()
	target := "/"
	if arg := call.Argument(1); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
		target = arg.String()
	}

	delivered := target == "*" || target == "/" || target == r.config.HostOrigin
	r.posted = append(r.posted, Posted{
		Data:         data,
		TargetOrigin: target,
		Delivered:    delivered,
		At:           r.clock.now,
	})

	if delivered && r.channel != nil {
		r.channel.Post(message.Envelope{Data: data, Origin: r.config.HostOrigin})
	}
	return goja.Undefined()
}
