package emulator

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/document"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/frame"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/message"
)

func newRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := New(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func page(script string) string {
	return "<!DOCTYPE html><html><head></head><body><script>" + script + "</script></body></html>"
}

func TestRuntimeSecurity(t *testing.T) {
	rt := newRuntime(t)

	require.NoError(t, rt.Load(context.Background(), page(
		`console.log(typeof require, typeof process, typeof module, typeof exports)`,
	), nil))

	logs := rt.Console()
	require.Len(t, logs, 1)
	assert.Equal(t, "undefined undefined undefined undefined", logs[0].Message)
	assert.Empty(t, rt.Errors())
}

func TestRuntimeRecordsErrorsAndContinues(t *testing.T) {
	rt := newRuntime(t)

	doc := "<html><body><script>throw new Error('boom')</script><script>console.log('after')</script></body></html>"
	require.NoError(t, rt.Load(context.Background(), doc, nil))

	errs := rt.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "script[0]", errs[0].Source)
	assert.Contains(t, errs[0].Message, "boom")

	logs := rt.Console()
	require.Len(t, logs, 1)
	assert.Equal(t, "after", logs[0].Message)
}

func TestRuntimeTimeout(t *testing.T) {
	config := DefaultConfig()
	config.Timeout = 50 * time.Millisecond
	rt, err := New(config)
	require.NoError(t, err)
	defer rt.Close()

	require.NoError(t, rt.Load(context.Background(), page("while (true) {}"), nil))

	errs := rt.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "timeout")
}

func TestRuntimeTimeoutDoesNotLeakIntoNextBlock(t *testing.T) {
	config := DefaultConfig()
	config.Timeout = time.Millisecond
	rt, err := New(config)
	require.NoError(t, err)
	defer rt.Close()

	// Busy blocks finish close to the deadline, so some time out and some
	// return just as the timer fires. The trivial blocks must always run.
	var doc strings.Builder
	doc.WriteString("<html><body>")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&doc, "<script>for (var i = 0; i < %d; i++) {}</script>", 2000*(i+1))
		doc.WriteString("<script>console.log('ran')</script>")
	}
	doc.WriteString("</body></html>")

	require.NoError(t, rt.Load(context.Background(), doc.String(), nil))

	assert.Len(t, rt.Console(), 40)
	for _, e := range rt.Errors() {
		var n int
		_, err := fmt.Sscanf(e.Source, "script[%d]", &n)
		require.NoError(t, err)
		assert.Zero(t, n%2, "trivial block %s was interrupted", e.Source)
	}
}

func TestRuntimeVirtualTimers(t *testing.T) {
	rt := newRuntime(t)

	require.NoError(t, rt.Load(context.Background(), page(`
		setTimeout(function () { console.log("b") }, 200);
		setTimeout(function () { console.log("a") }, 100);
		var cancelled = setTimeout(function () { console.log("never") }, 150);
		clearTimeout(cancelled);
		var ticks = 0;
		var iv = setInterval(function () {
			ticks++;
			if (ticks === 3) { clearInterval(iv); console.log("ticks", ticks) }
		}, 40);
	`), nil))

	assert.Equal(t, 3, rt.PendingTimers())

	rt.Advance(150 * time.Millisecond)
	logs := rt.Console()
	require.Len(t, logs, 2)
	assert.Equal(t, "a", logs[0].Message)
	assert.Equal(t, 100*time.Millisecond, logs[0].At)
	assert.Equal(t, "ticks 3", logs[1].Message)
	assert.Equal(t, 120*time.Millisecond, logs[1].At)
	assert.Equal(t, 150*time.Millisecond, rt.Now())

	rt.Advance(time.Second)
	logs = rt.Console()
	require.Len(t, logs, 3)
	assert.Equal(t, "b", logs[2].Message)
	assert.Equal(t, 200*time.Millisecond, logs[2].At)
	assert.Zero(t, rt.PendingTimers())
}

func TestRuntimeLoadLifecycle(t *testing.T) {
	rt := newRuntime(t)
	ctx := context.Background()

	require.NoError(t, rt.Load(ctx, page(`
		document.addEventListener("DOMContentLoaded", function () { console.log("ready", document.readyState) });
		window.addEventListener("load", function (e) { console.log(e.type) });
	`), nil))
	assert.Empty(t, rt.Console())

	rt.FireLoad()
	rt.FireLoad()

	logs := rt.Console()
	require.Len(t, logs, 2)
	assert.Equal(t, "ready complete", logs[0].Message)
	assert.Equal(t, "load", logs[1].Message)

	assert.ErrorIs(t, rt.Load(ctx, page(""), nil), ErrAlreadyLoaded)

	require.NoError(t, rt.Reset())
	require.NoError(t, rt.Load(ctx, page(""), nil))
	assert.Empty(t, rt.Console())

	require.NoError(t, rt.Close())
	assert.ErrorIs(t, rt.Load(ctx, page(""), nil), ErrClosed)
}

func TestRuntimePostMessageOrigins(t *testing.T) {
	rt := newRuntime(t)
	channel := frame.NewChannel()

	var got []message.Envelope
	channel.Subscribe(func(env message.Envelope) {
		got = append(got, env)
	})

	require.NoError(t, rt.Load(context.Background(), page(`
		window.parent.postMessage({ type: "resize", id: "a", height: 10 }, "*");
		window.parent.postMessage({ type: "resize", id: "b", height: 20 }, "https://elsewhere.example");
		window.parent.postMessage({ type: "resize", id: "c", height: 30 }, "http://localhost");
	`), channel))

	posted := rt.Posted()
	require.Len(t, posted, 3)
	assert.True(t, posted[0].Delivered)
	assert.False(t, posted[1].Delivered)
	assert.True(t, posted[2].Delivered)

	require.Len(t, got, 2)
	first, ok := message.FromData(got[0].Data)
	require.True(t, ok)
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, float64(10), first.Height)
	assert.Equal(t, "http://localhost", got[0].Origin)
}

func TestResizeObserver(t *testing.T) {
	rt := newRuntime(t)

	require.NoError(t, rt.Load(context.Background(), page(`
		new ResizeObserver(function (entries) {
			console.log(entries.length, entries[0].contentRect.height, entries[0].target === document.body);
		}).observe(document.body);
	`), nil))

	rt.SetContentHeight(320)
	rt.SetContentHeight(320)
	rt.SetContentHeight(400)

	logs := rt.Console()
	require.Len(t, logs, 3)
	assert.Equal(t, "1 0 true", logs[0].Message)
	assert.Equal(t, "1 320 true", logs[1].Message)
	assert.Equal(t, "1 400 true", logs[2].Message)
}

func TestCanvasContributesHeight(t *testing.T) {
	rt := newRuntime(t)

	require.NoError(t, rt.Load(context.Background(), `<html><body><div id="viz"></div><script>
		var c = document.createElement("canvas");
		c.height = 450;
		document.getElementById("viz").appendChild(c);
		console.log(document.body.scrollHeight, document.querySelector("canvas") === c);
	</script></body></html>`, nil))

	logs := rt.Console()
	require.Len(t, logs, 1)
	assert.Equal(t, "450 true", logs[0].Message)
	assert.Equal(t, 450, rt.DOM().Height(rt.DOM().Body()))
}

func TestExternalScriptsRecorded(t *testing.T) {
	rt := newRuntime(t)

	doc := document.Synthesize(post.FragmentPair{}, "viz-1", document.VisualizationOptions())
	require.NoError(t, rt.Load(context.Background(), doc, nil))

	external := rt.External()
	assert.Contains(t, external, document.DefaultDrawingLibraryURL)
	assert.Empty(t, rt.Errors())
}

func TestFallbackSchedule(t *testing.T) {
	rt := newRuntime(t)

	doc := document.Synthesize(post.FragmentPair{Markup: post.Ptr("<p>hi</p>")}, "content-1", document.ContentOptions())
	require.NoError(t, rt.Load(context.Background(), doc, nil))
	rt.FireLoad()
	rt.Advance(2 * time.Second)

	var at []time.Duration
	for _, p := range rt.Posted() {
		if p.At > 0 {
			at = append(at, p.At)
		}
	}
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 300 * time.Millisecond, time.Second}, at)
}

func TestDiagnoseVisualization(t *testing.T) {
	rt := newRuntime(t)

	pair := post.FragmentPair{
		Markup: post.Ptr(`<div id="viz"></div>`),
		Script: post.Ptr(`
			var c = document.createElement("canvas");
			c.height = 450;
			document.getElementById("viz").appendChild(c);
		`),
	}
	id := frame.Identifier(frame.RoleVisualization, "42")
	doc := document.Synthesize(pair, id, document.VisualizationOptions())

	result, err := Diagnose(context.Background(), rt, Probe{
		Document: doc,
		ID:       id,
		Policy:   frame.DefaultPolicy(),
	})
	require.NoError(t, err)

	assert.Equal(t, "450px", result.FinalHeight)
	assert.NotEmpty(t, result.Reports)
	assert.Empty(t, result.Errors)
	for _, r := range result.Reports {
		assert.Equal(t, float64(450), r.Height)
	}
}

func TestDiagnoseFloorAndLock(t *testing.T) {
	pair := post.FragmentPair{Markup: post.Ptr("<p>short</p>")}
	id := frame.Identifier(frame.RoleContent, "7")

	t.Run("floor", func(t *testing.T) {
		rt := newRuntime(t)
		result, err := Diagnose(context.Background(), rt, Probe{
			Document:      document.Synthesize(pair, id, document.ContentOptions()),
			ID:            id,
			Policy:        frame.DefaultPolicy(),
			ContentHeight: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, "200px", result.FinalHeight)
	})

	t.Run("locked", func(t *testing.T) {
		rt := newRuntime(t)
		opts := document.ContentOptions()
		opts.Locked = true
		result, err := Diagnose(context.Background(), rt, Probe{
			Document:      document.Synthesize(pair, id, opts),
			ID:            id,
			Policy:        frame.LockedPolicy(200),
			ContentHeight: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, "100%", result.FinalHeight)
		require.NotEmpty(t, result.Reports)
		assert.Equal(t, float64(800), result.Reports[0].Height)
	})
}

func TestDiagnoseThrowingFragmentStillMeasures(t *testing.T) {
	rt := newRuntime(t)
	pair := post.FragmentPair{
		Markup: post.Ptr("<p>body</p>"),
		Script: post.Ptr(`undefinedFunction();`),
	}
	id := frame.Identifier(frame.RoleContent, "9")

	result, err := Diagnose(context.Background(), rt, Probe{
		Document:      document.Synthesize(pair, id, document.ContentOptions()),
		ID:            id,
		Policy:        frame.DefaultPolicy(),
		ContentHeight: 640,
	})
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "undefinedFunction")
	assert.Equal(t, "640px", result.FinalHeight)
}

func TestDiagnoseLateGrowth(t *testing.T) {
	rt := newRuntime(t)
	pair := post.FragmentPair{
		Markup: post.Ptr(`<div id="slot"></div>`),
		Script: post.Ptr(`
			setTimeout(function () {
				var c = document.createElement("canvas");
				c.height = 600;
				document.getElementById("slot").appendChild(c);
			}, 200);
		`),
	}
	id := frame.Identifier(frame.RoleVisualization, "3")

	result, err := Diagnose(context.Background(), rt, Probe{
		Document:      document.Synthesize(pair, id, document.VisualizationOptions()),
		ID:            id,
		Policy:        frame.DefaultPolicy(),
		ContentHeight: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "700px", result.FinalHeight)
}

func TestDiagnoseOrigin(t *testing.T) {
	pair := post.FragmentPair{Markup: post.Ptr("<p>hello</p>")}
	id := frame.Identifier(frame.RoleContent, "5")
	doc := document.Synthesize(pair, id, document.ContentOptions())

	t.Run("matching", func(t *testing.T) {
		rt := newRuntime(t)
		result, err := Diagnose(context.Background(), rt, Probe{
			Document: doc, ID: id, Policy: frame.DefaultPolicy(),
			ContentHeight: 320, Origin: DefaultConfig().HostOrigin,
		})
		require.NoError(t, err)
		assert.Equal(t, "320px", result.FinalHeight)
	})

	t.Run("foreign", func(t *testing.T) {
		rt := newRuntime(t)
		result, err := Diagnose(context.Background(), rt, Probe{
			Document: doc, ID: id, Policy: frame.DefaultPolicy(),
			ContentHeight: 320, Origin: "https://example.org",
		})
		require.NoError(t, err)
		assert.Empty(t, result.Reports)
		assert.Equal(t, frame.DefaultInitialHeight, result.FinalHeight)
	})
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("blank", "   "))
	assert.NoError(t, Check("ok", "var a = 1 + 2;"))
	assert.Error(t, Check("bad", "var = ;"))
}

func TestPool(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 2)
	require.NoError(t, err)

	ctx := context.Background()
	rt, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Stats()["in_use"])

	require.NoError(t, rt.Load(ctx, page("console.log('x')"), nil))
	require.NoError(t, pool.Release(rt))
	assert.Equal(t, 2, pool.Stats()["available"])

	id := frame.Identifier(frame.RoleContent, "1")
	result, err := pool.Diagnose(ctx, Probe{
		Document:      document.Synthesize(post.FragmentPair{}, id, document.ContentOptions()),
		ID:            id,
		Policy:        frame.DefaultPolicy(),
		ContentHeight: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, "300px", result.FinalHeight)

	require.NoError(t, pool.Close())
	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, ErrPoolClosed)
}
