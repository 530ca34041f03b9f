/*
Package emulator emulates a sandboxed frame without a browser.

# Overview

A synthesized document is parsed, its body markup becomes a small element
tree and its inline scripts run in order inside an isolated goja VM. The VM
exposes just enough of a browser window for the measurement runtime and simple
fragments:

  - window, window.parent.postMessage, window.innerWidth/innerHeight
  - document.body, document.documentElement (scroll/offset heights)
  - document.querySelector, getElementById, createElement, body.appendChild
  - ResizeObserver, addEventListener("load"/"DOMContentLoaded")
  - setTimeout, setInterval, clearTimeout, requestAnimationFrame
  - console.log/info/warn/error

Timers run on a virtual clock that only moves when Advance is called, so the
fallback schedule of a document can be replayed deterministically. Messages
posted to the parent are delivered to a frame.Channel.

# Isolation

Each script block runs separately. A block that throws is recorded as a
ScriptError and the next block still runs, the way a browser isolates script
elements. require, process, module and exports are removed; external scripts
(src=...) are recorded but never fetched. Every entry into the VM is bounded by
Config.Timeout through vm.Interrupt.

# Layout

There is no layout engine. SetContentHeight sets the height of the body
content; canvases add their height attribute on top. ResizeObserver callbacks
fire after each VM entry when an observed element's height changed.

# Usage

	rt, _ := emulator.New(emulator.DefaultConfig())
	defer rt.Close()
	rt.Load(ctx, doc, channel)
	rt.SetContentHeight(640)
	rt.FireLoad()
	rt.Advance(time.Second)
*/
package emulator
