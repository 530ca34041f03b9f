package document

import (
	"strconv"
	"strings"
	"time"
)

// measurementRuntime renders the script that reports the document height to
// the parent window. It is written in ES5 so it runs unchanged in old engines.
func measurementRuntime(id string, opts Options) string {
	delays := make([]string, 0, len(opts.Fallbacks))
	for _, d := range opts.Fallbacks {
		delays = append(delays, strconv.FormatInt(d.Round(time.Millisecond).Milliseconds(), 10))
	}

	var b strings.Builder
	b.WriteString("(function () {\n")
	b.WriteString("  var frameId = " + jsString(id) + ";\n")
	b.WriteString("  var targetOrigin = " + jsString(opts.TargetOrigin) + ";\n")
	b.WriteString("  var locked = " + strconv.FormatBool(opts.Locked) + ";\n")
	b.WriteString(`  function measure() {
    var body = document.body;
    var root = document.documentElement;
    var height = Math.max(body.scrollHeight, body.offsetHeight, root.scrollHeight, root.offsetHeight);
    if (locked) {
      height = Math.max(height, window.innerHeight || 0);
    }
    return height;
  }
  function report() {
    window.parent.postMessage({ type: "resize", id: frameId, height: measure() }, targetOrigin);
  }
  var observer = typeof ResizeObserver === "function" ? new ResizeObserver(report) : false;
  var canvasObserved = false;
  function observeCanvas() {
    if (!observer || canvasObserved) {
      return;
    }
    var canvas = document.querySelector("canvas");
    if (canvas) {
      observer.observe(canvas);
      canvasObserved = true;
    }
  }
  if (observer) {
    observer.observe(document.body);
  }
  observeCanvas();
  window.addEventListener("load", report);
`)
	b.WriteString("  var delays = [" + strings.Join(delays, ", ") + "];\n")
	b.WriteString(`  for (var i = 0; i < delays.length; i++) {
    setTimeout(function () {
      observeCanvas();
      report();
    }, delays[i]);
  }
})();
`)
	return b.String()
}
