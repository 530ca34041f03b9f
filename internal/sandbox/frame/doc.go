/*
Package frame implements the host side of the sandbox protocol: mounting
sandboxed frames and keeping their height in sync with the size reports their
documents emit.

# Model

  - Channel: the page-level message channel shared by every mounted frame.
    Delivery is serialized, one message at a time, like a browser event loop.
  - Controller: mounts and unmounts frames on a channel.
  - Handle: one mounted frame. It owns exactly one channel listener, which is
    closed over its identifier and ignores every message that is not a resize
    report for that identifier.
  - Policy: per-mount sizing rules (initial height, pixel floor, lock to the
    container).

# Lifecycle

	Initial(height = policy.InitialHeight)
	    -> Sized(height = f(report))   re-entered on every accepted report
	    -> Unmounted                   terminal

Unmount removes the listener before the frame is detached, and the listener
re-checks the handle state under its lock, so a report that is already in
flight can never mutate an unmounted frame.

The browser counterpart of this package lives in internal/api/web/static/host.js
and applies the same rules to real iframe elements.
*/
package frame
