package emulator

import (
	"context"
	"time"

	"github.com/GriffinCanCode/PostFrame/internal/sandbox/frame"
)

// Config defines emulator configuration
type Config struct {
	Timeout        time.Duration // Bound on every entry into the VM
	EnableConsole  bool          // Capture console.log/warn/error
	ViewportWidth  int           // window.innerWidth
	ViewportHeight int           // window.innerHeight
	HostOrigin     string        // Origin of the host page; also the sandbox origin (allow-same-origin)
	MaxTimerFires  int           // Upper bound on timer callbacks per Advance
}

// LogEntry represents console output
type LogEntry struct {
	Level   string        `json:"level"`   // log, info, warn, error
	Message string        `json:"message"` // Log message
	At      time.Duration `json:"at"`      // Virtual time
}

// ScriptError is an exception raised inside the sandbox
type ScriptError struct {
	Source  string        `json:"source"`  // "script[N]", "timer", "load", "observer"
	Message string        `json:"message"` // Exception text
	At      time.Duration `json:"at"`      // Virtual time
}

// Posted is a message the sandbox sent to its parent
type Posted struct {
	Data         any
	TargetOrigin string
	Delivered    bool
	At           time.Duration
}

// Sandbox defines the emulator interface
type Sandbox interface {
	Load(ctx context.Context, doc string, channel *frame.Channel) error
	FireLoad()
	SetContentHeight(px int)
	Advance(d time.Duration)
	Reset() error
	Close() error
}

// DefaultConfig returns the emulator defaults
func DefaultConfig() Config {
	return Config{
		Timeout:        2 * time.Second,
		EnableConsole:  true,
		ViewportWidth:  1280,
		ViewportHeight: 800,
		HostOrigin:     "http://localhost",
		MaxTimerFires:  10_000,
	}
}
