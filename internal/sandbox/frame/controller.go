package frame

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostFrame/internal/sandbox/message"
)

var (
	ErrEmptyIdentifier     = errors.New("frame identifier is empty")
	ErrDuplicateIdentifier = errors.New("frame identifier already mounted")
)

// Controller mounts frames on a channel
type Controller struct {
	channel *Channel
	origin  string
	logger  *zap.Logger

	mu     sync.Mutex
	mounts map[string]*Handle
}

// Option configures a controller
type Option func(*Controller)

// WithOrigin only accepts messages whose origin equals origin. The default
// accepts any origin.
func WithOrigin(origin string) Option {
	return func(c *Controller) {
		c.origin = origin
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a controller on channel
func NewController(channel *Channel, opts ...Option) *Controller {
	c := &Controller{
		channel: channel,
		logger:  zap.NewNop(),
		mounts:  make(map[string]*Handle),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Channel returns the channel the controller listens on
func (c *Controller) Channel() *Channel {
	return c.channel
}

// Mount attaches a sandboxed frame showing doc and registers its listener
func (c *Controller) Mount(doc, id string, policy Policy) (*Handle, error) {
	return c.MountFrame(New(doc, id, "", policy))
}

// MountFrame mounts a frame built with New
func (c *Controller) MountFrame(f Frame) (*Handle, error) {
	id := f.ID
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyIdentifier
	}
	f.Policy = f.Policy.Normalized()
	f.Height = f.Policy.InitialHeight
	f.State = StateInitial
	f.Reports = 0

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.mounts[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateIdentifier, id)
	}

	h := &Handle{
		controller: c,
		frame:      f,
	}
	h.unsubscribe = c.channel.Subscribe(h.receive)
	c.mounts[id] = h

	c.logger.Debug("Frame mounted",
		zap.String("id", id),
		zap.String("initial_height", h.frame.Height),
		zap.Bool("locked", h.frame.Policy.LockToContainer),
	)
	return h, nil
}

// Unmount removes the frame's listener and detaches it. Unmounting twice or
// unmounting nil is a no-op.
func (c *Controller) Unmount(h *Handle) {
	if h == nil || h.controller != c {
		return
	}

	h.unsubscribe()

	h.mu.Lock()
	already := h.frame.State == StateUnmounted
	h.frame.State = StateUnmounted
	id := h.frame.ID
	h.mu.Unlock()

	if already {
		return
	}

	c.mu.Lock()
	if c.mounts[id] == h {
		delete(c.mounts, id)
	}
	c.mu.Unlock()

	c.logger.Debug("Frame unmounted", zap.String("id", id))
}

// UnmountAll tears down every live frame
func (c *Controller) UnmountAll() {
	for _, h := range c.Handles() {
		c.Unmount(h)
	}
}

// Lookup returns the live frame with identifier id
func (c *Controller) Lookup(id string) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.mounts[id]
	return h, ok
}

// Handles returns the live frames
func (c *Controller) Handles() []*Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Handle, 0, len(c.mounts))
	for _, h := range c.mounts {
		out = append(out, h)
	}
	return out
}

// Live returns the number of mounted frames
func (c *Controller) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mounts)
}

// Handle is one mounted frame
type Handle struct {
	controller  *Controller
	unsubscribe func()

	mu    sync.Mutex
	frame Frame
}

// ID returns the sandbox identifier
func (h *Handle) ID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame.ID
}

// Frame returns a snapshot of the element
func (h *Handle) Frame() Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

// Height returns the current CSS height
func (h *Handle) Height() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame.Height
}

// State returns the lifecycle state
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame.State
}

// receive is the frame's channel listener
func (h *Handle) receive(env message.Envelope) {
	c := h.controller
	if c.origin != "" && env.Origin != c.origin {
		return
	}

	report, ok := message.FromData(env.Data)
	if !ok {
		return
	}

	h.mu.Lock()
	if h.frame.State == StateUnmounted || !report.IsResizeFor(h.frame.ID) {
		h.mu.Unlock()
		return
	}
	h.frame.Height = h.frame.Policy.Height(report.Height)
	h.frame.State = StateSized
	h.frame.Reports++
	height := h.frame.Height
	h.mu.Unlock()

	c.logger.Debug("Frame resized",
		zap.String("id", report.ID),
		zap.Float64("reported", report.Height),
		zap.String("height", height),
	)
}
