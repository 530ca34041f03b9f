package frame

import (
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostFrame/internal/sandbox/message"
)

// Listener receives every message posted on a channel
type Listener func(message.Envelope)

type subscription struct {
	id       uint64
	listener Listener
}

// Channel is the page-level message channel. Every mounted frame shares it;
// the identifier check in each listener is what keeps them apart.
type Channel struct {
	mu       sync.Mutex
	subs     []subscription
	nextID   uint64
	queue    []message.Envelope
	draining bool
	logger   *zap.Logger
}

// ChannelOption configures a Channel
type ChannelOption func(*Channel)

// WithChannelLogger sets the logger that records recovered listener panics
func WithChannelLogger(logger *zap.Logger) ChannelOption {
	return func(c *Channel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChannel creates an empty channel
func NewChannel(opts ...ChannelOption) *Channel {
	c := &Channel{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a listener. The returned function removes it and is
// safe to call more than once.
func (c *Channel) Subscribe(listener Listener) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription{id: id, listener: listener})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Listeners returns the number of registered listeners
func (c *Channel) Listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Post delivers a message to every listener. Messages are delivered one at a
// time in posting order; a message posted while another is being delivered
// (from a listener or another goroutine) is queued and delivered by the
// goroutine already draining the queue.
func (c *Channel) Post(env message.Envelope) {
	c.mu.Lock()
	c.queue = append(c.queue, env)
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true

	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		subs := append([]subscription(nil), c.subs...)
		c.mu.Unlock()

		for _, s := range subs {
			c.deliver(s.listener, next)
		}

		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}

// PostJSON decodes a JSON payload and posts it. Undecodable payloads are
// dropped, as a browser would never deliver them as structured data.
func (c *Channel) PostJSON(data []byte, origin string) bool {
	var payload any
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return false
	}
	c.Post(message.Envelope{Data: payload, Origin: origin})
	return true
}

// deliver isolates listeners from each other: a panicking listener does not
// stop delivery to the rest.
func (c *Channel) deliver(listener Listener, env message.Envelope) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.Debug("Listener panicked",
				zap.Any("panic", p),
				zap.String("origin", env.Origin),
			)
		}
	}()
	listener(env)
}
