package emulator

import (
	"sort"
	"time"

	"github.com/dop251/goja"
)

type timer struct {
	id       int64
	due      time.Duration
	interval time.Duration
	seq      int64
	fn       goja.Callable
	args     []goja.Value
}

// clock is a virtual clock with one-shot and repeating timers
type clock struct {
	now    time.Duration
	nextID int64
	seq    int64
	timers map[int64]*timer
}

func newClock() *clock {
	return &clock{timers: make(map[int64]*timer)}
}

func (c *clock) schedule(fn goja.Callable, delay, interval time.Duration, args []goja.Value) int64 {
	if delay < 0 {
		delay = 0
	}
	c.nextID++
	c.seq++
	c.timers[c.nextID] = &timer{
		id:       c.nextID,
		due:      c.now + delay,
		interval: interval,
		seq:      c.seq,
		fn:       fn,
		args:     args,
	}
	return c.nextID
}

func (c *clock) cancel(id int64) {
	delete(c.timers, id)
}

// next pops the earliest timer due at or before until
func (c *clock) next(until time.Duration) *timer {
	var due []*timer
	for _, t := range c.timers {
		if t.due <= until {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})

	t := due[0]
	if t.interval > 0 {
		c.seq++
		t.seq = c.seq
		t.due += t.interval
		fired := *t
		fired.due -= t.interval
		if fired.due > c.now {
			c.now = fired.due
		}
		return &fired
	}
	delete(c.timers, t.id)
	if t.due > c.now {
		c.now = t.due
	}
	return t
}

func (c *clock) pending() int {
	return len(c.timers)
}
