package rtos

import "sync"

// cpu models a single execution core. Exactly one task owns it at a time and
// ownership changes hands only at suspension points. On release the core goes
// to the highest priority ready task, first come first served among equals.
type cpu struct {
	mu    sync.Mutex
	owner *Task
	ready []*Task
}

// acquire blocks until t owns the core. Returns false if done closed first.
func (c *cpu) acquire(t *Task, done <-chan struct{}) bool {
	c.mu.Lock()
	if c.owner == nil {
		c.owner = t
		c.mu.Unlock()
		return true
	}
	c.ready = append(c.ready, t)
	c.mu.Unlock()

	select {
	case <-t.grant:
		return true
	case <-done:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.ready {
		if r == t {
			c.ready = append(c.ready[:i], c.ready[i+1:]...)
			return false
		}
	}
	// Granted while we were giving up: pass it on.
	<-t.grant
	c.releaseLocked(t)
	return false
}

func (c *cpu) release(t *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked(t)
}

func (c *cpu) releaseLocked(t *Task) {
	if c.owner != t {
		return
	}
	c.owner = nil
	if len(c.ready) == 0 {
		return
	}

	best := 0
	for i := 1; i < len(c.ready); i++ {
		if c.ready[i].priority > c.ready[best].priority {
			best = i
		}
	}
	next := c.ready[best]
	c.ready = append(c.ready[:best], c.ready[best+1:]...)
	c.owner = next
	next.grant <- struct{}{}
}

func (c *cpu) idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner == nil
}
