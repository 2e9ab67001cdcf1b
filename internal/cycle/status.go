package cycle

import (
	"sync"
	"time"
)

// Status is a copy of the controller state, safe to read from any goroutine.
type Status struct {
	State     string        `json:"state"`
	Topology  Topology      `json:"topology"`
	Content   string        `json:"content"`
	Pending   map[Kind]bool `json:"pending"`
	Gathering bool          `json:"gathering"`
	Sequence  int           `json:"sequence"`
	Ticks     uint64        `json:"ticks"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type statusBox struct {
	mu     sync.RWMutex
	status Status
}

func (c *Controller) publish(now time.Time) {
	pending := make(map[Kind]bool, len(c.latches))
	for k, l := range c.latches {
		pending[k] = l.pending || l.timeTo
	}

	s := Status{
		State:     c.state.String(),
		Topology:  c.cfg.Topology,
		Content:   c.content,
		Pending:   pending,
		Gathering: c.task != nil,
		Sequence:  c.last.Sequence,
		Ticks:     c.ticks,
		UpdatedAt: now,
	}

	c.status.mu.Lock()
	c.status.status = s
	c.status.mu.Unlock()
}

// Status returns the state published by the last tick.
func (c *Controller) Status() Status {
	c.status.mu.RLock()
	defer c.status.mu.RUnlock()
	return c.status.status
}
