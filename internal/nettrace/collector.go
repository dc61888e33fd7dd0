package nettrace

import (
	"sync"
	"time"
)

// Collector accumulates phases. httptrace hooks may fire from transport
// goroutines, so every method locks.
type Collector struct {
	mu       sync.Mutex
	started  time.Time
	finished time.Time
	err      string
	phases   []Phase
	active   map[PhaseKind]*Phase
}

func NewCollector() *Collector {
	return &Collector{active: make(map[PhaseKind]*Phase)}
}

func (c *Collector) Begin(kind PhaseKind, ts time.Time) {
	if kind == "" {
		return
	}
	if ts.IsZero() {
		ts = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started.IsZero() || ts.Before(c.started) {
		c.started = ts
	}
	c.active[kind] = &Phase{Kind: kind, Start: ts}
}

// Annotate edits the open phase of kind, if any.
func (c *Collector) Annotate(kind PhaseKind, fn func(*Phase)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p := c.active[kind]; p != nil {
		fn(p)
	}
}

// End closes the open phase of kind. Ending a phase that never began records
// it as zero length.
func (c *Collector) End(kind PhaseKind, ts time.Time, err error) {
	if kind == "" {
		return
	}
	if ts.IsZero() {
		ts = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.active[kind]
	if !ok {
		p = &Phase{Kind: kind, Start: ts}
		if c.started.IsZero() {
			c.started = ts
		}
	}
	if ts.Before(p.Start) {
		ts = p.Start
	}
	p.End = ts
	p.Duration = ts.Sub(p.Start)
	if err != nil {
		p.Err = err.Error()
	}

	c.phases = append(c.phases, *p)
	delete(c.active, kind)
	if ts.After(c.finished) {
		c.finished = ts
	}
}

func (c *Collector) Fail(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	c.err = err.Error()
	c.mu.Unlock()
}

// Complete closes every open phase at ts and marks them incomplete.
func (c *Collector) Complete(ts time.Time) {
	if ts.IsZero() {
		ts = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ts.After(c.finished) {
		c.finished = ts
	}
	for _, p := range c.active {
		p.End = ts
		p.Duration = ts.Sub(p.Start)
		p.Err = "incomplete"
		c.phases = append(c.phases, *p)
	}
	c.active = make(map[PhaseKind]*Phase)
}

// Timeline snapshots the recorded phases. It is nil when nothing was recorded.
func (c *Collector) Timeline() *Timeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.phases) == 0 && c.started.IsZero() {
		return nil
	}

	ph := make([]Phase, len(c.phases))
	copy(ph, c.phases)
	ph = normalizePhases(ph)

	tl := &Timeline{
		Started:   c.started,
		Completed: c.finished,
		Err:       c.err,
		Phases:    ph,
	}
	if !tl.Started.IsZero() && !tl.Completed.Before(tl.Started) {
		tl.Duration = tl.Completed.Sub(tl.Started)
	}
	return tl
}
