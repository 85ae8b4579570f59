package state

import "sync/atomic"

// Redrawer schedules a repaint of whatever displays the surface.
type Redrawer interface {
	RequestRedraw()
}

// RedrawFunc adapts a plain function to Redrawer.
type RedrawFunc func()

func (f RedrawFunc) RequestRedraw() { f() }

// Coalescer collapses redraw requests into a single paint. RequestRedraw
// hands a paint job to schedule (for example the UI thread's next tick);
// further requests before that job runs are dropped. The job reads state
// when it runs, so the frame always shows the latest committed lines.
type Coalescer struct {
	schedule func(func())
	paint    func()
	pending  atomic.Bool
}

// NewCoalescer returns a Coalescer that runs paint through schedule.
func NewCoalescer(schedule func(func()), paint func()) *Coalescer {
	return &Coalescer{schedule: schedule, paint: paint}
}

// RequestRedraw implements Redrawer.
func (c *Coalescer) RequestRedraw() {
	if !c.pending.CompareAndSwap(false, true) {
		return
	}
	c.schedule(func() {
		c.pending.Store(false)
		c.paint()
	})
}

// Pending reports whether a paint is scheduled but has not run yet.
func (c *Coalescer) Pending() bool {
	return c.pending.Load()
}
