package state

import (
	"sync"

	"LocalBoard/internal/geom"
	"LocalBoard/internal/logging"
)

// ChangeKind says what happened to the surface.
type ChangeKind int

const (
	// ChangeAdd is a line committed to the surface.
	ChangeAdd ChangeKind = iota
	// ChangeClear is one or more lines removed.
	ChangeClear
	// ChangeReplace is a committed line whose points were rewritten.
	ChangeReplace
	// ChangeReset is several edits collapsed by Batch or Reload.
	ChangeReset
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeClear:
		return "clear"
	case ChangeReplace:
		return "replace"
	case ChangeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Change is delivered to observers after a structural edit. Line is nil for
// clears and resets.
type Change struct {
	Kind ChangeKind
	Line *Line
}

// Observer receives surface changes.
type Observer func(Change)

type observerEntry struct {
	id int
	fn Observer
}

// Surface is the ordered collection of committed lines. Insertion order is
// completion order.
//
// Every structural edit notifies observers once and requests one redraw.
// Edits made inside Batch are folded into a single ChangeReset.
type Surface struct {
	mu    sync.RWMutex
	lines []*Line
	ids   map[string]struct{}

	observers []observerEntry
	nextObsID int
	redraw    Redrawer

	batchDepth int
	batchDirty bool
	quiet      int
	reloading  bool
}

// NewSurface creates an empty surface. redraw may be nil and set later with
// SetRedrawer.
func NewSurface(redraw Redrawer) *Surface {
	return &Surface{
		lines:  make([]*Line, 0),
		ids:    make(map[string]struct{}),
		redraw: redraw,
	}
}

// SetRedrawer replaces the redraw target.
func (s *Surface) SetRedrawer(r Redrawer) {
	s.redraw = r
}

// RequestRedraw forwards to the surface's redrawer, if any.
func (s *Surface) RequestRedraw() {
	if s.redraw != nil {
		s.redraw.RequestRedraw()
	}
}

// Observe registers fn and returns a func that removes it.
func (s *Surface) Observe(fn Observer) (cancel func()) {
	s.mu.Lock()
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Lines returns a snapshot of the committed lines in completion order.
func (s *Surface) Lines() []*Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len is the number of committed lines.
func (s *Surface) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Contains reports whether l is committed to this surface.
func (s *Surface) Contains(l *Line) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(l) >= 0
}

func (s *Surface) indexOf(l *Line) int {
	for i, x := range s.lines {
		if x == l {
			return i
		}
	}
	return -1
}

// AddLine commits l. It returns false for nil lines and for ids already on
// the surface, which happens when a shared line is relayed back to us.
func (s *Surface) AddLine(l *Line) bool {
	if l == nil {
		return false
	}

	s.mu.Lock()
	if l.ID != "" {
		if _, exists := s.ids[l.ID]; exists {
			s.mu.Unlock()
			logging.Logger().Debug("[SURFACE] line already present, ignoring", "id", l.ID)
			return false
		}
		s.ids[l.ID] = struct{}{}
	}
	s.lines = append(s.lines, l)
	s.mu.Unlock()

	logging.Logger().Debug("[SURFACE] line added", "id", l.ID, "points", len(l.Points))
	s.notify(Change{Kind: ChangeAdd, Line: l})
	return true
}

// Clear removes every committed line.
func (s *Surface) Clear() {
	s.mu.Lock()
	n := len(s.lines)
	s.lines = make([]*Line, 0)
	s.ids = make(map[string]struct{})
	s.mu.Unlock()

	if n == 0 {
		return
	}
	logging.Logger().Debug("[SURFACE] cleared", "removed", n)
	s.notify(Change{Kind: ChangeClear})
}

// ClearOwner removes the lines drawn by owner and returns how many went.
func (s *Surface) ClearOwner(owner string) int {
	s.mu.Lock()
	kept := make([]*Line, 0, len(s.lines))
	removed := 0
	for _, l := range s.lines {
		if l.OwnerID == owner {
			delete(s.ids, l.ID)
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.lines = kept
	s.mu.Unlock()

	if removed == 0 {
		return 0
	}
	logging.Logger().Debug("[SURFACE] cleared owner", "owner", owner, "removed", removed)
	s.notify(Change{Kind: ChangeClear})
	return removed
}

// ReplaceAllPoints swaps l's points for a copy of pts in one step.
// Notifications are held back for the duration of the swap, so observers
// only ever see the old or the new sequence. Observers hear about the swap
// only when l is committed to this surface.
func (s *Surface) ReplaceAllPoints(l *Line, pts []geom.Point) {
	if l == nil {
		return
	}
	next := geom.Clone(pts)

	committed := func() bool {
		restore := s.quiesce()
		defer restore()

		s.mu.Lock()
		defer s.mu.Unlock()
		l.Points = next
		return s.indexOf(l) >= 0
	}()

	if committed {
		s.notify(Change{Kind: ChangeReplace, Line: l})
	}
}

// Batch runs fn with notifications folded into a single ChangeReset and a
// single redraw, delivered when the outermost Batch returns.
func (s *Surface) Batch(fn func()) {
	s.batchDepth++
	defer func() {
		s.batchDepth--
		if s.batchDepth == 0 && s.batchDirty {
			s.batchDirty = false
			s.emit(Change{Kind: ChangeReset})
		}
	}()
	fn()
}

// Reload replaces the collection with lines and recomputes each line's
// drawable points from its raw samples. The whole reload produces one
// ChangeReset. Calling Reload from an observer while a reload is running is
// ignored.
func (s *Surface) Reload(lines []*Line) {
	if s.reloading {
		logging.Logger().Debug("[SURFACE] nested reload ignored")
		return
	}
	s.reloading = true
	defer func() { s.reloading = false }()

	s.Batch(func() {
		restore := s.quiesce()
		defer restore()

		s.mu.Lock()
		s.lines = make([]*Line, 0, len(lines))
		s.ids = make(map[string]struct{}, len(lines))
		for _, l := range lines {
			if l == nil {
				continue
			}
			if l.ID != "" {
				if _, dup := s.ids[l.ID]; dup {
					continue
				}
				s.ids[l.ID] = struct{}{}
			}
			raw := l.RawPoints()
			l.Points = l.path()
			l.Raw = raw
			s.lines = append(s.lines, l)
		}
		s.mu.Unlock()
		s.batchDirty = true
	})
}

// quiesce suppresses notifications until the returned func is called.
// Callers defer it so observers come back on every exit path.
func (s *Surface) quiesce() (restore func()) {
	s.quiet++
	return func() { s.quiet-- }
}

func (s *Surface) notify(c Change) {
	if s.quiet > 0 {
		return
	}
	if s.batchDepth > 0 {
		s.batchDirty = true
		return
	}
	s.emit(c)
}

func (s *Surface) emit(c Change) {
	s.mu.RLock()
	obs := make([]observerEntry, len(s.observers))
	copy(obs, s.observers)
	s.mu.RUnlock()

	for _, o := range obs {
		o.fn(c)
	}
	s.RequestRedraw()
}
