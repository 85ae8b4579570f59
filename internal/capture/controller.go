// Package capture turns pointer down/move/up events into committed lines.
//
// A Controller is either idle or capturing exactly one stroke. Events that
// arrive in the wrong state (a move before any down, a second up) are
// dropped, since the platform layer can deliver them out of order or twice.
package capture

import (
	"image/color"
	"runtime/debug"

	"LocalBoard/internal/geom"
	"LocalBoard/internal/logging"
	"LocalBoard/internal/smooth"
	"LocalBoard/internal/state"
)

// Settings are read at pointer-down and kept for the life of the stroke.
type Settings struct {
	MultiLineMode    bool
	ClearOnFinish    bool
	DefaultLineWidth float32
	DefaultLineColor color.Color

	EnableSmoothedPath bool
	Granularity        int
}

// Sink receives every finished stroke after smoothing.
type Sink interface {
	StrokeCompleted(l *state.Line)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(l *state.Line)

func (f SinkFunc) StrokeCompleted(l *state.Line) { f(l) }

// capturing is the state of a stroke in progress. The controller owns line
// until it is committed to surface.
type capturing struct {
	line     *state.Line
	preview  []geom.Point
	settings Settings
	surface  *state.Surface
}

// Controller drives one stroke at a time. A nil active stroke means idle.
type Controller struct {
	owner  string
	active *capturing
	sinks  []Sink

	// OnStrokeCompleted, if set, is called once per finished stroke before
	// any registered sinks.
	OnStrokeCompleted func(l *state.Line)
}

// NewController returns an idle controller whose lines are attributed to
// owner.
func NewController(owner string) *Controller {
	return &Controller{owner: owner}
}

// SetOwner changes the owner id stamped on future lines.
func (c *Controller) SetOwner(owner string) {
	c.owner = owner
}

// Owner returns the owner id stamped on new lines.
func (c *Controller) Owner() string {
	return c.owner
}

// AddSink registers s for completion notifications.
func (c *Controller) AddSink(s Sink) {
	c.sinks = append(c.sinks, s)
}

// Capturing reports whether a stroke is in progress.
func (c *Controller) Capturing() bool {
	return c.active != nil
}

// Current returns the in-progress line, or nil when idle.
func (c *Controller) Current() *state.Line {
	if c.active == nil {
		return nil
	}
	return c.active.line
}

// Preview returns a copy of the live preview path.
func (c *Controller) Preview() []geom.Point {
	if c.active == nil {
		return nil
	}
	return geom.Clone(c.active.preview)
}

// PreviewStyle returns the width and color the preview should be drawn with.
func (c *Controller) PreviewStyle() (float32, color.Color) {
	if c.active == nil {
		return 0, nil
	}
	return c.active.line.LineWidth, c.active.line.LineColor
}

// PointerDown starts a stroke at pos. Outside multi-line mode the surface is
// cleared first inside one surface batch, so observers see a single
// ChangeReset and the clear and the new stroke share one redraw. A stroke
// already in progress is abandoned.
func (c *Controller) PointerDown(pos geom.Point, settings Settings, surface *state.Surface) {
	if surface == nil {
		logging.Logger().Warn("[CAPTURE] pointer down without a surface, ignoring")
		return
	}
	if c.active != nil {
		logging.Logger().Debug("[CAPTURE] pointer down while capturing, abandoning stroke",
			"id", c.active.line.ID)
	}

	line := state.NewLine(c.owner, pos, settings.DefaultLineWidth, settings.DefaultLineColor)
	line.EnableSmoothedPath = settings.EnableSmoothedPath
	line.Granularity = settings.Granularity

	c.active = &capturing{
		line:     line,
		preview:  []geom.Point{pos},
		settings: settings,
		surface:  surface,
	}

	if !settings.MultiLineMode && surface.Len() > 0 {
		surface.Batch(surface.Clear)
		return
	}
	surface.RequestRedraw()
}

// PointerMove extends the stroke in progress. It does nothing when idle.
func (c *Controller) PointerMove(pos geom.Point) {
	if c.active == nil {
		logging.Logger().Debug("[CAPTURE] pointer move while idle, ignoring")
		return
	}
	c.active.line.Append(pos)
	c.active.preview = append(c.active.preview, pos)
	c.active.surface.RequestRedraw()
}

// PointerUp finishes the stroke in progress: smooths it when enabled,
// commits it to the surface, and notifies sinks. With ClearOnFinish the
// surface is emptied right after the notification; the returned line keeps
// its points. PointerUp returns nil when idle.
func (c *Controller) PointerUp() *state.Line {
	a := c.active
	if a == nil {
		logging.Logger().Debug("[CAPTURE] pointer up while idle, ignoring")
		return nil
	}
	c.active = nil

	line := a.line
	line.Raw = geom.Clone(line.Points)
	if line.EnableSmoothedPath {
		if err := smooth.ValidateGranularity(line.Granularity); err != nil {
			logging.Logger().Warn("[CAPTURE] skipping smoothing", "id", line.ID, "error", err)
		} else {
			a.surface.ReplaceAllPoints(line, smooth.CatmullRom(line.Points, line.Granularity))
		}
	}

	a.surface.AddLine(line)
	logging.Logger().Debug("[CAPTURE] stroke completed",
		"id", line.ID, "raw", len(line.Raw), "points", len(line.Points))

	c.complete(line)

	if a.settings.ClearOnFinish {
		a.surface.Clear()
	}
	return line
}

// Abandon drops the stroke in progress without committing anything.
func (c *Controller) Abandon() {
	a := c.active
	if a == nil {
		return
	}
	c.active = nil
	logging.Logger().Debug("[CAPTURE] stroke abandoned", "id", a.line.ID)
	a.surface.RequestRedraw()
}

func (c *Controller) complete(l *state.Line) {
	if c.OnStrokeCompleted != nil {
		c.safeCall(SinkFunc(c.OnStrokeCompleted), l)
	}
	for _, s := range c.sinks {
		c.safeCall(s, l)
	}
}

// safeCall recovers a panicking sink so a bad listener cannot take down the
// drawing session.
func (c *Controller) safeCall(s Sink, l *state.Line) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Error("[CAPTURE] completion sink panicked",
				"id", l.ID, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	s.StrokeCompleted(l)
}
