package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"LocalBoard/internal/capture"
	"LocalBoard/internal/geom"
	"LocalBoard/internal/logging"
	"LocalBoard/internal/state"
)

// BoardWidget is the drawing area. Pointer events feed a capture.Controller
// and committed lines live on a state.Surface; the widget only converts
// coordinates and paints.
//
// Everything except the net.Board methods must be called on the fyne UI
// thread.
type BoardWidget struct {
	widget.BaseWidget

	surface    *state.Surface
	controller *capture.Controller
	redraw     *state.Coalescer
	settings   capture.Settings

	panX, panY float32

	// OnClear is called after the local user clears their own lines, with
	// the owner id that was cleared.
	OnClear func(owner string)

	statusBar *widget.Label
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

// NewBoardWidget creates an empty board drawing with settings. Lines drawn
// here are attributed to owner until a host assigns a client id.
func NewBoardWidget(settings capture.Settings, owner string) *BoardWidget {
	b := &BoardWidget{
		surface:    state.NewSurface(nil),
		controller: capture.NewController(owner),
		settings:   settings,
		statusBar:  widget.NewLabel("Ready"),
	}
	b.redraw = state.NewCoalescer(fyne.Do, b.Refresh)
	b.surface.SetRedrawer(b.redraw)
	b.ExtendBaseWidget(b)
	return b
}

// Surface returns the board's line collection.
func (b *BoardWidget) Surface() *state.Surface { return b.surface }

// Controller returns the stroke capture controller; register sinks on it.
func (b *BoardWidget) Controller() *capture.Controller { return b.controller }

// toBoard converts a widget position into board coordinates.
func (b *BoardWidget) toBoard(pos fyne.Position) geom.Point {
	return geom.Pt(float64(pos.X-b.panX), float64(pos.Y-b.panY))
}

func (b *BoardWidget) toScreen(p geom.Point) fyne.Position {
	return fyne.NewPos(float32(p.X)+b.panX, float32(p.Y)+b.panY)
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.controller.PointerDown(b.toBoard(e.Position), b.settings, b.surface)
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.finishStroke()
}

// Dragged extends the stroke in progress, or pans the view when nothing is
// being drawn.
func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.controller.Capturing() {
		b.controller.PointerMove(b.toBoard(e.Position))
		return
	}
	b.panX += e.Dragged.DX
	b.panY += e.Dragged.DY
	b.surface.RequestRedraw()
}

// DragEnd can arrive before or after MouseUp; the second one is a no-op.
func (b *BoardWidget) DragEnd() {
	b.finishStroke()
}

func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	b.panX += e.Scrolled.DX
	b.panY += e.Scrolled.DY
	b.surface.RequestRedraw()
}

func (b *BoardWidget) finishStroke() {
	l := b.controller.PointerUp()
	if l == nil {
		return
	}
	logging.Logger().Debug("[UI] stroke finished", "id", l.ID, "points", l.Len())
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseOut()                      {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(color.White)
	r.rebuild()
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

// rebuild turns the current surface snapshot and the live preview into
// line segments.
func (r *boardWidgetRenderer) rebuild() {
	objects := []fyne.CanvasObject{r.background}
	for _, l := range r.board.surface.Lines() {
		objects = r.appendSegments(objects, l.Points, l.LineWidth, l.LineColor)
	}
	if preview := r.board.controller.Preview(); len(preview) > 1 {
		width, c := r.board.controller.PreviewStyle()
		objects = r.appendSegments(objects, preview, width, previewColor(c))
	}
	r.objects = objects
}

func (r *boardWidgetRenderer) appendSegments(objects []fyne.CanvasObject, pts []geom.Point, width float32, c color.Color) []fyne.CanvasObject {
	if c == nil {
		c = color.Black
	}
	for i := 0; i < len(pts)-1; i++ {
		segment := canvas.NewLine(c)
		segment.StrokeWidth = width
		segment.Position1 = r.board.toScreen(pts[i])
		segment.Position2 = r.board.toScreen(pts[i+1])
		objects = append(objects, segment)
	}
	return objects
}

// previewColor is c at half opacity.
func previewColor(c color.Color) color.Color {
	if c == nil {
		c = color.Black
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A /= 2
	return n
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *boardWidgetRenderer) Refresh() {
	r.rebuild()
	r.background.Refresh()
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) Destroy() {}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}
