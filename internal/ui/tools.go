package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"LocalBoard/internal/logging"
)

const (
	eraserWidth = 20
	maxPenWidth = 10
)

// swatch colors shown in the toolbar, in order.
var swatches = []color.Color{
	color.Black,
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 255, A: 255},
	color.NRGBA{B: 255, A: 255},
	color.NRGBA{R: 255, G: 255, A: 255},
}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// NewToolbar builds the controls that edit board's settings.
func NewToolbar(board *BoardWidget) fyne.CanvasObject {
	// The eraser paints white, so remember the pen color to switch back to.
	lastColor := board.Settings().DefaultLineColor
	if lastColor == nil {
		lastColor = color.Black
	}

	strokeSlider := widget.NewSlider(1.0, 50.0)
	strokeSlider.SetValue(float64(board.Settings().DefaultLineWidth))
	strokeSlider.OnChanged = func(val float64) {
		board.SetStroke(float32(val))
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			board.SetColor(lastColor)
			if board.Settings().DefaultLineWidth > maxPenWidth {
				strokeSlider.SetValue(2)
			}
		}), // Pen
		widget.NewToolbarAction(theme.ContentRemoveIcon(), func() {
			board.SetColor(color.White)
			strokeSlider.SetValue(eraserWidth)
		}), // Eraser
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), board.ClearPaths), // Clear my lines
	)

	onColorTapped := func(c color.Color) {
		lastColor = c
		board.SetColor(c)
	}
	colorBox := container.NewHBox()
	for _, c := range swatches {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	multiLine := widget.NewCheck("Keep lines", board.SetMultiLine)
	multiLine.SetChecked(board.Settings().MultiLineMode)

	clearOnFinish := widget.NewCheck("Clear when done", board.SetClearOnFinish)
	clearOnFinish.SetChecked(board.Settings().ClearOnFinish)

	smoothing := widget.NewCheck("Smooth", func(on bool) {
		if err := board.SetSmoothing(on, board.Settings().Granularity); err != nil {
			logging.Logger().Warn("[UI] cannot change smoothing", "error", err)
		}
	})
	smoothing.SetChecked(board.Settings().EnableSmoothedPath)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		widget.NewSeparator(),
		multiLine,
		clearOnFinish,
		smoothing,
		layout.NewSpacer(),
	)
}
