package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"LocalBoard/internal/capture"
)

// App is the board window.
type App struct {
	fyneApp fyne.App
	window  fyne.Window

	Board *BoardWidget
}

// NewApp creates the application and its board. Network wiring should be
// attached to Board before Run.
func NewApp(title string, settings capture.Settings, owner string) *App {
	myApp := app.NewWithID("io.localboard")
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(1024, 768))

	board := NewBoardWidget(settings, owner)
	toolbar := NewToolbar(board)
	content := container.NewBorder(toolbar, board.StatusBar(), nil, nil, board)
	myWindow.SetContent(content)

	return &App{fyneApp: myApp, window: myWindow, Board: board}
}

// OnClosed registers fn to run when the window closes.
func (a *App) OnClosed(fn func()) {
	a.window.SetOnClosed(fn)
}

// Run shows the window and blocks until it is closed.
func (a *App) Run() {
	a.window.ShowAndRun()
}
