package ui

import (
	"image/color"

	"fyne.io/fyne/v2"

	"LocalBoard/internal/capture"
	"LocalBoard/internal/logging"
	"LocalBoard/internal/smooth"
	"LocalBoard/internal/state"
)

// Settings returns the settings the next stroke will start with.
func (b *BoardWidget) Settings() capture.Settings {
	return b.settings
}

func (b *BoardWidget) SetColor(c color.Color) {
	b.settings.DefaultLineColor = c
}

func (b *BoardWidget) SetStroke(s float32) {
	b.settings.DefaultLineWidth = s
}

// SetMultiLine switches between keeping every stroke and one stroke at a time.
func (b *BoardWidget) SetMultiLine(on bool) {
	b.settings.MultiLineMode = on
}

func (b *BoardWidget) SetClearOnFinish(on bool) {
	b.settings.ClearOnFinish = on
}

// SetSmoothing changes smoothing for future strokes and redraws every line
// already on the board with the new settings.
func (b *BoardWidget) SetSmoothing(enabled bool, granularity int) error {
	if err := smooth.ValidateGranularity(granularity); err != nil {
		return err
	}
	b.settings.EnableSmoothedPath = enabled
	b.settings.Granularity = granularity

	lines := b.surface.Lines()
	for _, l := range lines {
		l.EnableSmoothedPath = enabled
		l.Granularity = granularity
	}
	b.surface.Reload(lines)
	logging.Logger().Debug("[UI] smoothing changed", "enabled", enabled, "granularity", granularity, "lines", len(lines))
	return nil
}

// ClearPaths removes the local user's lines and reports it through OnClear.
func (b *BoardWidget) ClearPaths() {
	owner := b.controller.Owner()
	b.controller.Abandon()
	n := b.surface.ClearOwner(owner)
	logging.Logger().Debug("[UI] cleared own lines", "owner", owner, "removed", n)
	if b.OnClear != nil {
		b.OnClear(owner)
	}
}

// StatusBar is the label the board reports connection state on.
func (b *BoardWidget) StatusBar() fyne.CanvasObject {
	return b.statusBar
}

// SetStatus may be called from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() {
		b.statusBar.SetText(text)
	})
}

// The methods below implement net.Board and are called from network
// goroutines.

func (b *BoardWidget) SetLocalClientID(id string) {
	fyne.Do(func() {
		b.controller.SetOwner(id)
		b.statusBar.SetText("Connected as " + id)
	})
}

// AddRemoteLine commits a peer's line. Outside multi-line mode it replaces
// whatever is on the board, as a local stroke would.
func (b *BoardWidget) AddRemoteLine(l *state.Line) {
	fyne.Do(func() {
		if b.settings.MultiLineMode {
			if !b.surface.AddLine(l) {
				logging.Logger().Debug("[UI] ignoring duplicate remote line", "id", l.ID)
			}
			return
		}
		b.surface.Batch(func() {
			b.surface.Clear()
			b.surface.AddLine(l)
		})
	})
}

func (b *BoardWidget) ClearRemote(owner string) {
	fyne.Do(func() {
		b.surface.ClearOwner(owner)
	})
}
