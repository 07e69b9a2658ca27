package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Controls are the actions the toolbar can trigger.
type Controls struct {
	OnReset  func()
	OnExport func() (string, error)
}

// Status holds the labels the toolbar shows. All setters are safe to call
// from any goroutine.
type Status struct {
	conn  *widget.Label
	hover *widget.Label
	round *widget.Label
	info  *widget.Label
}

func newStatus() *Status {
	return &Status{
		conn:  widget.NewLabel("Connecting…"),
		hover: widget.NewLabel("Outside the arena"),
		round: widget.NewLabel(""),
		info:  widget.NewLabel(""),
	}
}

func (s *Status) set(l *widget.Label, text string) {
	fyne.Do(func() { l.SetText(text) })
}

func (s *Status) SetConnection(text string) { s.set(s.conn, text) }
func (s *Status) SetRound(text string)      { s.set(s.round, text) }
func (s *Status) SetInfo(text string)       { s.set(s.info, text) }

func (s *Status) SetHover(inside bool) {
	if inside {
		s.set(s.hover, "In the arena")
		return
	}
	s.set(s.hover, "Outside the arena")
}

// NewToolbar lays out the reset and export actions next to the status labels.
func NewToolbar(c Controls, s *Status) fyne.CanvasObject {
	reset := widget.NewButtonWithIcon("Reset arena", theme.ViewRefreshIcon(), func() {
		if c.OnReset != nil {
			c.OnReset()
		}
	})
	reset.Importance = widget.HighImportance

	export := widget.NewButtonWithIcon("Export round", theme.DocumentSaveIcon(), func() {
		if c.OnExport == nil {
			return
		}
		// Exporting waits on the peer loop; keep it off the UI goroutine.
		go func() {
			path, err := c.OnExport()
			if err != nil {
				s.SetInfo("Export failed: " + err.Error())
				return
			}
			s.SetInfo("Saved " + path)
		}()
	})

	return container.NewHBox(
		s.conn,
		widget.NewSeparator(),
		reset,
		export,
		widget.NewSeparator(),
		s.hover,
		widget.NewSeparator(),
		s.round,
		layout.NewSpacer(),
		s.info,
	)
}
