package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Window is the duel window: toolbar on top, arena below, share link at the
// bottom when there is one.
type Window struct {
	app    fyne.App
	win    fyne.Window
	Arena  *ArenaWidget
	Status *Status
}

func NewWindow(title, shareLink string, c Controls) *Window {
	a := app.NewWithID("dev.lineduel")
	w := &Window{
		app:    a,
		win:    a.NewWindow(title),
		Arena:  NewArenaWidget(),
		Status: newStatus(),
	}
	w.Arena.OnHover = w.Status.SetHover

	var footer fyne.CanvasObject
	if shareLink != "" {
		link := widget.NewEntry()
		link.SetText(shareLink)
		footer = container.NewBorder(nil, nil, widget.NewLabel("Invite:"), nil, link)
	}
	toolbar := NewToolbar(c, w.Status)
	w.win.SetContent(container.NewBorder(toolbar, footer, nil, nil, container.NewCenter(w.Arena)))
	w.win.SetFixedSize(true)
	return w
}

// Run shows the window and blocks until it is closed.
func (w *Window) Run() {
	w.win.ShowAndRun()
}

// Quit closes the window from any goroutine.
func (w *Window) Quit() {
	fyne.Do(w.app.Quit)
}
