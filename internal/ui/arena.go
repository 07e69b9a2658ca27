package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"LineDuel/internal/state"
)

const strokeWidth = 5

var (
	arenaBackground = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	arenaBorder     = color.NRGBA{R: 180, G: 180, B: 180, A: 255}
	localColor      = color.NRGBA{R: 255, A: 255}
	opponentColor   = color.NRGBA{B: 255, A: 255}
)

type stroke struct {
	prev, curr state.Point
	tag        state.ColorTag
}

// ArenaWidget is the drawing surface. It reports pointer samples in arena
// coordinates and paints whatever the game tells it to.
type ArenaWidget struct {
	widget.BaseWidget

	mu      sync.RWMutex
	strokes []stroke
	cleared uint64 // bumped by Clear

	OnPointerMove  func(p state.Point)
	OnPointerLeave func()
	OnHover        func(inside bool)
}

var _ fyne.Widget = (*ArenaWidget)(nil)
var _ desktop.Hoverable = (*ArenaWidget)(nil)
var _ state.Canvas = (*ArenaWidget)(nil)

func NewArenaWidget() *ArenaWidget {
	a := &ArenaWidget{}
	a.ExtendBaseWidget(a)
	return a
}

// Paint is called from the peer loop, so the redraw is handed to the UI
// goroutine.
func (a *ArenaWidget) Paint(prev, curr state.Point, tag state.ColorTag) {
	a.mu.Lock()
	a.strokes = append(a.strokes, stroke{prev, curr, tag})
	a.mu.Unlock()
	fyne.Do(a.Refresh)
}

func (a *ArenaWidget) Clear() {
	a.mu.Lock()
	a.strokes = nil
	a.cleared++
	a.mu.Unlock()
	fyne.Do(a.Refresh)
}

// Strokes returns how many segments are on screen.
func (a *ArenaWidget) Strokes() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.strokes)
}

func toArena(pos fyne.Position) state.Point {
	return state.Point{X: float64(pos.X), Y: float64(pos.Y)}
}

func (a *ArenaWidget) MouseIn(e *desktop.MouseEvent) {
	if a.OnHover != nil {
		a.OnHover(true)
	}
	if a.OnPointerMove != nil {
		a.OnPointerMove(toArena(e.Position))
	}
}

func (a *ArenaWidget) MouseMoved(e *desktop.MouseEvent) {
	if a.OnPointerMove != nil {
		a.OnPointerMove(toArena(e.Position))
	}
}

func (a *ArenaWidget) MouseOut() {
	if a.OnHover != nil {
		a.OnHover(false)
	}
	if a.OnPointerLeave != nil {
		a.OnPointerLeave()
	}
}

func (a *ArenaWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(arenaBackground)
	bg.StrokeColor = arenaBorder
	bg.StrokeWidth = 1
	r := &arenaRenderer{arena: a, background: bg, objects: []fyne.CanvasObject{bg}}
	r.sync()
	return r
}

// arenaRenderer keeps one line object per stroke. Refresh only adds lines for
// strokes painted since the last refresh; a Clear drops them all.
type arenaRenderer struct {
	arena      *ArenaWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
	drawn      int
	cleared    uint64
}

func (r *arenaRenderer) sync() {
	r.arena.mu.RLock()
	defer r.arena.mu.RUnlock()

	if r.cleared != r.arena.cleared {
		r.cleared = r.arena.cleared
		r.objects = []fyne.CanvasObject{r.background}
		r.drawn = 0
	}
	for _, s := range r.arena.strokes[r.drawn:] {
		r.objects = append(r.objects, newStrokeLine(s))
	}
	r.drawn = len(r.arena.strokes)
}

func newStrokeLine(s stroke) *canvas.Line {
	c := localColor
	if s.tag == state.ColorOpponent {
		c = opponentColor
	}
	line := canvas.NewLine(c)
	line.StrokeWidth = strokeWidth
	line.Position1 = fyne.NewPos(float32(s.prev.X), float32(s.prev.Y))
	line.Position2 = fyne.NewPos(float32(s.curr.X), float32(s.curr.Y))
	return line
}

func (r *arenaRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *arenaRenderer) Refresh() {
	r.sync()
	canvas.Refresh(r.arena)
}

func (r *arenaRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *arenaRenderer) MinSize() fyne.Size {
	return fyne.NewSize(state.ArenaWidth, state.ArenaHeight)
}

func (r *arenaRenderer) Destroy() {}
