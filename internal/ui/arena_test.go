package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LineDuel/internal/state"
)

func TestArenaForwardsPointer(t *testing.T) {
	test.NewTempApp(t)
	a := NewArenaWidget()

	var moves []state.Point
	var leaves int
	var hover []bool
	a.OnPointerMove = func(p state.Point) { moves = append(moves, p) }
	a.OnPointerLeave = func() { leaves++ }
	a.OnHover = func(in bool) { hover = append(hover, in) }

	a.MouseIn(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(1, 2)}})
	a.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(30, 40)}})
	a.MouseOut()

	assert.Equal(t, []state.Point{{X: 1, Y: 2}, {X: 30, Y: 40}}, moves)
	assert.Equal(t, 1, leaves)
	assert.Equal(t, []bool{true, false}, hover)
}

func TestArenaPaintsColoredLines(t *testing.T) {
	test.NewTempApp(t)
	a := NewArenaWidget()
	r := test.WidgetRenderer(a)

	a.Paint(state.Point{X: 0, Y: 0}, state.Point{X: 10, Y: 10}, state.ColorLocal)
	a.Paint(state.Point{X: 5, Y: 0}, state.Point{X: 5, Y: 10}, state.ColorOpponent)
	require.Equal(t, 2, a.Strokes())

	r.Refresh()
	objs := r.Objects()
	require.Len(t, objs, 3)
	red, ok := objs[1].(*canvas.Line)
	require.True(t, ok)
	assert.Equal(t, localColor, red.StrokeColor)
	assert.Equal(t, fyne.NewPos(10, 10), red.Position2)
	blue := objs[2].(*canvas.Line)
	assert.Equal(t, opponentColor, blue.StrokeColor)
	assert.Equal(t, float32(strokeWidth), blue.StrokeWidth)

	a.Clear()
	assert.Zero(t, a.Strokes())
	r.Refresh()
	assert.Len(t, r.Objects(), 1)
	assert.Equal(t, fyne.NewSize(state.ArenaWidth, state.ArenaHeight), r.MinSize())
}

func TestArenaRefreshOnlyAddsNewLines(t *testing.T) {
	test.NewTempApp(t)
	a := NewArenaWidget()
	r := test.WidgetRenderer(a)

	a.Paint(state.Point{X: 0, Y: 0}, state.Point{X: 10, Y: 0}, state.ColorLocal)
	a.Paint(state.Point{X: 10, Y: 0}, state.Point{X: 20, Y: 0}, state.ColorLocal)
	r.Refresh()
	before := r.Objects()
	require.Len(t, before, 3)
	first, second := before[1], before[2]

	a.Paint(state.Point{X: 20, Y: 0}, state.Point{X: 30, Y: 0}, state.ColorOpponent)
	r.Refresh()
	r.Refresh()
	after := r.Objects()
	require.Len(t, after, 4)
	assert.Same(t, first, after[1])
	assert.Same(t, second, after[2])

	// a clear followed by new strokes before any refresh still starts over
	a.Clear()
	a.Paint(state.Point{X: 5, Y: 5}, state.Point{X: 50, Y: 50}, state.ColorOpponent)
	r.Refresh()
	objs := r.Objects()
	require.Len(t, objs, 2)
	line := objs[1].(*canvas.Line)
	assert.Equal(t, opponentColor, line.StrokeColor)
	assert.Equal(t, fyne.NewPos(50, 50), line.Position2)
}
