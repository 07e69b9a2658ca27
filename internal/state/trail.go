package state

import (
	"iter"
	"math"
	"slices"
)

// Trail is one player's committed segments in drawing order.
//
// A Trail built with NewIndexedTrail also buckets every segment into a uniform
// grid over the arena so Near can skip segments whose bounding box is far from
// the query. Segments reaching outside the arena are never bucketed; they sit
// in an overflow list that Near always yields.
type Trail struct {
	segments []Segment

	cell     float64
	cells    map[cellKey][]int
	overflow []int
}

// MinGridCellSize is the smallest cell an indexed trail uses.
const MinGridCellSize = 4.0

type cellKey struct{ X, Y int }

// NewTrail returns an empty trail that is always scanned linearly.
func NewTrail() *Trail {
	return &Trail{}
}

// NewIndexedTrail returns an empty trail with a grid index of the given cell
// size. A non-positive size disables the index and sizes below
// MinGridCellSize are raised to it.
func NewIndexedTrail(cellSize float64) *Trail {
	if cellSize <= 0 {
		return NewTrail()
	}
	cellSize = max(cellSize, MinGridCellSize)
	return &Trail{cell: cellSize, cells: make(map[cellKey][]int)}
}

func (t *Trail) Append(s Segment) {
	t.segments = append(t.segments, s)
	if t.cells == nil {
		return
	}
	idx := len(t.segments) - 1
	if !s.InArena() {
		t.overflow = append(t.overflow, idx)
		return
	}
	for k := range t.cellsFor(s) {
		t.cells[k] = append(t.cells[k], idx)
	}
}

func (t *Trail) Clear() {
	t.segments = t.segments[:0]
	if t.cells != nil {
		clear(t.cells)
	}
	t.overflow = t.overflow[:0]
}

func (t *Trail) Len() int {
	return len(t.segments)
}

// All yields every segment in drawing order.
func (t *Trail) All() iter.Seq[Segment] {
	return slices.Values(t.segments)
}

// Segments returns a copy of the trail.
func (t *Trail) Segments() []Segment {
	return slices.Clone(t.segments)
}

// Near yields every segment that may cross s. Without an index, or for an s
// that leaves the arena, that is the whole trail. Otherwise it is the overflow
// list plus the grid cells s covers, each segment at most once.
func (t *Trail) Near(s Segment) iter.Seq[Segment] {
	if t.cells == nil || !s.InArena() {
		return t.All()
	}
	return func(yield func(Segment) bool) {
		for _, idx := range t.overflow {
			if !yield(t.segments[idx]) {
				return
			}
		}
		seen := make(map[int]struct{})
		for k := range t.cellsFor(s) {
			for _, idx := range t.cells[k] {
				if _, ok := seen[idx]; ok {
					continue
				}
				seen[idx] = struct{}{}
				if !yield(t.segments[idx]) {
					return
				}
			}
		}
	}
}

// cellsFor yields the grid cells covered by the bounding box of s, which must
// lie inside the arena.
func (t *Trail) cellsFor(s Segment) iter.Seq[cellKey] {
	x0, x1 := t.cellOf(math.Min(s.P1.X, s.P2.X)), t.cellOf(math.Max(s.P1.X, s.P2.X))
	y0, y1 := t.cellOf(math.Min(s.P1.Y, s.P2.Y)), t.cellOf(math.Max(s.P1.Y, s.P2.Y))
	return func(yield func(cellKey) bool) {
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				if !yield(cellKey{x, y}) {
					return
				}
			}
		}
	}
}

func (t *Trail) cellOf(v float64) int {
	return int(math.Floor(v / t.cell))
}
