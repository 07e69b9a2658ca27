package state

import "math"

// Arena bounds in logical units. Both peers must use the same values.
const (
	ArenaWidth  = 1080
	ArenaHeight = 720
)

// DefaultMinSegmentLength is the shortest pointer move that produces a segment.
const DefaultMinSegmentLength = 6.0

type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// InArena reports whether p lies inside the arena, edges included.
func (p Point) InArena() bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= ArenaWidth && p.Y <= ArenaHeight
}

// Segment is one committed stroke increment.
type Segment struct {
	P1 Point `json:"p1" msgpack:"p1"`
	P2 Point `json:"p2" msgpack:"p2"`
}

func (s Segment) Len() float64 {
	return s.P1.Dist(s.P2)
}

// InArena reports whether both ends, and so the whole segment, are inside the
// arena.
func (s Segment) InArena() bool {
	return s.P1.InArena() && s.P2.InArena()
}

// Crosses reports whether s properly crosses o.
func (s Segment) Crosses(o Segment) bool {
	return Intersects(s.P1, s.P2, o.P1, o.P2)
}

// ColorTag tells the canvas whose stroke it is painting.
type ColorTag string

const (
	ColorLocal    ColorTag = "red"
	ColorOpponent ColorTag = "blue"
)

// Phase is the round state of one peer.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseActive
	PhaseLost
	PhaseWon
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseActive:
		return "active"
	case PhaseLost:
		return "lost"
	case PhaseWon:
		return "won"
	}
	return "unknown"
}

// Score survives resets; it only counts finished rounds.
type Score struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}
