package state

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SyncChannel carries this peer's events to the opponent. Sends are
// fire-and-forget: an error is reported but the local change stands.
type SyncChannel interface {
	SendDraw(prev, curr Point) error
	SendReset() error
	SendLost() error
}

// Inbound receives the opponent's events and connectivity changes. Calls
// must arrive in the order the opponent emitted them.
type Inbound interface {
	OnConnected()
	OnDisconnected(err error)
	OnDraw(prev, curr Point)
	OnReset()
	OnLost()
}

// Canvas paints strokes. It carries no game logic.
type Canvas interface {
	Paint(prev, curr Point, tag ColorTag)
	Clear()
}

// Options tunes a GameState. Zero values pick the defaults.
type Options struct {
	MinSegmentLength float64
	GridCellSize     float64
}

// GameState is the per-peer round state machine. It is not safe for
// concurrent use; Peer serializes every call onto one goroutine.
type GameState struct {
	phase    Phase
	local    *Trail
	opponent *Trail
	cursor   *Point
	score    Score
	minLen   float64

	sync   SyncChannel
	canvas Canvas
	log    zerolog.Logger

	// OnPhase is called after every phase change.
	OnPhase func(from, to Phase)
	// OnSendError is called when an outbound event could not be sent.
	OnSendError func(event string, err error)
}

var _ Inbound = (*GameState)(nil)

func NewGameState(sc SyncChannel, canvas Canvas, opts Options) *GameState {
	if opts.MinSegmentLength <= 0 {
		opts.MinSegmentLength = DefaultMinSegmentLength
	}
	if sc == nil {
		sc = detached{}
	}
	if canvas == nil {
		canvas = nopCanvas{}
	}
	return &GameState{
		phase:    PhaseConnecting,
		local:    NewTrail(),
		opponent: NewIndexedTrail(opts.GridCellSize),
		minLen:   opts.MinSegmentLength,
		sync:     sc,
		canvas:   canvas,
		log:      log.With().Str("component", "game").Logger(),
	}
}

func (g *GameState) Phase() Phase { return g.phase }

func (g *GameState) Score() Score { return g.score }

func (g *GameState) Local() *Trail { return g.local }

func (g *GameState) Opponent() *Trail { return g.opponent }

// Cursor returns the last recorded pointer position, if any.
func (g *GameState) Cursor() (Point, bool) {
	if g.cursor == nil {
		return Point{}, false
	}
	return *g.cursor, true
}

// PointerMoved handles one pointer sample of the local player.
func (g *GameState) PointerMoved(p Point) {
	if g.phase != PhaseActive {
		return
	}
	if !p.InArena() {
		g.PointerLeft()
		return
	}
	if g.cursor == nil {
		g.cursor = &p
		return
	}
	prev := *g.cursor
	if prev.Dist(p) < g.minLen {
		return
	}

	seg := Segment{P1: prev, P2: p}
	if !Check(seg, g.opponent) {
		g.lose(seg)
		return
	}

	g.local.Append(seg)
	g.canvas.Paint(prev, p, ColorLocal)
	g.cursor = &p
	g.send("draw", g.sync.SendDraw(prev, p))
}

// PointerLeft forgets the cursor; the next sample starts a new stroke.
func (g *GameState) PointerLeft() {
	g.cursor = nil
}

// Reset clears the arena locally and asks the opponent to do the same.
func (g *GameState) Reset() {
	g.clear()
	g.send("reset", g.sync.SendReset())
}

func (g *GameState) lose(seg Segment) {
	g.log.Info().
		Interface("segment", seg).
		Int("opponent_segments", g.opponent.Len()).
		Msg("stroke crossed opponent trail")
	g.score.Losses++
	g.setPhase(PhaseLost)
	g.send("lost", g.sync.SendLost())
	g.Reset()
}

// clear empties both trails and the cursor and restarts the round. Before
// the channel is up there is no round to restart.
func (g *GameState) clear() {
	g.local.Clear()
	g.opponent.Clear()
	g.cursor = nil
	g.canvas.Clear()
	if g.phase != PhaseConnecting {
		g.setPhase(PhaseActive)
	}
}

func (g *GameState) OnConnected() {
	if g.phase == PhaseConnecting {
		g.setPhase(PhaseActive)
	}
}

// OnDisconnected keeps the current phase; the channel reconnects on its own.
func (g *GameState) OnDisconnected(err error) {
	g.log.Warn().Err(err).Str("phase", g.phase.String()).Msg("sync channel lost")
}

func (g *GameState) OnDraw(prev, curr Point) {
	if g.phase == PhaseConnecting {
		return
	}
	g.opponent.Append(Segment{P1: prev, P2: curr})
	g.canvas.Paint(prev, curr, ColorOpponent)
}

func (g *GameState) OnReset() {
	g.clear()
}

func (g *GameState) OnLost() {
	if g.phase == PhaseConnecting {
		return
	}
	g.score.Wins++
	g.setPhase(PhaseWon)
}

func (g *GameState) setPhase(to Phase) {
	from := g.phase
	if from == to {
		return
	}
	g.phase = to
	g.log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("phase")
	if g.OnPhase != nil {
		g.OnPhase(from, to)
	}
}

func (g *GameState) send(event string, err error) {
	if err == nil {
		return
	}
	g.log.Warn().Err(err).Str("event", event).Msg("send failed")
	if g.OnSendError != nil {
		g.OnSendError(event, err)
	}
}

// Snapshot is a read-only copy of a round, for export and display.
type Snapshot struct {
	Phase    Phase
	Score    Score
	Local    []Segment
	Opponent []Segment
}

func (g *GameState) Snapshot() Snapshot {
	return Snapshot{
		Phase:    g.phase,
		Score:    g.score,
		Local:    g.local.Segments(),
		Opponent: g.opponent.Segments(),
	}
}

type nopCanvas struct{}

func (nopCanvas) Paint(Point, Point, ColorTag) {}
func (nopCanvas) Clear()                       {}
