package state

import (
	"context"
	"errors"
)

var ErrPeerStopped = errors.New("peer stopped")

// Commands consumed by Peer.Run.
type (
	PointerMoved struct{ P Point }
	PointerLeft  struct{}
	LocalReset   struct{}
	Connected    struct{}
	Disconnected struct{ Err error }
	RemoteDraw   struct{ Prev, Curr Point }
	RemoteReset  struct{}
	RemoteLost   struct{}
	SnapshotReq  struct{ Reply chan<- Snapshot }
)

// Peer runs one GameState on a single goroutine. Pointer samples from the UI
// and events from the sync channel are queued on Inbox and applied in order.
type Peer struct {
	Inbox chan any
	Game  *GameState
	done  chan struct{}
}

var _ Inbound = (*Peer)(nil)

func NewPeer(canvas Canvas, opts Options) *Peer {
	return &Peer{
		Inbox: make(chan any, 256),
		Game:  NewGameState(nil, canvas, opts),
		done:  make(chan struct{}),
	}
}

// Attach sets the outbound channel. It must be called before Run.
func (p *Peer) Attach(sc SyncChannel) {
	p.Game.sync = sc
}

// Run applies queued commands until ctx is cancelled.
func (p *Peer) Run(ctx context.Context) error {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-p.Inbox:
			p.handle(cmd)
		}
	}
}

func (p *Peer) handle(cmd any) {
	g := p.Game
	switch c := cmd.(type) {
	case PointerMoved:
		g.PointerMoved(c.P)
	case PointerLeft:
		g.PointerLeft()
	case LocalReset:
		g.Reset()
	case Connected:
		g.OnConnected()
	case Disconnected:
		g.OnDisconnected(c.Err)
	case RemoteDraw:
		g.OnDraw(c.Prev, c.Curr)
	case RemoteReset:
		g.OnReset()
	case RemoteLost:
		g.OnLost()
	case SnapshotReq:
		c.Reply <- g.Snapshot()
	}
}

// enqueue blocks while the inbox is full so inbound order is kept, and gives
// up once the peer has stopped.
func (p *Peer) enqueue(cmd any) {
	select {
	case p.Inbox <- cmd:
	case <-p.done:
	}
}

func (p *Peer) Move(pt Point) { p.enqueue(PointerMoved{P: pt}) }
func (p *Peer) Leave()        { p.enqueue(PointerLeft{}) }
func (p *Peer) ResetArena()   { p.enqueue(LocalReset{}) }

func (p *Peer) OnConnected()             { p.enqueue(Connected{}) }
func (p *Peer) OnDisconnected(err error) { p.enqueue(Disconnected{Err: err}) }
func (p *Peer) OnDraw(prev, curr Point)  { p.enqueue(RemoteDraw{Prev: prev, Curr: curr}) }
func (p *Peer) OnReset()                 { p.enqueue(RemoteReset{}) }
func (p *Peer) OnLost()                  { p.enqueue(RemoteLost{}) }

// Snapshot asks the loop for a copy of the current round.
func (p *Peer) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case p.Inbox <- SnapshotReq{Reply: reply}:
	case <-p.done:
		return Snapshot{}, ErrPeerStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-p.done:
		return Snapshot{}, ErrPeerStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

var errDetached = errors.New("no sync channel attached")

type detached struct{}

func (detached) SendDraw(Point, Point) error { return errDetached }
func (detached) SendReset() error            { return errDetached }
func (detached) SendLost() error             { return errDetached }
