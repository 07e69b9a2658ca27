package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startPeer(t *testing.T, sc SyncChannel) *Peer {
	t.Helper()
	p := NewPeer(nil, Options{})
	if sc != nil {
		p.Attach(sc)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errc:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Error("peer did not stop")
		}
	})
	return p
}

func snapshot(t *testing.T, p *Peer) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := p.Snapshot(ctx)
	require.NoError(t, err)
	return s
}

func TestPeerAppliesCommandsInOrder(t *testing.T) {
	fs := &fakeSync{}
	p := startPeer(t, fs)

	p.OnConnected()
	p.OnDraw(pt(100, 0), pt(100, 300))
	p.Move(pt(10, 10))
	p.Move(pt(50, 10))
	p.Leave()
	p.Move(pt(200, 10))
	p.Move(pt(260, 10))

	s := snapshot(t, p)
	assert.Equal(t, PhaseActive, s.Phase)
	assert.Equal(t, []Segment{{pt(10, 10), pt(50, 10)}, {pt(200, 10), pt(260, 10)}}, s.Local)
	assert.Equal(t, []Segment{{pt(100, 0), pt(100, 300)}}, s.Opponent)
}

func TestPeerRemoteLostThenReset(t *testing.T) {
	p := startPeer(t, &fakeSync{})
	p.OnConnected()
	p.OnDraw(pt(0, 0), pt(20, 20))
	p.OnLost()

	s := snapshot(t, p)
	assert.Equal(t, PhaseWon, s.Phase)
	assert.Len(t, s.Opponent, 1)

	p.OnReset()
	s = snapshot(t, p)
	assert.Equal(t, PhaseActive, s.Phase)
	assert.Empty(t, s.Opponent)
	assert.Equal(t, 1, s.Score.Wins)
}

func TestPeerWithoutChannelStillDraws(t *testing.T) {
	p := startPeer(t, nil)
	p.OnConnected()
	p.Move(pt(10, 10))
	p.Move(pt(50, 10))
	p.ResetArena()
	p.Move(pt(10, 10))
	p.Move(pt(50, 10))

	s := snapshot(t, p)
	assert.Len(t, s.Local, 1)
}

func TestSnapshotAfterStop(t *testing.T) {
	p := NewPeer(nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	_, err := p.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrPeerStopped)
}
