package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"LineDuel/internal/state"
)

var (
	ErrNotConnected  = errors.New("sync channel not connected")
	ErrSendQueueFull = errors.New("send queue full")
	ErrClosed        = errors.New("sync channel closed")
)

// ChannelConfig says where a peer's relay lives and how to talk to it.
type ChannelConfig struct {
	Addr           string // relay host:port
	Arena          string
	Codec          Codec
	Queue          int
	ReconnectDelay time.Duration

	// OnDialError sees every attempt that did not reach the arena, such as
	// ErrArenaFull while both seats are taken. It runs on the channel's
	// goroutine.
	OnDialError func(err error)
}

// Channel is a peer's connection to the relay. It implements
// state.SyncChannel for outbound events and feeds inbound ones to a
// state.Inbound in arrival order. It reconnects until closed.
type Channel struct {
	cfg    ChannelConfig
	in     state.Inbound
	clock  *state.Clock
	filter *state.SeqFilter
	out    chan []byte
	log    zerolog.Logger

	connected atomic.Bool
	closed    atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

var _ state.SyncChannel = (*Channel)(nil)

// Dial starts connecting in the background and returns at once. The
// Inbound sees OnConnected each time a connection is established.
func Dial(ctx context.Context, cfg ChannelConfig, in state.Inbound) *Channel {
	if cfg.Codec == nil {
		cfg.Codec = JSONCodec{}
	}
	if cfg.Queue <= 0 {
		cfg.Queue = 256
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	c := &Channel{
		cfg:    cfg,
		in:     in,
		clock:  state.NewClock(),
		filter: state.NewSeqFilter(),
		out:    make(chan []byte, cfg.Queue),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.log = log.With().Str("component", "channel").Str("site", c.clock.Site()).Str("arena", cfg.Arena).Logger()
	go c.run(ctx)
	return c
}

// Site is the identity stamped on every event this channel sends.
func (c *Channel) Site() string { return c.clock.Site() }

func (c *Channel) Connected() bool { return c.connected.Load() }

// Close stops reconnecting and drops the current connection.
func (c *Channel) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.cancel()
	<-c.done
	return nil
}

func (c *Channel) SendDraw(prev, curr state.Point) error {
	return c.send(Envelope{T: MsgDraw, Draw: &Draw{Prev: prev, Curr: curr}})
}

func (c *Channel) SendReset() error { return c.send(Envelope{T: MsgReset}) }

func (c *Channel) SendLost() error { return c.send(Envelope{T: MsgLost}) }

func (c *Channel) send(e Envelope) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if !c.connected.Load() {
		return ErrNotConnected
	}
	e.From = c.clock.Site()
	e.Seq = c.clock.Next()
	b, err := c.cfg.Codec.Encode(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.T, err)
	}
	select {
	case c.out <- b:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.done)
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return
		}
		c.log.Warn().Err(err).Dur("retry_in", c.cfg.ReconnectDelay).Msg("relay connection failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}
}

// Probe checks that the relay at addr answers its connectivity endpoint.
func Probe(ctx context.Context, addr string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/api/test", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", addr, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return fmt.Errorf("probe %s: %w", addr, err)
	}
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != ProbeReply {
		return fmt.Errorf("probe %s: unexpected reply %d %q", addr, resp.StatusCode, body)
	}
	return nil
}

func (c *Channel) session(ctx context.Context) error {
	if err := Probe(ctx, c.cfg.Addr); err != nil {
		return c.dialFailed(ctx, err)
	}
	u := url.URL{Scheme: "ws", Host: c.cfg.Addr, Path: "/ws/" + url.PathEscape(c.cfg.Arena)}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return c.dialFailed(ctx, ErrArenaFull)
		}
		return c.dialFailed(ctx, fmt.Errorf("dial %s: %w", u.String(), err))
	}

	sctx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-sctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer wg.Done()
		defer stop()
		c.writeLoop(sctx, conn)
	}()

	c.connected.Store(true)
	c.log.Info().Str("relay", c.cfg.Addr).Str("codec", c.cfg.Codec.Name()).Msg("connected")
	c.in.OnConnected()

	err = c.readLoop(conn)
	c.connected.Store(false)
	stop()
	wg.Wait()
	if ctx.Err() == nil {
		c.in.OnDisconnected(err)
	}
	return err
}

func (c *Channel) dialFailed(ctx context.Context, err error) error {
	if ctx.Err() == nil && c.cfg.OnDialError != nil {
		c.cfg.OnDialError(err)
	}
	return err
}

func (c *Channel) writeLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		case b := <-c.out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(c.cfg.Codec.FrameType(), b); err != nil {
				c.log.Warn().Err(err).Msg("write")
				return
			}
		}
	}
}

func (c *Channel) readLoop(conn *websocket.Conn) error {
	conn.SetReadLimit(maxFrame)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		env, err := c.cfg.Codec.Decode(data)
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping undecodable frame")
			continue
		}
		c.dispatch(env)
	}
}

func (c *Channel) dispatch(env Envelope) {
	if env.From == c.clock.Site() {
		return
	}
	if !c.filter.Accept(env.From, env.Seq) {
		c.log.Debug().Str("from", env.From).Uint64("seq", env.Seq).Msg("duplicate event dropped")
		return
	}
	switch env.T {
	case MsgDraw:
		c.in.OnDraw(env.Draw.Prev, env.Draw.Curr)
	case MsgReset:
		c.in.OnReset()
	case MsgLost:
		c.in.OnLost()
	}
}
