package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"LineDuel/internal/config"
	"LineDuel/internal/export"
	"LineDuel/internal/net"
	"LineDuel/internal/state"
	"LineDuel/internal/ui"
)

const usage = `usage:
  lineduel                      host: run a relay and play on it
  lineduel lineduel://HOST:PORT/ARENA
                                join the relay behind a share link
  lineduel join                 find a relay on the LAN and join it
  lineduel relay                run a relay without a window`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	switch {
	case len(args) == 0:
		err = runHost(ctx, cfg)
	case args[0] == "relay":
		err = runRelay(ctx, cfg)
	case args[0] == "join":
		err = runJoin(ctx, cfg)
	case strings.HasPrefix(args[0], net.LinkScheme):
		err = runLink(ctx, cfg, args[0])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("lineduel exited")
	}
}

func runRelay(ctx context.Context, cfg config.Config) error {
	log.Info().Str("addr", cfg.Addr).Msg("starting as RELAY")
	if cfg.MDNS {
		if stopMDNS := advertise(cfg); stopMDNS != nil {
			defer stopMDNS()
		}
	}
	return net.NewServer(net.NewRelay(cfg.SendQueue)).ListenAndServe(ctx, cfg.Addr)
}

func runHost(ctx context.Context, cfg config.Config) error {
	log.Info().Str("addr", cfg.Addr).Str("arena", cfg.Arena).Msg("starting as HOST")
	port, err := cfg.Port()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- runRelay(ctx, cfg) }()

	link := net.ShareLink(net.OutgoingIP(), port, cfg.Arena)
	log.Info().Str("link", link).Msg("share this link with your opponent")
	runPeer(ctx, cfg, fmt.Sprintf("127.0.0.1:%d", port), cfg.Arena, link)

	cancel()
	return <-errc
}

func runLink(ctx context.Context, cfg config.Config, link string) error {
	addr, arena, err := net.ParseLink(link)
	if err != nil {
		return err
	}
	if arena == "" {
		arena = cfg.Arena
	}
	log.Info().Str("relay", addr).Str("arena", arena).Msg("starting as PEER")
	runPeer(ctx, cfg, addr, arena, "")
	return nil
}

func runJoin(ctx context.Context, cfg config.Config) error {
	found, err := net.Browse(ctx, 5*time.Second)
	if err != nil {
		return err
	}
	arena := found.Arena
	if arena == "" {
		arena = cfg.Arena
	}
	log.Info().Str("relay", found.Addr).Str("arena", arena).Msg("relay found, starting as PEER")
	runPeer(ctx, cfg, found.Addr, arena, "")
	return nil
}

// runPeer opens the window and plays until it is closed or ctx ends.
func runPeer(ctx context.Context, cfg config.Config, relayAddr, arena, shareLink string) {
	codec, err := net.CodecByName(cfg.Codec)
	if err != nil {
		log.Fatal().Err(err).Msg("codec")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var peer *state.Peer
	win := ui.NewWindow("LineDuel · "+arena, shareLink, ui.Controls{
		OnReset: func() { peer.ResetArena() },
		OnExport: func() (string, error) {
			snap, err := peer.Snapshot(ctx)
			if err != nil {
				return "", err
			}
			return export.SaveRound(cfg.ExportDir, snap, time.Now())
		},
	})

	peer = state.NewPeer(win.Arena, state.Options{
		MinSegmentLength: cfg.MinSegmentLength,
		GridCellSize:     cfg.GridCellSize,
	})
	game := peer.Game
	game.OnPhase = func(_, to state.Phase) {
		s := game.Score()
		win.Status.SetRound(fmt.Sprintf("%s · %d won / %d lost", to, s.Wins, s.Losses))
	}
	game.OnSendError = func(event string, err error) {
		win.Status.SetInfo(fmt.Sprintf("%s not sent: %v", event, err))
	}

	ch := net.Dial(ctx, net.ChannelConfig{
		Addr:           relayAddr,
		Arena:          arena,
		Codec:          codec,
		Queue:          cfg.SendQueue,
		ReconnectDelay: cfg.ReconnectDelay,
		OnDialError: func(err error) {
			if errors.Is(err, net.ErrArenaFull) {
				win.Status.SetInfo("Arena " + arena + " is full, waiting for a seat")
				return
			}
			win.Status.SetInfo("Relay unreachable, retrying")
		},
	}, connStatus{Inbound: peer, status: win.Status})
	defer ch.Close()
	peer.Attach(ch)

	win.Arena.OnPointerMove = peer.Move
	win.Arena.OnPointerLeave = peer.Leave

	go func() {
		_ = peer.Run(ctx)
	}()
	go func() {
		<-ctx.Done()
		win.Quit()
	}()
	win.Run()
}

// connStatus shows connectivity changes in the toolbar before handing them
// to the peer.
type connStatus struct {
	state.Inbound
	status *ui.Status
}

func (c connStatus) OnConnected() {
	c.status.SetConnection("Connected")
	c.status.SetInfo("")
	c.Inbound.OnConnected()
}

func (c connStatus) OnDisconnected(err error) {
	c.status.SetConnection("Reconnecting…")
	c.Inbound.OnDisconnected(err)
}

func advertise(cfg config.Config) func() {
	port, err := cfg.Port()
	if err != nil {
		log.Warn().Err(err).Msg("mdns disabled")
		return nil
	}
	srv, err := net.Advertise(port, cfg.Arena)
	if err != nil {
		log.Warn().Err(err).Msg("mdns disabled")
		return nil
	}
	return func() { _ = srv.Shutdown() }
}
