package net

import (
	"errors"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxArenaPeers is the number of players one arena holds.
const MaxArenaPeers = 2

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	maxFrame   = 1 << 16
)

var ErrArenaFull = errors.New("arena full")

type frame struct {
	kind int
	data []byte
}

type member struct {
	id   string
	send chan frame
}

// ArenaInfo is one entry of the arena listing.
type ArenaInfo struct {
	Code  string `json:"code"`
	Peers int    `json:"peers"`
}

// Relay forwards every frame a peer sends to the other peer of its arena.
// It never looks inside the frames.
type Relay struct {
	mu     sync.RWMutex
	arenas map[string][]*member
	queue  int
	log    zerolog.Logger

	upgrader websocket.Upgrader
}

func NewRelay(queue int) *Relay {
	if queue <= 0 {
		queue = 256
	}
	return &Relay{
		arenas: make(map[string][]*member),
		queue:  queue,
		log:    log.With().Str("component", "relay").Logger(),
		upgrader: websocket.Upgrader{
			// Peers are LAN clients of a desktop app, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// join reserves a seat in the arena before the websocket upgrade so a third
// peer is refused with a plain HTTP error.
func (r *Relay) join(code, remote string) (*member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.arenas[code]) >= MaxArenaPeers {
		return nil, ErrArenaFull
	}
	m := &member{id: remote, send: make(chan frame, r.queue)}
	r.arenas[code] = append(r.arenas[code], m)
	r.log.Info().Str("arena", code).Str("peer", remote).Int("peers", len(r.arenas[code])).Msg("peer joined")
	return m, nil
}

// leave removes m from the arena and closes its queue. Calling it again for
// the same member does nothing.
func (r *Relay) leave(code string, m *member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.arenas[code]
	i := slices.Index(members, m)
	if i < 0 {
		return
	}
	members = slices.Delete(members, i, i+1)
	if len(members) == 0 {
		delete(r.arenas, code)
	} else {
		r.arenas[code] = members
	}
	close(m.send)
	r.log.Info().Str("arena", code).Str("peer", m.id).Int("peers", len(members)).Msg("peer left")
}

// forward queues f for every member of the arena except the sender. A member
// whose queue is full misses the frame.
func (r *Relay) forward(code string, from *member, f frame) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.arenas[code] {
		if m == from {
			continue
		}
		select {
		case m.send <- f:
		default:
			r.log.Warn().Str("arena", code).Str("peer", m.id).Msg("send queue full, frame dropped")
		}
	}
}

// Arenas lists the live arenas sorted by code.
func (r *Relay) Arenas() []ArenaInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ArenaInfo, 0, len(r.arenas))
	for code, members := range r.arenas {
		out = append(out, ArenaInfo{Code: code, Peers: len(members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ServeWS upgrades a peer connection for the arena named in the URL.
func (r *Relay) ServeWS(w http.ResponseWriter, req *http.Request) {
	code := chi.URLParam(req, "arena")
	if code == "" {
		http.Error(w, "missing arena", http.StatusBadRequest)
		return
	}
	m, err := r.join(code, req.RemoteAddr)
	if err != nil {
		r.log.Warn().Str("arena", code).Str("peer", req.RemoteAddr).Msg("arena full, peer refused")
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Error().Err(err).Msg("upgrade")
		r.leave(code, m)
		return
	}

	go r.writePump(conn, m)
	r.readPump(conn, code, m)
}

func (r *Relay) readPump(conn *websocket.Conn, code string, m *member) {
	defer func() {
		r.leave(code, m)
		_ = conn.Close()
	}()
	conn.SetReadLimit(maxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.log.Debug().Err(err).Str("peer", m.id).Msg("read")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		r.forward(code, m, frame{kind: kind, data: data})
	}
}

func (r *Relay) writePump(conn *websocket.Conn, m *member) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case f, ok := <-m.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(f.kind, f.data); err != nil {
				r.log.Debug().Err(err).Str("peer", m.id).Msg("write")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
