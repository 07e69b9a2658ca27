package net

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// ProbeReply is the body of the connectivity probe.
const ProbeReply = "Test connexion"

// Server is the HTTP front of a relay:
//
//	GET /api/test          connectivity probe, plain text
//	GET /api/arenas        live arenas and their peer counts
//	GET /ws/{arena}        websocket for one peer of an arena
type Server struct {
	r     *chi.Mux
	relay *Relay
}

func NewServer(relay *Relay) *Server {
	s := &Server{r: chi.NewRouter(), relay: relay}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	s.r.Get("/api/test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(ProbeReply))
	})
	s.r.Get("/api/arenas", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(s.relay.Arenas())
	})
	s.r.Get("/ws/{arena}", s.relay.ServeWS)

	return s
}

// Router exposes the router for tests.
func (s *Server) Router() chi.Router { return s.r }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info().Str("component", "relay").Str("addr", addr).Msg("listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
