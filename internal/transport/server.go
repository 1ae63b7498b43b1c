// Package transport is the HTTP front-end: it parses query-param requests,
// calls into the dispatcher, and serialises results back to JSON. None of
// the matching logic lives here.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/ladderbook/internal/engine"
)

const shutdownGrace = 5 * time.Second

// Server is the supervised HTTP front-end for one Engine.
type Server struct {
	address string
	port    int
	engine  *engine.Engine

	httpServer *http.Server
	cancel     context.CancelFunc
}

// New constructs a Server bound to address:port, dispatching accepted
// requests to eng.
func New(address string, port int, eng *engine.Engine) *Server {
	return &Server{address: address, port: port, engine: eng}
}

// Shutdown cancels the context Run was given, if Run is still active.
func (s *Server) Shutdown() {
	log.Info().Msg("transport shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Handler builds the mux router backing this server, exposed so tests can
// drive the API without binding a real listener.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/api", s.handleAPI).Methods(http.MethodGet)
	return router
}

// Run starts the HTTP listener and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.address, s.port),
		Handler: s.Handler(),
	}

	t.Go(func() error {
		log.Info().Str("address", s.httpServer.Addr).Msg("transport listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	t.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return t.Wait()
}
