// Package httpserver exposes the liveness endpoint the hosting platform
// polls, plus the public seal verification route.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/seal"
)

const aliveText = "Bot is alive!"

// SealVerifier checks a seal token. Nil disables the /seal route.
type SealVerifier interface {
	Verify(token string) (*seal.Claims, error)
}

type Server struct {
	addr            string
	handler         http.Handler
	logger          logging.Logger
	shutdownTimeout time.Duration
}

func New(addr string, verifier SealVerifier, logger logging.Logger) *Server {
	s := &Server{
		addr:            addr,
		logger:          logger.With("module", "http"),
		shutdownTimeout: 5 * time.Second,
	}
	s.handler = s.routes(verifier)
	return s
}

func (s *Server) routes(verifier SealVerifier) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	alive := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(aliveText))
	}
	r.Get("/", alive)
	r.Get("/health", alive)

	if verifier != nil {
		r.Get("/seal/{token}", func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.Verify(chi.URLParam(r, "token"))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid seal"})
				return
			}
			writeJSON(w, http.StatusOK, claims)
		})
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Handler returns the routes, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info(ctx, "http server stopped")
	return nil
}
