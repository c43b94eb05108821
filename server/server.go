package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/iedon/docnav-go/config"
	"github.com/iedon/docnav-go/site"
)

const shutdownGrace = 10 * time.Second

// Server serves the built output together with a small JSON API over the
// build service.
type Server struct {
	cfg    *config.Config
	svc    *site.Service
	logger *slog.Logger
	mux    *http.ServeMux
	header string
}

// New wires the routes. serverHeader, when non-empty, is sent as the Server
// response header.
func New(cfg *config.Config, svc *site.Service, logger *slog.Logger, serverHeader string) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	s := &Server{
		cfg:    cfg,
		svc:    svc,
		logger: logger.With("component", "server"),
		mux:    http.NewServeMux(),
		header: strings.TrimSpace(serverHeader),
	}

	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/outline", s.handleOutline)
	s.mux.HandleFunc("/api/report", s.handleReport)
	s.mux.HandleFunc("/api/rebuild", s.handleRebuild)
	s.mux.HandleFunc("/search-index.json", s.handleSearchIndex)
	s.mux.HandleFunc("/", s.handlePage)
	return s
}

// Handler returns the mux wrapped in the response middlewares.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, s.accessLog, s.serverHeader)
}

// Start runs an initial build, then serves until ctx is cancelled. A failed
// initial build is logged and the server still starts so that a later
// rebuild can fix it.
func (s *Server) Start(ctx context.Context) error {
	if _, err := s.svc.BuildStatic(ctx); err != nil {
		s.logger.Warn("initial build failed", "error", err)
	}

	ln, err := openListener(s.cfg.Listen)
	if err != nil {
		return err
	}
	s.logger.Info("listening", "address", ln.Addr().String(), "tls", s.cfg.EnableTLS)

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown", "error", err)
		}
	}()

	if s.cfg.EnableTLS {
		err = httpSrv.ServeTLS(ln, s.cfg.TLSCert, s.cfg.TLSKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
