// Package server exposes the dashboard over HTTP: the page itself, the
// view model as JSON and server-rendered chart images.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spektr-org/dashboard/dataset"
	"github.com/spektr-org/dashboard/engine"
)

// shutdownTimeout bounds how long in-flight requests may take once the
// serve context is cancelled.
const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// CORSOrigins lists the origins allowed to call the API. Empty allows all.
	CORSOrigins []string
	// Engine is passed to every engine.Build call.
	Engine []engine.Option
}

// Server serves one immutable dataset.
type Server struct {
	router *gin.Engine
	ds     *dataset.Dataset
	opts   Options
	page   *template.Template
}

// New builds the router. ds is shared by all requests and never modified.
func New(ds *dataset.Dataset, opts Options) (*Server, error) {
	page, err := template.ParseFS(assets, "web/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggerMiddleware())
	router.Use(CORSMiddleware(opts.CORSOrigins))

	s := &Server{
		router: router,
		ds:     ds,
		opts:   opts,
		page:   page,
	}
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		slog.Error("Failed to start server", "error", err)
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	slog.Info("Dashboard listening", "url", "http://"+ln.Addr().String())
	return s.Serve(ctx, ln)
}
