// Package server exposes the certificate pipeline over HTTP.
//
// Routes:
//
//	POST /api/generate-designs  category + background image -> designs
//	POST /api/render            one design + overrides -> png, svg or op JSON
//	GET  /api/test              built-in recovery self-test
//	POST /api/test              recover an arbitrary model answer
//	GET  /healthz               liveness
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/certforge/certforge/pkg/layout"
	"github.com/certforge/certforge/pkg/pipeline"
	"github.com/certforge/certforge/pkg/render/background"
)

// ShutdownTimeout bounds how long in-flight requests may run after the
// server is asked to stop.
const ShutdownTimeout = 30 * time.Second

// Server serves the pipeline of one Runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger

	maxUpload    int64
	canvas       layout.Canvas
	maxSide      int
	model        string
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxUpload caps the decoded size of uploaded background images.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithCanvas sets the canvas uploads are fitted to and designs are
// rendered on when a request does not name one.
func WithCanvas(c layout.Canvas) Option {
	return func(s *Server) { s.canvas = c }
}

// WithMaxCanvasSide bounds the canvas a render request may ask for.
func WithMaxCanvasSide(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSide = n
		}
	}
}

// WithModel names the model in batch cache keys.
func WithModel(model string) Option {
	return func(s *Server) { s.model = model }
}

// WithTimeouts sets the HTTP read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.readTimeout, s.writeTimeout = read, write
	}
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:       runner,
		logger:       log.New(io.Discard),
		maxUpload:    background.MaxUploadBytes,
		canvas:       layout.ReferenceCanvas,
		maxSide:      layout.MaxCanvasSide,
		readTimeout:  30 * time.Second,
		writeTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router with all middleware and routes wired up.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(Recoverer(s.logger))
	r.Use(RequestID)
	r.Use(Logger(s.logger))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-designs", s.handleGenerate)
		r.Post("/render", s.handleRender)
		r.Get("/test", s.handleSelfTest)
		r.Post("/test", s.handleTestRecover)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
