package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/ghfolio/pkg/portfolio"
	"github.com/matzehuels/ghfolio/pkg/snapshot"
	"github.com/matzehuels/ghfolio/pkg/stats"
)

const (
	// CacheControl is sent with every fresh report.
	CacheControl = "s-maxage=1800, stale-while-revalidate=86400"

	// StaleHeader marks a response served from a snapshot.
	StaleHeader = "X-Ghfolio-Stale"

	// SnapshotHeader carries the RFC 3339 time a stale snapshot was taken.
	SnapshotHeader = "X-Ghfolio-Snapshot-Time"

	DefaultRequestTimeout = 60 * time.Second

	tracerName = "github.com/matzehuels/ghfolio/pkg/api"
)

// Reporter computes the reports. *portfolio.Service implements it.
type Reporter interface {
	Stats(ctx context.Context, username string) (*stats.Stats, error)
	Projects(ctx context.Context, username string) (*portfolio.ProjectsReport, error)
	Snapshot(ctx context.Context, kind snapshot.Kind, username string, v any) (*snapshot.Snapshot, error)
}

// Options configures a [Server].
type Options struct {
	DefaultUsername string        // used when the request names no user
	StaticDir       string        // optional built single-page app
	RequestTimeout  time.Duration // per-request deadline
	Logger          *log.Logger
}

// Server is the HTTP front of the portfolio service.
type Server struct {
	reports Reporter
	opts    Options
	logger  *log.Logger
	tracer  trace.Tracer
}

// New creates a Server.
func New(reports Reporter, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	return &Server{
		reports: reports,
		opts:    opts,
		logger:  opts.Logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.tracing)
	r.Use(s.logging)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.timeout)
		r.Get("/github-stats", s.handleStats)
		r.Get("/github-projects", s.handleProjects)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "Not found")
		})
	})

	if s.opts.StaticDir != "" {
		r.NotFound(spaHandler(s.opts.StaticDir))
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
