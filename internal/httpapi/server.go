// Package httpapi serves the audit operations as a read-only JSON API.
//
// Every /v1 response uses the envelope {status, data, error, trace_id}.
// Operation latency is recorded in a Prometheus histogram exposed at
// /metrics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/roach88/auditlens/internal/service"
)

// Server routes HTTP requests to a Service.
type Server struct {
	svc      *service.Service
	ids      service.TraceIDGenerator
	log      zerolog.Logger
	registry *prometheus.Registry
	latency  *prometheus.HistogramVec
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l.With().Str("component", "httpapi").Logger()
	}
}

// WithTraceIDs replaces the UUIDv7 trace id generator.
func WithTraceIDs(g service.TraceIDGenerator) Option {
	return func(s *Server) {
		s.ids = g
	}
}

// New creates a Server with its own metrics registry.
func New(svc *service.Service, opts ...Option) *Server {
	s := &Server{
		svc:      svc,
		ids:      service.UUIDv7{},
		log:      zerolog.Nop(),
		registry: prometheus.NewRegistry(),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "auditlens",
			Name:      "operation_duration_seconds",
			Help:      "Latency of audit operations served over HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry.MustRegister(s.latency)
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/why", s.operation("why", s.why))
		r.Get("/how", s.operation("how", s.how))
		r.Get("/where", s.operation("where", s.where))
		r.Get("/history/{kind}", s.operation("history", s.history))
		r.Get("/summary", s.operation("summary", s.summary))
		r.Get("/customers/{id}/lineage", s.operation("lineage", s.lineage))
		r.Get("/trace/{kind}/{id}", s.operation("trace", s.trace))
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then drains
// in-flight requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{Status: "ok", Data: map[string]string{"store": "reachable"}, TraceID: s.ids.Generate()})
}
