// Package server exposes the orchestrator over HTTP: rendered pages,
// edit intents, the raw record set, exports and the OpenAPI document.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/pkg/openapi"
	"github.com/goliatone/go-formdoc/pkg/orchestrator"
	"github.com/goliatone/go-formdoc/pkg/renderers/html"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxBodyBytes          = 4 << 20
)

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer mounts /metrics for the given gatherer.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithAPIDocument replaces the document generated from the schema registry.
func WithAPIDocument(doc *openapi3.T) Option {
	return func(s *Server) {
		s.apiDoc = doc
	}
}

func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithPageBackend selects the backend used for view and edit pages.
func WithPageBackend(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.pageBackend = name
		}
	}
}

// Server serves one orchestrator.
type Server struct {
	orch        *orchestrator.Orchestrator
	logger      *zap.Logger
	gatherer    prometheus.Gatherer
	apiDoc      *openapi3.T
	timeout     time.Duration
	pageBackend string
}

func New(orch *orchestrator.Orchestrator, options ...Option) (*Server, error) {
	if orch == nil {
		return nil, errors.New("server: orchestrator is required")
	}
	s := &Server{
		orch:        orch,
		logger:      zap.NewNop(),
		timeout:     defaultRequestTimeout,
		pageBackend: "html",
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.apiDoc == nil {
		doc, err := openapi.Describe(orch.Schemas())
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.apiDoc = doc
	}
	return s, nil
}

// Handler returns a router with every route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register mounts the routes on r.
func (s *Server) Register(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Get("/", s.handleIndex)
		r.Get("/openapi.json", s.handleOpenAPI)
		r.Get("/raw", s.handleGetRaw)
		r.Put("/raw", s.handlePutRaw)
		r.Route("/forms/{type}", func(r chi.Router) {
			r.Get("/", s.handleForm)
			r.Post("/intents", s.handleIntent)
			r.Get("/export", s.handleExport)
		})
	})
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
