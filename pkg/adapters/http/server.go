package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/aretw0/tablesession/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:generate go tool oapi-codegen -package http -generate types,chi-server,spec -o api.gen.go ../../../api/openapi.yaml

// MaxPayloadBytes bounds the body accepted by PUT /sessions/{id}.
const MaxPayloadBytes = 1 << 20

// StoreFactory returns a fresh session handler for one request.
type StoreFactory func() (ports.Handler, error)

// Server implements the generated ServerInterface
type Server struct {
	NewStore StoreFactory
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	metrics http.Handler
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// Option configures the handler.
type Option func(*Server)

// WithGatherer exposes metrics from g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the session store.
func NewHandler(factory StoreFactory, opts ...Option) http.Handler {
	server := &Server{
		NewStore: factory,
		Logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Gatherer != nil {
		server.metrics = promhttp.HandlerFor(server.Gatherer, promhttp.HandlerOpts{})
	}

	r := chi.NewRouter()
	r.Use(escapedRoutePath)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		// The embedded document is JSON, which is also valid YAML
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			server.Logger.Error("Failed to load OpenAPI spec", "err", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(spec)
	})

	return HandlerWithOptions(server, ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			server.Logger.Warn("Rejected request parameters", "path", r.URL.Path, "err", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
		},
	})
}

// escapedRoutePath makes chi match on the escaped path, so path parameters
// always arrive percent-encoded and are decoded once by the parameter binder.
func escapedRoutePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			rctx.RoutePath = r.URL.EscapedPath()
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

// GetMetrics handles GET /metrics. It is 404 when no gatherer is configured.
func (s *Server) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		http.NotFound(w, r)
		return
	}
	s.metrics.ServeHTTP(w, r)
}

// ReadSession handles GET /sessions/{id}.
func (s *Server) ReadSession(w http.ResponseWriter, r *http.Request, id string) {
	store, ok := s.store(w)
	if !ok {
		return
	}

	data, err := store.Read(r.Context(), id)
	if err != nil {
		s.fail(w, "Read", id, err)
		return
	}

	writeJSON(w, s.Logger, http.StatusOK, SessionResponse{SessionId: id, Data: data})
}

// WriteSession handles PUT /sessions/{id}. The raw body is the new payload.
func (s *Server) WriteSession(w http.ResponseWriter, r *http.Request, id string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
		} else {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
		}
		s.Logger.Warn("Write: Invalid request body", "session_id", id, "err", err)
		return
	}

	store, ok := s.store(w)
	if !ok {
		return
	}
	if err := store.Write(r.Context(), id, string(body)); err != nil {
		s.fail(w, "Write", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DestroySession handles DELETE /sessions/{id}.
func (s *Server) DestroySession(w http.ResponseWriter, r *http.Request, id string) {
	store, ok := s.store(w)
	if !ok {
		return
	}
	if err := store.Destroy(r.Context(), id); err != nil {
		s.fail(w, "Destroy", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CollectGarbage handles POST /gc?max_age=<duration>.
func (s *Server) CollectGarbage(w http.ResponseWriter, r *http.Request, params CollectGarbageParams) {
	maxAge, err := time.ParseDuration(params.MaxAge)
	if err != nil || maxAge < 0 {
		http.Error(w, "Invalid max_age: expected a non-negative duration such as 24m", http.StatusBadRequest)
		return
	}

	store, ok := s.store(w)
	if !ok {
		return
	}
	n, err := store.GC(r.Context(), maxAge)
	if err != nil {
		s.fail(w, "GC", "", err)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, GCResponse{Deleted: n, MaxAge: maxAge.String()})
}

func (s *Server) store(w http.ResponseWriter) (ports.Handler, bool) {
	store, err := s.NewStore()
	if err != nil {
		http.Error(w, "Session store unavailable", http.StatusInternalServerError)
		s.Logger.Error("Failed to create session store", "err", err)
		return nil, false
	}
	return store, true
}

func (s *Server) fail(w http.ResponseWriter, op, id string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrCorruptedData) {
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
	s.Logger.Error(op+" failed", "session_id", id, "err", err)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}
