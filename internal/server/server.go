// Package server exposes resolved dependency graphs over a small HTTP API.
//
// Routes:
//
//	GET /healthz                  liveness probe
//	GET /api/v1/graph/{package}   JSON nodes, edges, statistics, warnings
//	GET /api/v1/tree/{package}    plain-text tree report
//
// Query parameters version, filter, max_depth, and max_packages override
// the configured crawl settings per request.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/depviz-io/depviz/internal/report"
	"github.com/depviz-io/depviz/pkg/config"
	"github.com/depviz-io/depviz/pkg/depgraph"
	"github.com/depviz-io/depviz/pkg/errors"
	"github.com/depviz-io/depviz/pkg/registry"
)

const shutdownTimeout = 5 * time.Second

// Server resolves dependency graphs on demand and serves them over HTTP.
type Server struct {
	source registry.Source
	cfg    config.Config
	logger *log.Logger
	router chi.Router
}

// New creates a Server resolving against the given metadata source.
func New(source registry.Source, cfg config.Config, logger *log.Logger) *Server {
	s := &Server{source: source, cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	// Wildcard routes: scoped npm names (@scope/name) contain a slash.
	r.Get("/api/v1/graph/*", s.handleGraph)
	r.Get("/api/v1/tree/*", s.handleTree)

	s.router = r
	return s
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// graphResponse is the payload of the graph endpoint.
type graphResponse struct {
	Package  string              `json:"package"`
	Stats    depgraph.Stats      `json:"stats"`
	Nodes    []depgraph.JSONNode `json:"nodes"`
	Edges    []depgraph.JSONEdge `json:"edges"`
	Warnings []string            `json:"warnings,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	pkg, res, err := s.resolve(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	gj := depgraph.ToJSON(res.Graph)
	resp := graphResponse{
		Package: pkg,
		Stats:   depgraph.Collect(res.Graph, pkg),
		Nodes:   gj.Nodes,
		Edges:   gj.Edges,
	}
	for _, warn := range res.Warnings {
		resp.Warnings = append(resp.Warnings, warn.Package+": "+errors.UserMessage(warn.Err))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	pkg, res, err := s.resolve(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	report.Write(w, res.Graph, pkg, depgraph.TreeOptions{})
}

// resolve runs a crawl for the package named by the request path, applying
// per-request overrides from the query string.
func (s *Server) resolve(r *http.Request) (string, *depgraph.Result, error) {
	pkg := strings.Trim(chi.URLParam(r, "*"), "/")
	if pkg == "" {
		return "", nil, errors.New(errors.ErrCodeInvalidPackage, "no package in request path")
	}

	cfg := s.cfg
	q := r.URL.Query()
	if v := q.Get("version"); v != "" {
		cfg.Version = v
	}
	if v := q.Get("filter"); v != "" {
		cfg.Filter = v
	}
	if v := q.Get("max_depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "", nil, errors.New(errors.ErrCodeInvalidConfig, "invalid max_depth: %s", v)
		}
		cfg.MaxDepth = n
	}
	if v := q.Get("max_packages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "", nil, errors.New(errors.ErrCodeInvalidConfig, "invalid max_packages: %s", v)
		}
		cfg.MaxPackages = n
	}

	opts := cfg.BuildOptions()
	opts.Logger = func(msg string, args ...any) { s.logger.Debugf(msg, args...) }

	res, err := depgraph.NewBuilder(s.source).Build(r.Context(), pkg, opts)
	if err != nil {
		return "", nil, err
	}
	return pkg, res, nil
}

// errorResponse is the payload of failed requests.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidPackage, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case errors.ErrCodePackageNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeRegistryUnavailable:
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Code: string(code), Message: errors.UserMessage(err)})
}
