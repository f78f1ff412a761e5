// Package server exposes layout generation over HTTP.
//
// Routes:
//
//	GET  /healthz                  liveness and build info
//	GET  /v1/catalog               catalog hash and per-type statistics
//	GET  /v1/catalog/modules/{id}  one module
//	POST /v1/layouts               generate a layout
//	POST /v1/bricks                group an existing layout into bricks
//
// The catalog is loaded once at startup. Every request builds its own
// generator, so handlers run concurrently without shared mutable state.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/storeweaver/pkg/buildinfo"
	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
	"github.com/matzehuels/storeweaver/pkg/layout"
	"github.com/matzehuels/storeweaver/pkg/observability"
	"github.com/matzehuels/storeweaver/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds request bodies when Config.MaxBodyBytes is 0.
const DefaultMaxBodyBytes = 8 << 20

// Config wires a [Server].
type Config struct {
	Runner      *pipeline.Runner
	Catalog     *catalog.Catalog
	CatalogHash string

	// Defaults fill fields a request leaves empty.
	Defaults pipeline.Options

	Logger       *log.Logger
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the layout API.
type Server struct {
	cfg    Config
	router chi.Router
}

// New validates cfg and builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "server needs a catalog")
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = cfg.Runner.Logger
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.CatalogHash == "" {
		h, err := pipeline.HashCatalog(cfg.Catalog)
		if err != nil {
			return nil, err
		}
		cfg.CatalogHash = h
	}

	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/catalog/modules/{id}", s.handleModule)
		r.Post("/layouts", s.handleLayouts)
		r.Post("/bricks", s.handleBricks)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.cfg.Logger.Info("listening", "addr", addr, "modules", s.cfg.Catalog.Len())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.cfg.Logger.Info("server stopped")
		return nil
	}
}

// observe reports every request to the registered HTTP hooks and logs it.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		d := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, d)
		s.cfg.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"modules": s.cfg.Catalog.Len(),
		"build":   buildinfo.Get(),
	})
}

type catalogResponse struct {
	Hash    string              `json:"hash"`
	Modules int                 `json:"modules"`
	Types   []catalog.TypeStats `json:"types"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Hash:    s.cfg.CatalogHash,
		Modules: s.cfg.Catalog.Len(),
		Types:   catalog.Stats(s.cfg.Catalog),
	})
}

type moduleResponse struct {
	ID        string       `json:"id"`
	Type      catalog.Type `json:"type"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Quality   float64      `json:"quality"`
	Thumbnail string       `json:"thumbnail,omitempty"`
	Source    string       `json:"source,omitempty"`
}

func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := s.cfg.Catalog.Get(id)
	if !ok {
		writeError(w, errs.New(errs.ErrCodeNotFound, "module %q not in catalog", id))
		return
	}
	writeJSON(w, http.StatusOK, moduleResponse{
		ID:        m.ID,
		Type:      m.Type,
		Width:     m.Width(),
		Height:    m.Height(),
		Quality:   score.Quality(m.Width(), m.Height()),
		Thumbnail: m.Renditions.Thumbnail.Path,
		Source:    m.Source,
	})
}

func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Options
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	opts := s.merge(req)

	res, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil && !errs.Is(err, errs.ErrCodeEmptyCatalog) {
		writeError(w, err)
		return
	}
	if err != nil {
		// Partial layout with the error attached.
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  errs.UserMessage(err),
			"code":   errs.GetCode(err),
			"layout": res.Layout,
		})
		return
	}

	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.LayoutHit))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (s *Server) handleBricks(w http.ResponseWriter, r *http.Request) {
	var l layout.Layout
	if err := s.decode(w, r, &l); err != nil {
		writeError(w, err)
		return
	}
	seq, _, err := layout.Parse(l, s.cfg.Catalog)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := s.merge(pipeline.Options{Viewport: string(score.ViewportNarrow)})
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, err)
		return
	}
	groups, hit, err := s.cfg.Runner.GroupWithCacheInfo(r.Context(), seq, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(hit))
	writeJSON(w, http.StatusOK, layout.Export(seq, groups))
}

// merge applies server defaults and pins the request to the loaded catalog.
func (s *Server) merge(req pipeline.Options) pipeline.Options {
	d := s.cfg.Defaults
	opts := req
	opts.CatalogPath = ""
	opts.Catalog = s.cfg.Catalog
	opts.CatalogHash = s.cfg.CatalogHash
	opts.Logger = s.cfg.Logger
	opts.Engagement = d.Engagement
	opts.EngagementWeight = d.EngagementWeight
	opts.Categories = d.Categories
	opts.Hooks = d.Hooks
	if opts.Viewport == "" {
		opts.Viewport = d.Viewport
	}
	if opts.Strategy == "" {
		opts.Strategy = d.Strategy
	}
	if opts.MinContent == 0 && opts.MaxContent == 0 {
		opts.MinContent, opts.MaxContent = d.MinContent, d.MaxContent
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = d.MaxIterations
	}
	opts.EnhancedFit = opts.EnhancedFit || d.EnhancedFit
	return opts
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string    `json:"error"`
	Code  errs.Code `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorResponse{Error: errs.UserMessage(err), Code: code})
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidViewport, errs.ErrCodeInvalidConfig, errs.ErrCodeInvalidCatalog:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeEmptyCatalog:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
