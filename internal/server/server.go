// Package server exposes the projection engine and the calculator catalog
// over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/finance-calculators/internal/cache"
	"github.com/iwvelando/finance-calculators/internal/calculator"
	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/finance"
	"github.com/iwvelando/finance-calculators/pkg/loans"
	"github.com/iwvelando/finance-calculators/pkg/output"
	"github.com/iwvelando/finance-calculators/pkg/projection"
	"go.uber.org/zap"
)

// Options configures NewHandler. Zero values select defaults.
type Options struct {
	MaxBodySize int64
	Version     string
	Cache       cache.Cache
	CacheTTL    time.Duration
	// Now anchors time-relative calculator inputs. Defaults to time.Now.
	Now func() time.Time
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	cache       cache.Cache
	cacheTTL    time.Duration
	now         func() time.Time
	calculator  *calculator.Calculator
	amortizer   *loans.Amortizer
	projector   *finance.Projector
}

// NewHandler constructs the HTTP handler that serves the calculation API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = constants.DefaultCacheTTLSeconds * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		logger:      logger,
		maxBodySize: opts.MaxBodySize,
		version:     version,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		now:         opts.Now,
		calculator:  calculator.NewCalculator(logger),
		amortizer:   loans.NewAmortizer(logger),
		projector:   finance.NewProjector(logger),
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(limitBody(h.maxBodySize))

	r.Get("/healthz", h.handleHealth)
	r.Get("/api/version", h.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/amortization", h.handleAmortization)
		r.Post("/accumulation", h.handleAccumulation)
		r.Post("/drawdown", h.handleDrawdown)

		r.Post("/solve/payment", h.handleSolvePayment)
		r.Post("/solve/months", h.handleSolveMonths)
		r.Post("/solve/contribution", h.handleSolveContribution)
		r.Post("/solve/retirement-goal", h.handleSolveRetirementGoal)

		r.Get("/calculators", h.handleKinds)
		r.Post("/calculators/{kind}", h.handleCalculator)
		r.Post("/batch", h.handleBatch)
	})

	return r
}

// Server runs the API until its context is cancelled.
type Server struct {
	http   *http.Server
	cache  cache.Cache
	logger *zap.Logger
}

// New builds a server from cfg, including its cache backend.
func New(cfg *Config, logger *zap.Logger, version string) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := cfg.Cache.NewCache(logger)
	if err != nil {
		return nil, err
	}
	handler := NewHandler(logger, Options{
		MaxBodySize: cfg.BodySizeBytes(),
		Version:     version,
		Cache:       c,
		CacheTTL:    cfg.Cache.CacheTTL(),
	})
	return &Server{
		http: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		cache:  c,
		logger: logger,
	}, nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			zap.String("op", "server.Run"),
			zap.String("address", s.http.Addr),
		)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.closeCache()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	s.closeCache()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) closeCache() {
	if closer, ok := s.cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn("failed to close cache",
				zap.String("op", "server.Run"),
				zap.Error(err),
			)
		}
	}
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handleKinds(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]string{"kinds": config.Kinds()})
}

// decode reads a JSON body into v, rejecting unknown fields.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, v any, op string) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), op)
			return false
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// statusFor maps engine and calculator errors onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, projection.ErrInvalidParameter), errors.Is(err, calculator.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, projection.ErrPaymentTooLow), errors.Is(err, projection.ErrDidNotConverge):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *handler) respondErr(w http.ResponseWriter, r *http.Request, err error, op string) {
	h.respondError(w, r, statusFor(err), err.Error(), op)
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	log := h.logger.Warn
	if status >= http.StatusInternalServerError {
		log = h.logger.Error
	}
	log("calculation request failed",
		zap.String("op", op),
		zap.String("requestId", RequestIDFromContext(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) writeBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write response",
			zap.String("op", "server.writeBody"),
			zap.Error(err),
		)
	}
}

// formatParam returns the requested output format for endpoints that can
// render CSV or YAML in addition to JSON.
func formatParam(r *http.Request) (string, error) {
	f := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch f {
	case "", constants.OutputFormatJSON:
		return constants.OutputFormatJSON, nil
	case constants.OutputFormatCSV, constants.OutputFormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q, expected json, csv or yaml", f)
}

func contentType(format string) string {
	switch format {
	case constants.OutputFormatCSV:
		return "text/csv; charset=utf-8"
	case constants.OutputFormatYAML:
		return "application/yaml"
	}
	return "application/json"
}

func (h *handler) writeResults(w http.ResponseWriter, format string, results []calculator.Result) error {
	var buf strings.Builder
	if err := output.Write(&buf, format, results); err != nil {
		return err
	}
	h.writeBody(w, http.StatusOK, contentType(format), []byte(buf.String()))
	return nil
}
