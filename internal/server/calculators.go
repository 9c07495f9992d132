package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/finance-calculators/internal/cache"
	"github.com/iwvelando/finance-calculators/internal/calculator"
	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"go.uber.org/zap"
)

// CacheHeader reports whether a calculator result came from the cache.
const CacheHeader = "X-Cache"

// WarningHeader carries configuration warnings on non-JSON batch responses.
const WarningHeader = "X-Config-Warning"

type batchResponse struct {
	Results  []calculator.Result `json:"results"`
	Warnings []string            `json:"warnings,omitempty"`
	Duration string              `json:"duration"`
}

func (h *handler) handleCalculator(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculator"
	kind := chi.URLParam(r, "kind")
	if !config.KnownKind(kind) {
		h.respondError(w, r, http.StatusNotFound, fmt.Sprintf("unknown calculator kind %q", kind), op)
		return
	}
	format, err := formatParam(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	var calc config.Calculation
	if !h.decode(w, r, &calc, op) {
		return
	}
	if calc.Kind != "" && calc.Kind != kind {
		h.respondError(w, r, http.StatusBadRequest,
			fmt.Sprintf("request kind %q does not match path kind %q", calc.Kind, kind), op)
		return
	}
	calc.Kind = kind
	if calc.Name == "" {
		calc.Name = kind
	}

	// Alcohol results depend on the current time and are never cached.
	cacheable := kind != config.KindAlcohol
	var key string
	if cacheable {
		payload, err := json.Marshal(calc)
		if err != nil {
			h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to encode request: %v", err), op)
			return
		}
		key = cache.Key(kind, payload)
		if cached, ok := h.cache.Get(r.Context(), key); ok {
			w.Header().Set(CacheHeader, "HIT")
			h.writeResult(w, r, format, []byte(cached), op)
			return
		}
		w.Header().Set(CacheHeader, "MISS")
	}

	result, err := h.calculator.Run(calc, h.now())
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	body, err := json.Marshal(result)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to encode result: %v", err), op)
		return
	}
	if cacheable {
		if err := h.cache.Set(r.Context(), key, string(body), h.cacheTTL); err != nil {
			h.logger.Warn("failed to cache calculator result",
				zap.String("op", op),
				zap.String("kind", kind),
				zap.Error(err),
			)
		}
	}
	h.writeResult(w, r, format, body, op)
}

// writeResult renders a JSON-encoded result in the requested format.
func (h *handler) writeResult(w http.ResponseWriter, r *http.Request, format string, body []byte, op string) {
	if format == constants.OutputFormatJSON {
		h.writeBody(w, http.StatusOK, contentType(format), body)
		return
	}
	var result calculator.Result
	if err := json.Unmarshal(body, &result); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to decode result: %v", err), op)
		return
	}
	if err := h.writeResults(w, format, []calculator.Result{result}); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBatch"
	start := time.Now()

	format, err := formatParam(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), op)
			return
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return
	}

	conf, err := config.LoadConfigurationFromReader(bytes.NewReader(data))
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings := conf.ValidateConfiguration()

	results, err := h.calculator.RunAll(conf.Calculations, h.now())
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}

	if format != constants.OutputFormatJSON {
		for _, warning := range warnings {
			w.Header().Add(WarningHeader, warning)
		}
		if err := h.writeResults(w, format, results); err != nil {
			h.respondError(w, r, http.StatusInternalServerError, err.Error(), op)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, batchResponse{
		Results:  results,
		Warnings: warnings,
		Duration: time.Since(start).String(),
	})
}
