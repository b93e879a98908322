// Package handlers provides HTTP handlers for ticker lookups.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/modules/tickers"
)

// Handler provides HTTP handlers for ticker endpoints
type Handler struct {
	service *tickers.Service
	repo    *tickers.Repository
	log     zerolog.Logger
}

// NewHandler creates a new tickers handler
func NewHandler(service *tickers.Service, repo *tickers.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "tickers").Logger(),
	}
}

// HandleList handles GET /api/tickers
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list tickers")
		http.Error(w, "Failed to list tickers", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(all))
}

// HandleCompanyInfo handles GET /api/company-info/{symbol}
func (h *Handler) HandleCompanyInfo(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	ticker, err := h.service.CompanyInfo(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get company info")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(ticker))
}

// HandleTopSymbols handles GET /api/top-symbols
func (h *Handler) HandleTopSymbols(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	symbols, err := h.service.TopSymbols(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get top symbols")
		http.Error(w, "Failed to get top symbols", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(symbols))
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
