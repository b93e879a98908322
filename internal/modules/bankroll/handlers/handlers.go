// Package handlers provides HTTP handlers for bankroll summaries.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/modules/bankroll"
)

// Handler provides HTTP handlers for bankroll endpoints
type Handler struct {
	service *bankroll.Service
	log     zerolog.Logger
}

// NewHandler creates a new bankroll handler
func NewHandler(service *bankroll.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "bankroll").Logger(),
	}
}

// HandleGet handles GET /api/bankroll?account_id&start_date&end_date&status.
// Without an account_id the default account is used.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	statusFilter := strings.ToLower(r.URL.Query().Get("status"))

	var summary *bankroll.Bankroll
	var err error

	if v := r.URL.Query().Get("account_id"); v != "" {
		accountID, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			http.Error(w, "account_id must be an integer", http.StatusBadRequest)
			return
		}
		summary, err = h.service.Get(accountID, startDate, endDate, statusFilter)
	} else {
		summary, err = h.service.GetDefault(startDate, endDate, statusFilter)
	}

	if err != nil {
		if strings.Contains(err.Error(), "unknown status filter") {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "no default account") {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Failed to compute bankroll")
		http.Error(w, "Failed to compute bankroll", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(summary))
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
