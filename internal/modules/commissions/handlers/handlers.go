// Package handlers provides HTTP handlers for commission schedules.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/events"
	"github.com/greenmangroup/wheelhouse/internal/modules/commissions"
	"github.com/greenmangroup/wheelhouse/internal/utils"
)

// Handler provides HTTP handlers for commission endpoints
type Handler struct {
	repo *commissions.Repository
	bus  *events.Bus
	log  zerolog.Logger
}

// NewHandler creates a new commissions handler
func NewHandler(repo *commissions.Repository, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		bus:  bus,
		log:  log.With().Str("handler", "commissions").Logger(),
	}
}

// HandleList handles GET /api/commissions?account_id={id}
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}

	schedule, err := h.repo.ListByAccount(accountID)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("Failed to list commissions")
		http.Error(w, "Failed to list commissions", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(schedule))
}

// HandleCreate handles POST /api/commissions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req commissions.CreateCommissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AccountID == 0 {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}

	effectiveDate, err := utils.DateToUnix(req.EffectiveDate)
	if err != nil {
		http.Error(w, "effective_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	commission := &commissions.Commission{
		AccountID:     req.AccountID,
		Rate:          req.Rate,
		EffectiveDate: effectiveDate,
	}

	if err := h.repo.Create(commission); err != nil {
		h.log.Error().Err(err).Int64("account_id", req.AccountID).Msg("Failed to create commission")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.bus.EmitData("commissions", &events.CommissionChangedData{
		Account:       strconv.FormatInt(req.AccountID, 10),
		EffectiveDate: req.EffectiveDate,
		RatePerShare:  req.Rate,
	})

	h.writeJSON(w, http.StatusCreated, envelope(commission))
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
