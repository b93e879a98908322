// Package handlers provides HTTP handlers for trades: CRUD, rolls, roll
// chains, analytics, and aggregate summaries.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/modules/trades"
	"github.com/greenmangroup/wheelhouse/internal/utils"
)

// Handler provides HTTP handlers for trade endpoints
type Handler struct {
	service *trades.Service
	log     zerolog.Logger
}

// NewHandler creates a new trades handler
func NewHandler(service *trades.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "trades").Logger(),
	}
}

// HandleList handles GET /api/trades with optional account_id, ticker,
// trade_type, status, statuses (comma-separated), start_date, end_date,
// and limit query filters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := trades.ListFilter{
		Ticker:    r.URL.Query().Get("ticker"),
		TradeType: r.URL.Query().Get("trade_type"),
		Status:    r.URL.Query().Get("status"),
		Statuses:  utils.ParseCSV(r.URL.Query().Get("statuses")),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	if v := r.URL.Query().Get("account_id"); v != "" {
		accountID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "account_id must be an integer", http.StatusBadRequest)
			return
		}
		filter.AccountID = &accountID
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		filter.Limit = &limit
	}

	list, err := h.service.List(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list trades")
		http.Error(w, "Failed to list trades", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(list))
}

// HandleGet handles GET /api/trades/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	trade, err := h.service.Get(id)
	if err != nil {
		h.log.Error().Err(err).Int64("trade_id", id).Msg("Failed to get trade")
		http.Error(w, "Failed to get trade", http.StatusInternalServerError)
		return
	}
	if trade == nil {
		http.Error(w, "Trade not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(trade))
}

// HandleCreate handles POST /api/trades
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req trades.CreateTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	trade, err := h.service.Create(req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create trade")
		return
	}

	h.writeJSON(w, http.StatusCreated, envelope(trade))
}

// HandleUpdate handles PUT /api/trades/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	var req trades.UpdateTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	trade, err := h.service.Update(id, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update trade")
		return
	}
	if trade == nil {
		http.Error(w, "Trade not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(trade))
}

// HandleDelete handles DELETE /api/trades/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		h.writeServiceError(w, err, "Failed to delete trade")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRoll handles POST /api/trades/{id}/roll
func (h *Handler) HandleRoll(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	var req trades.RollTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	successor, err := h.service.Roll(id, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to roll trade")
		return
	}
	if successor == nil {
		http.Error(w, "Trade not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusCreated, envelope(successor))
}

// HandleChain handles GET /api/trades/{id}/chain
func (h *Handler) HandleChain(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	chain, err := h.service.Chain(id)
	if err != nil {
		if errors.Is(err, trades.ErrChainCycle) {
			h.log.Warn().Err(err).Int64("trade_id", id).Msg("Roll chain anomaly")
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.log.Error().Err(err).Int64("trade_id", id).Msg("Failed to resolve chain")
		http.Error(w, "Failed to resolve chain", http.StatusInternalServerError)
		return
	}
	if chain == nil {
		http.Error(w, "Trade not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(chain))
}

// HandleAnalytics handles GET /api/trades/{id}/analytics
func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	trade, err := h.service.Get(id)
	if err != nil {
		h.log.Error().Err(err).Int64("trade_id", id).Msg("Failed to get trade")
		http.Error(w, "Failed to get trade", http.StatusInternalServerError)
		return
	}
	if trade == nil {
		http.Error(w, "Trade not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"trade_id":               trade.ID,
		"net_credit_per_share":   trade.NetCreditPerShare,
		"risk_capital_per_share": trade.RiskCapitalPerShare,
		"margin_capital":         trade.MarginCapital,
		"rorc":                   trade.RORC,
		"arorc":                  trade.ARORC,
	}))
}

// HandleStatusHistory handles GET /api/trades/{id}/history
func (h *Handler) HandleStatusHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	history, err := h.service.StatusHistory(id)
	if err != nil {
		h.log.Error().Err(err).Int64("trade_id", id).Msg("Failed to get status history")
		http.Error(w, "Failed to get status history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(history))
}

// HandleSummary handles GET /api/trades/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.queryFilter(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute summary")
		http.Error(w, "Failed to compute summary", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(summary))
}

// HandleChart handles GET /api/trades/chart
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.queryFilter(w, r)
	if !ok {
		return
	}

	points, err := h.service.PremiumChart(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute premium chart")
		http.Error(w, "Failed to compute premium chart", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(points))
}

// tradeID parses the {id} route parameter, writing a 400 when malformed.
func (h *Handler) tradeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid trade ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryFilter builds a ListFilter from the common query parameters.
func (h *Handler) queryFilter(w http.ResponseWriter, r *http.Request) (trades.ListFilter, bool) {
	filter := trades.ListFilter{
		Ticker:    r.URL.Query().Get("ticker"),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if v := r.URL.Query().Get("account_id"); v != "" {
		accountID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "account_id must be an integer", http.StatusBadRequest)
			return filter, false
		}
		filter.AccountID = &accountID
	}
	return filter, true
}

// writeServiceError maps service errors to HTTP status codes: validation
// failures carry field detail at 400, everything else is a logged 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, trades.ErrTradeNotFound) {
		http.Error(w, "Trade not found", http.StatusNotFound)
		return
	}

	var single trades.ValidationError
	var multi trades.ValidationErrors
	if errors.As(err, &single) || errors.As(err, &multi) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.log.Error().Err(err).Msg(message)
	http.Error(w, message, http.StatusInternalServerError)
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
