// Package handlers provides HTTP handlers for cash flow operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/events"
	"github.com/greenmangroup/wheelhouse/internal/modules/cash_flows"
)

// Handler handles HTTP requests for cash flows.
type Handler struct {
	repo *cash_flows.Repository
	bus  *events.Bus
	log  zerolog.Logger
}

// NewHandler creates a new cash flow handler.
func NewHandler(repo *cash_flows.Repository, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		bus:  bus,
		log:  log.With().Str("handler", "cash_flows").Logger(),
	}
}

// HandleList handles GET /api/cash-flows requests.
// Supports account_id, flow_type, start_date, end_date and limit query params.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var filter cash_flows.ListFilter

	if v := r.URL.Query().Get("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid account_id", http.StatusBadRequest)
			return
		}
		filter.AccountID = &id
	}
	if v := r.URL.Query().Get("flow_type"); v != "" {
		if !cash_flows.ValidFlowType(v) {
			http.Error(w, "invalid flow_type", http.StatusBadRequest)
			return
		}
		filter.FlowType = v
	}
	filter.StartDate = r.URL.Query().Get("start_date")
	filter.EndDate = r.URL.Query().Get("end_date")
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = &limit
	}

	flows, err := h.repo.List(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list cash flows")
		http.Error(w, "Failed to list cash flows", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, envelope(flows))
}

// HandleCreate handles POST /api/cash-flows requests.
// Manual entry is limited to deposits and withdrawals; premium and
// settlement flows are derived from trades and owned by the trades service.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req cash_flows.CreateCashFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FlowType != cash_flows.FlowDeposit && req.FlowType != cash_flows.FlowWithdrawal {
		http.Error(w, "flow_type must be DEPOSIT or WITHDRAWAL", http.StatusBadRequest)
		return
	}

	flow, err := h.repo.Create(&cash_flows.CashFlow{
		AccountID:   req.AccountID,
		FlowType:    req.FlowType,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create cash flow")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.bus.EmitData("cash_flows", &events.CashFlowCreatedData{
		CashFlowID: flow.ID,
		AccountID:  flow.AccountID,
		FlowType:   flow.FlowType,
		Amount:     flow.Amount,
	})

	writeJSON(w, http.StatusCreated, envelope(flow))
}

// HandleDelete handles DELETE /api/cash-flows/{id} requests.
// Trade-derived flows cannot be deleted directly; they are withdrawn by
// deleting or un-assigning the owning trade.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid cash flow ID", http.StatusBadRequest)
		return
	}

	flow, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to get cash flow")
		http.Error(w, "Failed to get cash flow", http.StatusInternalServerError)
		return
	}
	if flow == nil {
		http.Error(w, "Cash flow not found", http.StatusNotFound)
		return
	}
	if flow.TradeID != nil {
		http.Error(w, "cannot delete a trade-derived cash flow", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(id); err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to delete cash flow")
		http.Error(w, "Failed to delete cash flow", http.StatusInternalServerError)
		return
	}

	h.bus.EmitData("cash_flows", &events.CashFlowDeletedData{
		CashFlowID: flow.ID,
		AccountID:  flow.AccountID,
		FlowType:   flow.FlowType,
	})

	writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"deleted": id}))
}

// HandleBalanceHistory handles GET /api/cash-flows/balance-history requests.
// Requires account_id, start_date and end_date query params; starting_balance
// defaults to 0.
func (h *Handler) HandleBalanceHistory(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid account_id", http.StatusBadRequest)
		return
	}

	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	if startDate == "" || endDate == "" {
		http.Error(w, "start_date and end_date are required", http.StatusBadRequest)
		return
	}

	startingBalance := 0.0
	if v := r.URL.Query().Get("starting_balance"); v != "" {
		startingBalance, err = strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "invalid starting_balance", http.StatusBadRequest)
			return
		}
	}

	points, err := h.repo.BalanceHistory(accountID, startDate, endDate, startingBalance)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build balance history")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, envelope(points))
}

// envelope wraps response data with metadata.
func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
