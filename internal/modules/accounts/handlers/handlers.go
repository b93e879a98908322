// Package handlers provides HTTP handlers for account management.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/events"
	"github.com/greenmangroup/wheelhouse/internal/modules/accounts"
)

// Handler provides HTTP handlers for account endpoints
type Handler struct {
	repo *accounts.Repository
	bus  *events.Bus
	log  zerolog.Logger
}

// NewHandler creates a new accounts handler
func NewHandler(repo *accounts.Repository, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		bus:  bus,
		log:  log.With().Str("handler", "accounts").Logger(),
	}
}

// HandleList handles GET /api/accounts
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(all))
}

// HandleGet handles GET /api/accounts/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	account, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", id).Msg("Failed to get account")
		http.Error(w, "Failed to get account", http.StatusInternalServerError)
		return
	}
	if account == nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(account))
}

// HandleCreate handles POST /api/accounts
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req accounts.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account := &accounts.Account{
		Name:            req.Name,
		Type:            req.Type,
		StartingBalance: req.StartingBalance,
		IsDefault:       req.IsDefault,
	}

	if err := h.repo.Create(account); err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to create account")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.bus.EmitData("accounts", &events.AccountCreatedData{Account: account.Name})

	h.writeJSON(w, http.StatusCreated, envelope(account))
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
