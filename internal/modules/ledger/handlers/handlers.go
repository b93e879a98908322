// Package handlers provides HTTP handlers for the cost basis ledger.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/modules/accounts"
	"github.com/greenmangroup/wheelhouse/internal/modules/ledger"
	"github.com/greenmangroup/wheelhouse/internal/modules/tickers"
)

// Handler provides HTTP handlers for ledger endpoints
type Handler struct {
	service  *ledger.Service
	accounts *accounts.Repository
	tickers  *tickers.Repository
	log      zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(
	service *ledger.Service,
	accountsRepo *accounts.Repository,
	tickersRepo *tickers.Repository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:  service,
		accounts: accountsRepo,
		tickers:  tickersRepo,
		log:      log.With().Str("handler", "ledger").Logger(),
	}
}

// HandleGet handles GET /api/ledger?account_id={id}&ticker={symbol}.
// Without a ticker it returns every partition under the account; with one
// it returns that partition's entries and totals. account_id defaults to
// the default account.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	account, err := h.resolveAccount(r.URL.Query().Get("account_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if account == nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	symbol := r.URL.Query().Get("ticker")
	if symbol == "" {
		snapshots, err := h.service.GetAccountSnapshots(account.ID)
		if err != nil {
			h.log.Error().Err(err).Int64("account_id", account.ID).Msg("Failed to load ledger snapshots")
			http.Error(w, "Failed to load ledger", http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, http.StatusOK, envelope(snapshots))
		return
	}

	ticker, err := h.tickers.GetBySymbol(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to resolve ticker")
		http.Error(w, "Failed to resolve ticker", http.StatusInternalServerError)
		return
	}
	if ticker == nil {
		http.Error(w, "Ticker not found", http.StatusNotFound)
		return
	}

	snapshot, err := h.service.GetSnapshot(account.ID, ticker.ID)
	if err != nil {
		h.log.Error().Err(err).
			Int64("account_id", account.ID).
			Str("symbol", symbol).
			Msg("Failed to load ledger snapshot")
		http.Error(w, "Failed to load ledger", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(snapshot))
}

// HandleRebuild handles POST /api/ledger/rebuild. With account_id and
// ticker it rebuilds one partition; without them it rebuilds all.
func (h *Handler) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	accountParam := r.URL.Query().Get("account_id")
	symbol := r.URL.Query().Get("ticker")

	if accountParam == "" && symbol == "" {
		partitions, err := h.service.RebuildAll()
		if err != nil {
			h.log.Error().Err(err).Msg("Full ledger rebuild failed")
			http.Error(w, "Rebuild failed", http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
			"partitions_rebuilt": partitions,
		}))
		return
	}

	account, err := h.resolveAccount(accountParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if account == nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	ticker, err := h.tickers.GetBySymbol(symbol)
	if err != nil || ticker == nil {
		http.Error(w, "Ticker not found", http.StatusNotFound)
		return
	}

	if err := h.service.RebuildPartition(account.ID, ticker.ID); err != nil {
		h.log.Error().Err(err).
			Int64("account_id", account.ID).
			Str("symbol", symbol).
			Msg("Partition rebuild failed")
		http.Error(w, "Rebuild failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"account_id": account.ID,
		"ticker":     ticker.Symbol,
	}))
}

// resolveAccount parses an account_id query parameter, falling back to the
// default account when absent.
func (h *Handler) resolveAccount(param string) (*accounts.Account, error) {
	if param == "" {
		return h.accounts.GetDefault()
	}
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("account_id must be an integer")
	}
	return h.accounts.GetByID(id)
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
