// Package cash_flows provides persistence for cash movements on trading accounts.
// Cash flows are stored in ledger.db and cover manual deposits and withdrawals as
// well as trade-derived premium credits/debits and stock purchase/sale settlements.
package cash_flows

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/utils"
)

// cashFlowColumns is the canonical column list for cash flow queries.
const cashFlowColumns = "id, account_id, ticker_id, trade_id, flow_type, amount, flow_date, seq, description, created_at"

// Repository handles cash flow persistence.
//
// Flows form the input to the bankroll total: amounts are stored positive and
// signed at aggregation time according to the flow type. Trade-derived flows
// (premium credits, assignment settlements) are keyed by trade_id so the trades
// service can withdraw them when a trade is deleted or un-assigned.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new cash flow repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "cash_flows").Logger(),
	}
}

// BalancePoint represents a point in account balance history.
// Used for generating bankroll charts over time.
type BalancePoint struct {
	Date    string  `json:"date"`    // Date in YYYY-MM-DD format
	Balance float64 `json:"balance"` // Running balance at end of this date
}

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	AccountID *int64
	TradeID   *int64
	FlowType  string
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
	Limit     *int
}

// Create inserts a new cash flow.
// The flow type must be one of the recognized types and the amount must be
// non-negative; the sign of a flow is derived from its type, never stored.
// Dates are converted from YYYY-MM-DD format to Unix timestamps at midnight UTC.
// A per-account sequence number is assigned automatically unless the caller
// supplies one, preserving intra-day ordering of flows.
//
// Parameters:
//   - cashFlow: CashFlow object to create
//
// Returns:
//   - *CashFlow: Created cash flow with ID, Seq and CreatedAt populated
//   - error: Error if validation fails or database operation fails
func (r *Repository) Create(cashFlow *CashFlow) (*CashFlow, error) {
	if !ValidFlowType(cashFlow.FlowType) {
		return nil, fmt.Errorf("invalid flow type: %q", cashFlow.FlowType)
	}
	if cashFlow.Amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative, got %f", cashFlow.Amount)
	}
	if cashFlow.AccountID == 0 {
		return nil, fmt.Errorf("account_id is required")
	}

	dateUnix, err := utils.DateToUnix(cashFlow.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}

	createdAt := time.Now().Unix()

	// Zero Seq means "next for this account". The subselect runs inside
	// the INSERT, so concurrent creates never share a sequence number.
	query := `
		INSERT INTO cash_flows (
			account_id, ticker_id, trade_id, flow_type, amount,
			flow_date, seq, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?,
			CASE WHEN ? > 0 THEN ?
				ELSE (SELECT COALESCE(MAX(seq), 0) + 1 FROM cash_flows WHERE account_id = ?)
			END,
			?, ?)
	`

	result, err := r.db.Exec(
		query,
		cashFlow.AccountID,
		cashFlow.TickerID,
		cashFlow.TradeID,
		cashFlow.FlowType,
		cashFlow.Amount,
		dateUnix,
		cashFlow.Seq,
		cashFlow.Seq,
		cashFlow.AccountID,
		cashFlow.Description,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert cash flow: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	cashFlow.ID = id
	cashFlow.CreatedAt = time.Unix(createdAt, 0).UTC()

	if cashFlow.Seq == 0 {
		if err := r.db.QueryRow("SELECT seq FROM cash_flows WHERE id = ?", id).Scan(&cashFlow.Seq); err != nil {
			return nil, fmt.Errorf("failed to read assigned cash flow seq: %w", err)
		}
	}

	return cashFlow, nil
}

// GetByID retrieves a cash flow by its ID.
//
// Returns:
//   - *CashFlow: Cash flow object if found, nil if not found
//   - error: Error if query fails
func (r *Repository) GetByID(id int64) (*CashFlow, error) {
	query := "SELECT " + cashFlowColumns + " FROM cash_flows WHERE id = ?"

	cf, err := r.scanCashFlow(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash flow: %w", err)
	}
	return cf, nil
}

// List retrieves cash flows matching the filter.
// Results are ordered by date descending, then sequence descending
// (most recent first).
//
// Parameters:
//   - filter: Optional constraints on account, trade, type and date range
//
// Returns:
//   - []CashFlow: Matching cash flows
//   - error: Error if date parsing fails or query fails
func (r *Repository) List(filter ListFilter) ([]CashFlow, error) {
	var conditions []string
	var args []interface{}

	query := "SELECT " + cashFlowColumns + " FROM cash_flows WHERE 1=1"

	if filter.AccountID != nil {
		conditions = append(conditions, "account_id = ?")
		args = append(args, *filter.AccountID)
	}
	if filter.TradeID != nil {
		conditions = append(conditions, "trade_id = ?")
		args = append(args, *filter.TradeID)
	}
	if filter.FlowType != "" {
		conditions = append(conditions, "flow_type = ?")
		args = append(args, filter.FlowType)
	}
	if filter.StartDate != "" {
		startUnix, err := utils.DateToUnix(filter.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date format (expected YYYY-MM-DD): %w", err)
		}
		conditions = append(conditions, "flow_date >= ?")
		args = append(args, startUnix)
	}
	if filter.EndDate != "" {
		endTime, err := time.Parse("2006-01-02", filter.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date format (expected YYYY-MM-DD): %w", err)
		}
		endUnix := time.Date(endTime.Year(), endTime.Month(), endTime.Day(), 23, 59, 59, 0, time.UTC).Unix()
		conditions = append(conditions, "flow_date <= ?")
		args = append(args, endUnix)
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY flow_date DESC, seq DESC"

	if filter.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash flows: %w", err)
	}
	defer rows.Close()

	return r.scanCashFlows(rows)
}

// Delete removes a cash flow by ID.
//
// Returns:
//   - error: Error if the flow does not exist or the delete fails
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM cash_flows WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete cash flow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("cash flow not found: %d", id)
	}
	return nil
}

// DeleteByTradeID removes all flows derived from a trade.
// Called when a trade is deleted or its assignment is reversed, so the
// bankroll never counts cash from a trade that no longer exists.
//
// Returns:
//   - int64: Number of flows removed
//   - error: Error if the delete fails
func (r *Repository) DeleteByTradeID(tradeID int64) (int64, error) {
	result, err := r.db.Exec("DELETE FROM cash_flows WHERE trade_id = ?", tradeID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cash flows for trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// DeleteByTradeAndType removes flows of one type derived from a trade.
// Used to withdraw an assignment settlement while leaving the premium
// credit in place.
func (r *Repository) DeleteByTradeAndType(tradeID int64, flowType string) (int64, error) {
	result, err := r.db.Exec("DELETE FROM cash_flows WHERE trade_id = ? AND flow_type = ?", tradeID, flowType)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cash flows for trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// SumSigned calculates the signed sum of all flows for an account,
// optionally bounded to a date range. Deposits, premium credits and sales
// count positive; withdrawals, premium debits and purchases count negative.
// This is the cash-flow contribution to the bankroll total.
//
// Parameters:
//   - accountID: Account to aggregate
//   - startDate: Optional range start in YYYY-MM-DD format ("" for no bound)
//   - endDate: Optional range end in YYYY-MM-DD format ("" for no bound)
//
// Returns:
//   - float64: Signed total (0.0 if no flows)
//   - error: Error if date parsing fails or query fails
func (r *Repository) SumSigned(accountID int64, startDate, endDate string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE
				WHEN flow_type IN ('DEPOSIT', 'PREMIUM_CREDIT', 'SELL') THEN amount
				ELSE -amount
			END
		), 0)
		FROM cash_flows
		WHERE account_id = ?
	`
	args := []interface{}{accountID}

	if startDate != "" {
		startUnix, err := utils.DateToUnix(startDate)
		if err != nil {
			return 0, fmt.Errorf("invalid start date format (expected YYYY-MM-DD): %w", err)
		}
		query += " AND flow_date >= ?"
		args = append(args, startUnix)
	}
	if endDate != "" {
		endTime, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return 0, fmt.Errorf("invalid end date format (expected YYYY-MM-DD): %w", err)
		}
		endUnix := time.Date(endTime.Year(), endTime.Month(), endTime.Day(), 23, 59, 59, 0, time.UTC).Unix()
		query += " AND flow_date <= ?"
		args = append(args, endUnix)
	}

	var total float64
	if err := r.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum cash flows: %w", err)
	}
	return total, nil
}

// SumByType calculates per-type totals for an account.
// Amounts are returned unsigned, keyed by flow type.
//
// Returns:
//   - map[string]float64: Total per flow type (absent types omitted)
//   - error: Error if query fails
func (r *Repository) SumByType(accountID int64) (map[string]float64, error) {
	query := `
		SELECT flow_type, COALESCE(SUM(amount), 0)
		FROM cash_flows
		WHERE account_id = ?
		GROUP BY flow_type
	`

	rows, err := r.db.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cash flows by type: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var flowType string
		var total float64
		if err := rows.Scan(&flowType, &total); err != nil {
			return nil, fmt.Errorf("failed to scan flow total: %w", err)
		}
		totals[flowType] = total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flow totals: %w", err)
	}
	return totals, nil
}

// BalanceHistory calculates the running account balance over time.
// Daily signed flows are accumulated on top of startingBalance, producing
// one point per day that had any cash movement. Useful for bankroll charts.
//
// Parameters:
//   - accountID: Account to chart
//   - startDate: Range start in YYYY-MM-DD format (inclusive, midnight UTC)
//   - endDate: Range end in YYYY-MM-DD format (inclusive, end of day UTC)
//   - startingBalance: Balance before the range
//
// Returns:
//   - []BalancePoint: Balance points ordered by date ascending
//   - error: Error if date parsing fails or query fails
func (r *Repository) BalanceHistory(accountID int64, startDate, endDate string, startingBalance float64) ([]BalancePoint, error) {
	startUnix, err := utils.DateToUnix(startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date format (expected YYYY-MM-DD): %w", err)
	}

	endTime, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date format (expected YYYY-MM-DD): %w", err)
	}
	endUnix := time.Date(endTime.Year(), endTime.Month(), endTime.Day(), 23, 59, 59, 0, time.UTC).Unix()

	query := `
		SELECT flow_date, SUM(
			CASE
				WHEN flow_type IN ('DEPOSIT', 'PREMIUM_CREDIT', 'SELL') THEN amount
				ELSE -amount
			END
		) as daily_flow
		FROM cash_flows
		WHERE account_id = ? AND flow_date >= ? AND flow_date <= ?
		GROUP BY flow_date
		ORDER BY flow_date ASC
	`

	rows, err := r.db.Query(query, accountID, startUnix, endUnix)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance history: %w", err)
	}
	defer rows.Close()

	var points []BalancePoint
	runningBalance := startingBalance

	for rows.Next() {
		var dateUnix int64
		var dailyFlow float64

		if err := rows.Scan(&dateUnix, &dailyFlow); err != nil {
			return nil, fmt.Errorf("failed to scan balance point: %w", err)
		}

		runningBalance += dailyFlow
		points = append(points, BalancePoint{
			Date:    utils.UnixToDate(dateUnix),
			Balance: runningBalance,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance history: %w", err)
	}

	return points, nil
}

// scanCashFlow scans a single cash flow from a row.
func (r *Repository) scanCashFlow(row *sql.Row) (*CashFlow, error) {
	var cf CashFlow
	var tickerID, tradeID sql.NullInt64
	var description sql.NullString
	var dateUnix, createdAt int64

	err := row.Scan(
		&cf.ID,
		&cf.AccountID,
		&tickerID,
		&tradeID,
		&cf.FlowType,
		&cf.Amount,
		&dateUnix,
		&cf.Seq,
		&description,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if tickerID.Valid {
		cf.TickerID = &tickerID.Int64
	}
	if tradeID.Valid {
		cf.TradeID = &tradeID.Int64
	}
	if description.Valid {
		cf.Description = description.String
	}
	cf.Date = utils.UnixToDate(dateUnix)
	cf.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &cf, nil
}

// scanCashFlows is a helper to scan multiple cash flows
func (r *Repository) scanCashFlows(rows *sql.Rows) ([]CashFlow, error) {
	var cashFlows []CashFlow

	for rows.Next() {
		var cf CashFlow
		var tickerID, tradeID sql.NullInt64
		var description sql.NullString
		var dateUnix, createdAt int64

		err := rows.Scan(
			&cf.ID,
			&cf.AccountID,
			&tickerID,
			&tradeID,
			&cf.FlowType,
			&cf.Amount,
			&dateUnix,
			&cf.Seq,
			&description,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash flow: %w", err)
		}

		if tickerID.Valid {
			cf.TickerID = &tickerID.Int64
		}
		if tradeID.Valid {
			cf.TradeID = &tradeID.Int64
		}
		if description.Valid {
			cf.Description = description.String
		}
		cf.Date = utils.UnixToDate(dateUnix)
		cf.CreatedAt = time.Unix(createdAt, 0).UTC()

		cashFlows = append(cashFlows, cf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash flows: %w", err)
	}

	return cashFlows, nil
}
