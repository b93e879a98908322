// Package trades implements trade persistence and the option analytics
// engine: commission resolution, risk/return computation, roll chains,
// and the cash flows and ledger rebuilds each mutation triggers.
package trades

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/utils"
)

// tradeSelect is the canonical select clause for trade queries. The ticker
// symbol rides along for display so handlers never need a second lookup.
const tradeSelect = `
	SELECT t.id, t.account_id, t.ticker_id, t.trade_type, t.trade_date,
	       t.expiration_date, t.num_of_contracts, t.strike_price, t.premium,
	       t.status, t.commission_per_share, t.net_credit_per_share,
	       t.risk_capital_per_share, t.margin_capital, t.margin_percent,
	       t.rorc, t.arorc, t.total_premium, t.trade_parent_id, t.seq,
	       t.notes, t.created_at, t.updated_at, tk.symbol
	FROM trades t
	LEFT JOIN tickers tk ON tk.id = t.ticker_id
`

// updatableColumns whitelists the trade columns a partial update may touch.
var updatableColumns = map[string]bool{
	"trade_date":             true,
	"expiration_date":        true,
	"num_of_contracts":       true,
	"strike_price":           true,
	"premium":                true,
	"status":                 true,
	"commission_per_share":   true,
	"net_credit_per_share":   true,
	"risk_capital_per_share": true,
	"margin_capital":         true,
	"margin_percent":         true,
	"rorc":                   true,
	"arorc":                  true,
	"total_premium":          true,
	"trade_parent_id":        true,
	"notes":                  true,
}

// Repository handles trade persistence.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new trade repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "trades").Logger(),
	}
}

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	AccountID *int64
	TickerID  *int64
	Ticker    string // symbol, matched case-insensitively
	TradeType string
	Status    string
	Statuses  []string
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
	Limit     *int
}

// Create inserts a new trade. The caller is responsible for validation
// and analytics; this method only persists. A zero Seq means "assign the
// next sequence for this partition": the subselect runs inside the INSERT
// statement, so two concurrent creates cannot take the same number.
func (r *Repository) Create(trade *Trade) (*Trade, error) {
	tradeDateUnix, err := utils.DateToUnix(trade.TradeDate)
	if err != nil {
		return nil, fmt.Errorf("invalid trade date format (expected YYYY-MM-DD): %w", err)
	}

	var expirationUnix *int64
	if trade.ExpirationDate != nil {
		unix, err := utils.DateToUnix(*trade.ExpirationDate)
		if err != nil {
			return nil, fmt.Errorf("invalid expiration date format (expected YYYY-MM-DD): %w", err)
		}
		expirationUnix = &unix
	}

	now := time.Now().Unix()

	query := `
		INSERT INTO trades (
			account_id, ticker_id, trade_type, trade_date, expiration_date,
			num_of_contracts, strike_price, premium, status, commission_per_share,
			net_credit_per_share, risk_capital_per_share, margin_capital,
			margin_percent, rorc, arorc, total_premium, trade_parent_id, seq,
			notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			CASE WHEN ? > 0 THEN ?
				ELSE (SELECT COALESCE(MAX(seq), 0) + 1 FROM trades WHERE account_id = ? AND ticker_id = ?)
			END,
			?, ?, ?)
	`

	result, err := r.db.Exec(
		query,
		trade.AccountID,
		trade.TickerID,
		trade.TradeType,
		tradeDateUnix,
		expirationUnix,
		trade.NumOfContracts,
		trade.StrikePrice,
		trade.Premium,
		trade.Status,
		trade.CommissionPerShare,
		trade.NetCreditPerShare,
		trade.RiskCapitalPerShare,
		trade.MarginCapital,
		trade.MarginPercent,
		trade.RORC,
		trade.ARORC,
		trade.TotalPremium,
		trade.TradeParentID,
		trade.Seq,
		trade.Seq,
		trade.AccountID,
		trade.TickerID,
		nullString(trade.Notes),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert trade: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	trade.ID = id
	trade.CreatedAt = time.Unix(now, 0).UTC()
	trade.UpdatedAt = trade.CreatedAt

	if trade.Seq == 0 {
		if err := r.db.QueryRow("SELECT seq FROM trades WHERE id = ?", id).Scan(&trade.Seq); err != nil {
			return nil, fmt.Errorf("failed to read assigned trade seq: %w", err)
		}
	}

	return trade, nil
}

// GetByID retrieves a trade by ID, nil when not found.
func (r *Repository) GetByID(id int64) (*Trade, error) {
	trade, err := r.scanTrade(r.db.QueryRow(tradeSelect+" WHERE t.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

// List retrieves trades matching the filter, most recent first.
func (r *Repository) List(filter ListFilter) ([]Trade, error) {
	var conditions []string
	var args []interface{}

	query := tradeSelect + " WHERE 1=1"

	if filter.AccountID != nil {
		conditions = append(conditions, "t.account_id = ?")
		args = append(args, *filter.AccountID)
	}
	if filter.TickerID != nil {
		conditions = append(conditions, "t.ticker_id = ?")
		args = append(args, *filter.TickerID)
	}
	if filter.Ticker != "" {
		conditions = append(conditions, "UPPER(tk.symbol) = UPPER(?)")
		args = append(args, filter.Ticker)
	}
	if filter.TradeType != "" {
		conditions = append(conditions, "t.trade_type = ?")
		args = append(args, filter.TradeType)
	}
	if filter.Status != "" {
		conditions = append(conditions, "t.status = ?")
		args = append(args, filter.Status)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Statuses)), ",")
		conditions = append(conditions, "t.status IN ("+placeholders+")")
		for _, s := range filter.Statuses {
			args = append(args, s)
		}
	}
	if filter.StartDate != "" {
		startUnix, err := utils.DateToUnix(filter.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date format (expected YYYY-MM-DD): %w", err)
		}
		conditions = append(conditions, "t.trade_date >= ?")
		args = append(args, startUnix)
	}
	if filter.EndDate != "" {
		endUnix, err := utils.EndOfDayUnix(filter.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date format (expected YYYY-MM-DD): %w", err)
		}
		conditions = append(conditions, "t.trade_date <= ?")
		args = append(args, endUnix)
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.trade_date DESC, t.seq DESC"

	if filter.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	return r.scanTrades(rows)
}

// ListByPartition retrieves all trades for one (account, ticker) partition
// in replay order: trade_date ascending, then creation sequence. This is
// the event feed for ledger rebuilds.
func (r *Repository) ListByPartition(accountID, tickerID int64) ([]Trade, error) {
	query := tradeSelect + `
		WHERE t.account_id = ? AND t.ticker_id = ?
		ORDER BY t.trade_date ASC, t.seq ASC
	`

	rows, err := r.db.Query(query, accountID, tickerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query partition trades: %w", err)
	}
	defer rows.Close()

	return r.scanTrades(rows)
}

// Partitions returns the distinct (account, ticker) pairs that have trades.
func (r *Repository) Partitions() ([][2]int64, error) {
	rows, err := r.db.Query("SELECT DISTINCT account_id, ticker_id FROM trades ORDER BY account_id, ticker_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query partitions: %w", err)
	}
	defer rows.Close()

	var partitions [][2]int64
	for rows.Next() {
		var accountID, tickerID int64
		if err := rows.Scan(&accountID, &tickerID); err != nil {
			return nil, fmt.Errorf("failed to scan partition: %w", err)
		}
		partitions = append(partitions, [2]int64{accountID, tickerID})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partitions: %w", err)
	}
	return partitions, nil
}

// UpdateFields applies a partial update to whitelisted trade columns.
// Date columns accept YYYY-MM-DD strings and are stored as Unix timestamps.
// updated_at is always refreshed.
func (r *Repository) UpdateFields(id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	var sets []string
	var args []interface{}

	for column, value := range fields {
		if !updatableColumns[column] {
			return fmt.Errorf("column not updatable: %s", column)
		}
		if column == "trade_date" || column == "expiration_date" {
			if value != nil {
				dateStr, ok := value.(string)
				if !ok {
					return fmt.Errorf("column %s expects a YYYY-MM-DD string", column)
				}
				unix, err := utils.DateToUnix(dateStr)
				if err != nil {
					return fmt.Errorf("invalid %s format (expected YYYY-MM-DD): %w", column, err)
				}
				value = unix
			}
		}
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().Unix())
	args = append(args, id)

	query := "UPDATE trades SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("trade not found: %d", id)
	}
	return nil
}

// UpdateStatus transitions a trade's status and records the transition in
// trade_status_history, atomically.
func (r *Repository) UpdateStatus(id int64, oldStatus, newStatus string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()

	result, err := tx.Exec("UPDATE trades SET status = ?, updated_at = ? WHERE id = ?", newStatus, now, id)
	if err != nil {
		return fmt.Errorf("failed to update trade status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("trade not found: %d", id)
	}

	_, err = tx.Exec(
		"INSERT INTO trade_status_history (trade_id, old_status, new_status, changed_at) VALUES (?, ?, ?, ?)",
		id, oldStatus, newStatus, now,
	)
	if err != nil {
		return fmt.Errorf("failed to record status transition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status update: %w", err)
	}
	return nil
}

// GetStatusHistory retrieves a trade's status transitions, oldest first.
func (r *Repository) GetStatusHistory(tradeID int64) ([]StatusHistoryEntry, error) {
	rows, err := r.db.Query(
		"SELECT id, trade_id, old_status, new_status, changed_at FROM trade_status_history WHERE trade_id = ? ORDER BY changed_at ASC, id ASC",
		tradeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var entries []StatusHistoryEntry
	for rows.Next() {
		var e StatusHistoryEntry
		var changedAt int64
		if err := rows.Scan(&e.ID, &e.TradeID, &e.OldStatus, &e.NewStatus, &changedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		e.ChangedAt = time.Unix(changedAt, 0).UTC()
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}
	return entries, nil
}

// GetChildren retrieves the direct successors of a trade, earliest first.
// Roll chains normally have one child per link; siblings indicate split
// positions and are traversed independently.
func (r *Repository) GetChildren(parentID int64) ([]Trade, error) {
	query := tradeSelect + `
		WHERE t.trade_parent_id = ?
		ORDER BY t.trade_date ASC, t.seq ASC
	`

	rows, err := r.db.Query(query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade children: %w", err)
	}
	defer rows.Close()

	return r.scanTrades(rows)
}

// Delete removes a trade.
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("trade not found: %d", id)
	}
	return nil
}

// SumMarginCapital sums margin_capital over option trades with one of the
// given statuses. This is the "used in trades" side of the bankroll.
func (r *Repository) SumMarginCapital(accountID int64, statuses []string) (float64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	query := `
		SELECT COALESCE(SUM(margin_capital), 0)
		FROM trades
		WHERE account_id = ?
		  AND trade_type IN ('put_roll', 'call_roll')
		  AND status IN (` + placeholders + `)
	`

	args := []interface{}{accountID}
	for _, s := range statuses {
		args = append(args, s)
	}

	var total float64
	if err := r.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum margin capital: %w", err)
	}
	return total, nil
}

// scanTrade scans a single trade from a row.
func (r *Repository) scanTrade(row *sql.Row) (*Trade, error) {
	var t Trade
	var tradeDate int64
	var expiration, parentID sql.NullInt64
	var netCredit, riskCapital, marginCapital, rorc, arorc sql.NullFloat64
	var notes, symbol sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.TickerID,
		&t.TradeType,
		&tradeDate,
		&expiration,
		&t.NumOfContracts,
		&t.StrikePrice,
		&t.Premium,
		&t.Status,
		&t.CommissionPerShare,
		&netCredit,
		&riskCapital,
		&marginCapital,
		&t.MarginPercent,
		&rorc,
		&arorc,
		&t.TotalPremium,
		&parentID,
		&t.Seq,
		&notes,
		&createdAt,
		&updatedAt,
		&symbol,
	)
	if err != nil {
		return nil, err
	}

	populateTrade(&t, tradeDate, expiration, parentID, netCredit, riskCapital, marginCapital, rorc, arorc, notes, symbol, createdAt, updatedAt)
	return &t, nil
}

// scanTrades is a helper to scan multiple trades
func (r *Repository) scanTrades(rows *sql.Rows) ([]Trade, error) {
	var trades []Trade

	for rows.Next() {
		var t Trade
		var tradeDate int64
		var expiration, parentID sql.NullInt64
		var netCredit, riskCapital, marginCapital, rorc, arorc sql.NullFloat64
		var notes, symbol sql.NullString
		var createdAt, updatedAt int64

		err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&t.TickerID,
			&t.TradeType,
			&tradeDate,
			&expiration,
			&t.NumOfContracts,
			&t.StrikePrice,
			&t.Premium,
			&t.Status,
			&t.CommissionPerShare,
			&netCredit,
			&riskCapital,
			&marginCapital,
			&t.MarginPercent,
			&rorc,
			&arorc,
			&t.TotalPremium,
			&parentID,
			&t.Seq,
			&notes,
			&createdAt,
			&updatedAt,
			&symbol,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		populateTrade(&t, tradeDate, expiration, parentID, netCredit, riskCapital, marginCapital, rorc, arorc, notes, symbol, createdAt, updatedAt)
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// populateTrade fills the nullable and converted fields after a scan.
func populateTrade(
	t *Trade,
	tradeDate int64,
	expiration, parentID sql.NullInt64,
	netCredit, riskCapital, marginCapital, rorc, arorc sql.NullFloat64,
	notes, symbol sql.NullString,
	createdAt, updatedAt int64,
) {
	t.TradeDate = utils.UnixToDate(tradeDate)
	if expiration.Valid {
		date := utils.UnixToDate(expiration.Int64)
		t.ExpirationDate = &date
	}
	if parentID.Valid {
		t.TradeParentID = &parentID.Int64
	}
	if netCredit.Valid {
		t.NetCreditPerShare = &netCredit.Float64
	}
	if riskCapital.Valid {
		t.RiskCapitalPerShare = &riskCapital.Float64
	}
	if marginCapital.Valid {
		t.MarginCapital = &marginCapital.Float64
	}
	if rorc.Valid {
		t.RORC = &rorc.Float64
	}
	if arorc.Valid {
		t.ARORC = &arorc.Float64
	}
	if notes.Valid {
		t.Notes = notes.String
	}
	if symbol.Valid {
		t.Ticker = symbol.String
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.UpdatedAt = time.Unix(updatedAt, 0).UTC()
}

// nullString converts empty strings to NULL for optional text columns.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
