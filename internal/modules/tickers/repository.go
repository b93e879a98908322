package tickers

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// tickerColumns is the list of columns for the tickers table.
// Column order must match scanTicker() and scanTickerFromRows().
const tickerColumns = `id, symbol, company_name, created_at`

// Repository handles ticker database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new ticker repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "tickers").Logger(),
	}
}

// GetOrCreate returns the ticker for a symbol, creating it on first use.
// Symbols are stored uppercase.
func (r *Repository) GetOrCreate(symbol string) (*Ticker, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("ticker symbol is required")
	}

	ticker, err := r.GetBySymbol(symbol)
	if err != nil {
		return nil, err
	}
	if ticker != nil {
		return ticker, nil
	}

	now := time.Now().Unix()
	result, err := r.db.Exec(`
		INSERT INTO tickers (symbol, created_at) VALUES (?, ?)
	`, symbol, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	r.log.Info().Str("symbol", symbol).Msg("Ticker created")

	return &Ticker{
		ID:        id,
		Symbol:    symbol,
		CreatedAt: time.Unix(now, 0).UTC(),
	}, nil
}

// GetBySymbol retrieves a ticker by symbol
func (r *Repository) GetBySymbol(symbol string) (*Ticker, error) {
	query := "SELECT " + tickerColumns + " FROM tickers WHERE symbol = ?"

	row := r.db.QueryRow(query, strings.ToUpper(strings.TrimSpace(symbol)))
	ticker, err := r.scanTicker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker by symbol: %w", err)
	}

	return &ticker, nil
}

// GetByID retrieves a ticker by ID
func (r *Repository) GetByID(id int64) (*Ticker, error) {
	query := "SELECT " + tickerColumns + " FROM tickers WHERE id = ?"

	row := r.db.QueryRow(query, id)
	ticker, err := r.scanTicker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker by ID: %w", err)
	}

	return &ticker, nil
}

// GetAll retrieves all tickers ordered by symbol
func (r *Repository) GetAll() ([]Ticker, error) {
	query := "SELECT " + tickerColumns + " FROM tickers ORDER BY symbol ASC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all tickers: %w", err)
	}
	defer rows.Close()

	var tickers []Ticker
	for rows.Next() {
		ticker, err := r.scanTickerFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}

	return tickers, nil
}

// UpdateCompanyName stores the resolved company name for a symbol
func (r *Repository) UpdateCompanyName(id int64, companyName string) error {
	_, err := r.db.Exec(`UPDATE tickers SET company_name = ? WHERE id = ?`, companyName, id)
	if err != nil {
		return fmt.Errorf("failed to update company name: %w", err)
	}

	r.log.Debug().
		Int64("ticker_id", id).
		Str("company_name", companyName).
		Msg("Company name cached")

	return nil
}

// TopSymbols returns the most traded symbols with open-position and
// stale-assignment flags. An assignment is stale when its expiration is more
// than 30 days past and the position is still marked assigned.
func (r *Repository) TopSymbols(limit int) ([]TopSymbol, error) {
	if limit <= 0 {
		limit = 10
	}
	staleCutoff := time.Now().UTC().AddDate(0, 0, -30).Unix()

	query := `
		SELECT tk.symbol, COALESCE(tk.company_name, ''),
			COUNT(t.id) AS trade_count,
			MAX(CASE WHEN t.status = 'open' THEN 1 ELSE 0 END) AS has_open,
			MAX(CASE WHEN t.status = 'assigned'
				AND t.expiration_date IS NOT NULL
				AND t.expiration_date < ? THEN 1 ELSE 0 END) AS stale_assignment
		FROM tickers tk
		JOIN trades t ON t.ticker_id = tk.id
		GROUP BY tk.id, tk.symbol, tk.company_name
		ORDER BY trade_count DESC, tk.symbol ASC
		LIMIT ?
	`

	rows, err := r.db.Query(query, staleCutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top symbols: %w", err)
	}
	defer rows.Close()

	var symbols []TopSymbol
	for rows.Next() {
		var s TopSymbol
		var hasOpen, stale int
		if err := rows.Scan(&s.Symbol, &s.CompanyName, &s.TradeCount, &hasOpen, &stale); err != nil {
			return nil, fmt.Errorf("failed to scan top symbol: %w", err)
		}
		s.HasOpenTrade = hasOpen == 1
		s.StaleAssignment = stale == 1
		symbols = append(symbols, s)
	}

	return symbols, nil
}

// Helper methods

func (r *Repository) scanTicker(row *sql.Row) (Ticker, error) {
	var ticker Ticker
	var companyName sql.NullString
	var createdAtUnix int64

	err := row.Scan(&ticker.ID, &ticker.Symbol, &companyName, &createdAtUnix)
	if err != nil {
		return ticker, err
	}

	if companyName.Valid {
		ticker.CompanyName = companyName.String
	}
	ticker.CreatedAt = time.Unix(createdAtUnix, 0).UTC()

	return ticker, nil
}

func (r *Repository) scanTickerFromRows(rows *sql.Rows) (Ticker, error) {
	var ticker Ticker
	var companyName sql.NullString
	var createdAtUnix int64

	err := rows.Scan(&ticker.ID, &ticker.Symbol, &companyName, &createdAtUnix)
	if err != nil {
		return ticker, err
	}

	if companyName.Valid {
		ticker.CompanyName = companyName.String
	}
	ticker.CreatedAt = time.Unix(createdAtUnix, 0).UTC()

	return ticker, nil
}
