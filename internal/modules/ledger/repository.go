package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/database"
	"github.com/greenmangroup/wheelhouse/internal/utils"
)

// Repository handles cost basis persistence.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new cost basis repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "ledger").Logger(),
	}
}

// ReplacePartition swaps one partition's entries for the given sequence in
// a single transaction. Readers see either the old ledger or the new one,
// never a half-written mix; a mid-rebuild failure rolls back to the prior
// committed state.
func (r *Repository) ReplacePartition(accountID, tickerID int64, entries []Entry) error {
	now := time.Now().Unix()

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"DELETE FROM cost_basis WHERE account_id = ? AND ticker_id = ?",
			accountID, tickerID,
		); err != nil {
			return fmt.Errorf("failed to clear partition: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO cost_basis (
				account_id, ticker_id, trade_id, transaction_date, seq,
				description, shares, cost_per_share, amount,
				running_basis, running_shares, basis_per_share, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			dateUnix, err := utils.DateToUnix(e.TransactionDate)
			if err != nil {
				return fmt.Errorf("invalid transaction date %q: %w", e.TransactionDate, err)
			}

			if _, err := stmt.Exec(
				accountID,
				tickerID,
				e.TradeID,
				dateUnix,
				e.Seq,
				e.Description,
				e.Shares,
				e.CostPerShare,
				e.Amount,
				e.RunningBasis,
				e.RunningShares,
				e.BasisPerShare,
				now,
			); err != nil {
				return fmt.Errorf("failed to insert entry: %w", err)
			}
		}

		return nil
	})
}

// ListPartition retrieves one partition's entries in replay order.
func (r *Repository) ListPartition(accountID, tickerID int64) ([]Entry, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, ticker_id, trade_id, transaction_date, seq,
		       description, shares, cost_per_share, amount,
		       running_basis, running_shares, basis_per_share, created_at
		FROM cost_basis
		WHERE account_id = ? AND ticker_id = ?
		ORDER BY transaction_date ASC, seq ASC
	`, accountID, tickerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost basis: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var tradeID sql.NullInt64
		var dateUnix, createdAt int64

		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.TickerID,
			&tradeID,
			&dateUnix,
			&e.Seq,
			&e.Description,
			&e.Shares,
			&e.CostPerShare,
			&e.Amount,
			&e.RunningBasis,
			&e.RunningShares,
			&e.BasisPerShare,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cost basis entry: %w", err)
		}

		if tradeID.Valid {
			e.TradeID = &tradeID.Int64
		}
		e.TransactionDate = utils.UnixToDate(dateUnix)
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cost basis entries: %w", err)
	}
	return entries, nil
}

// AccountPartitions returns the (account, ticker) pairs that currently
// have ledger entries for the given account, with their symbols.
func (r *Repository) AccountPartitions(accountID int64) (map[int64]string, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT cb.ticker_id, tk.symbol
		FROM cost_basis cb
		LEFT JOIN tickers tk ON tk.id = cb.ticker_id
		WHERE cb.account_id = ?
		ORDER BY tk.symbol
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account partitions: %w", err)
	}
	defer rows.Close()

	partitions := make(map[int64]string)
	for rows.Next() {
		var tickerID int64
		var symbol sql.NullString
		if err := rows.Scan(&tickerID, &symbol); err != nil {
			return nil, fmt.Errorf("failed to scan partition: %w", err)
		}
		partitions[tickerID] = symbol.String
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account partitions: %w", err)
	}
	return partitions, nil
}
