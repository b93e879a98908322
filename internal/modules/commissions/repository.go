package commissions

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// commissionColumns is the list of columns for the commissions table.
// Column order must match scanCommissionFromRows().
const commissionColumns = `id, account_id, rate, effective_date, created_at`

// Repository handles commission schedule database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new commission repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "commissions").Logger(),
	}
}

// Resolve returns the commission rate in effect for an account on a date:
// the schedule row with the greatest effective_date not after the date.
// Accounts with no qualifying schedule resolve to 0. The result is frozen
// into the trade at write time and never re-evaluated.
func (r *Repository) Resolve(accountID int64, dateUnix int64) (float64, error) {
	query := `
		SELECT rate FROM commissions
		WHERE account_id = ? AND effective_date <= ?
		ORDER BY effective_date DESC
		LIMIT 1
	`

	var rate float64
	err := r.db.QueryRow(query, accountID, dateUnix).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve commission rate: %w", err)
	}

	return rate, nil
}

// Create adds a schedule entry
func (r *Repository) Create(commission *Commission) error {
	if commission.Rate < 0 {
		return fmt.Errorf("commission rate must not be negative")
	}

	now := time.Now().Unix()
	result, err := r.db.Exec(`
		INSERT INTO commissions (account_id, rate, effective_date, created_at)
		VALUES (?, ?, ?, ?)
	`, commission.AccountID, commission.Rate, commission.EffectiveDate, now)
	if err != nil {
		return fmt.Errorf("failed to create commission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}

	commission.ID = id
	commission.CreatedAt = time.Unix(now, 0).UTC()

	r.log.Info().
		Int64("account_id", commission.AccountID).
		Float64("rate", commission.Rate).
		Int64("effective_date", commission.EffectiveDate).
		Msg("Commission schedule entry created")

	return nil
}

// ListByAccount retrieves the schedule for an account, newest first
func (r *Repository) ListByAccount(accountID int64) ([]Commission, error) {
	query := "SELECT " + commissionColumns + ` FROM commissions
		WHERE account_id = ?
		ORDER BY effective_date DESC`

	rows, err := r.db.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}
	defer rows.Close()

	var commissions []Commission
	for rows.Next() {
		commission, err := r.scanCommissionFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission: %w", err)
		}
		commissions = append(commissions, commission)
	}

	return commissions, nil
}

// Helper methods

func (r *Repository) scanCommissionFromRows(rows *sql.Rows) (Commission, error) {
	var commission Commission
	var createdAtUnix int64

	err := rows.Scan(
		&commission.ID,
		&commission.AccountID,
		&commission.Rate,
		&commission.EffectiveDate,
		&createdAtUnix,
	)
	if err != nil {
		return commission, err
	}

	commission.CreatedAt = time.Unix(createdAtUnix, 0).UTC()

	return commission, nil
}
