package accounts

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// accountColumns is the list of columns for the accounts table.
// Column order must match scanAccount() and scanAccountFromRows().
const accountColumns = `id, name, account_type, starting_balance, is_default, created_at`

// Repository handles account database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new account repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "accounts").Logger(),
	}
}

// Create creates a new account. The first account created becomes the default
// automatically; marking a later account default clears the previous flag.
func (r *Repository) Create(account *Account) error {
	name := strings.TrimSpace(account.Name)
	if name == "" {
		return fmt.Errorf("account name is required")
	}

	count, err := r.Count()
	if err != nil {
		return err
	}
	isDefault := account.IsDefault || count == 0

	now := time.Now().Unix()

	if isDefault {
		if _, err := r.db.Exec(`UPDATE accounts SET is_default = 0`); err != nil {
			return fmt.Errorf("failed to clear default account flag: %w", err)
		}
	}

	accountType := account.Type
	if accountType == "" {
		accountType = "brokerage"
	}

	result, err := r.db.Exec(`
		INSERT INTO accounts (name, account_type, starting_balance, is_default, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, name, accountType, account.StartingBalance, boolToInt(isDefault), now)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}

	account.ID = id
	account.Name = name
	account.Type = accountType
	account.IsDefault = isDefault
	account.CreatedAt = time.Unix(now, 0).UTC()

	r.log.Info().
		Str("name", name).
		Float64("starting_balance", account.StartingBalance).
		Bool("is_default", isDefault).
		Msg("Account created")

	return nil
}

// GetByID retrieves an account by ID
func (r *Repository) GetByID(id int64) (*Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE id = ?"

	row := r.db.QueryRow(query, id)
	account, err := r.scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return &account, nil
}

// GetByName retrieves an account by name
func (r *Repository) GetByName(name string) (*Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE name = ?"

	row := r.db.QueryRow(query, strings.TrimSpace(name))
	account, err := r.scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by name: %w", err)
	}

	return &account, nil
}

// GetDefault retrieves the default account, falling back to the oldest
// account when no default flag is set.
func (r *Repository) GetDefault() (*Account, error) {
	query := "SELECT " + accountColumns + ` FROM accounts
		ORDER BY is_default DESC, id ASC
		LIMIT 1`

	row := r.db.QueryRow(query)
	account, err := r.scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get default account: %w", err)
	}

	return &account, nil
}

// GetAll retrieves all accounts ordered by creation
func (r *Repository) GetAll() ([]Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts ORDER BY id ASC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := r.scanAccountFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// Count returns the number of accounts
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// UpdateStartingBalance updates the starting balance of an account
func (r *Repository) UpdateStartingBalance(id int64, balance float64) error {
	result, err := r.db.Exec(`UPDATE accounts SET starting_balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update starting balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %d not found", id)
	}

	r.log.Info().
		Int64("account_id", id).
		Float64("starting_balance", balance).
		Msg("Starting balance updated")

	return nil
}

// Helper methods

func (r *Repository) scanAccount(row *sql.Row) (Account, error) {
	var account Account
	var isDefault int
	var createdAtUnix int64

	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Type,
		&account.StartingBalance,
		&isDefault,
		&createdAtUnix,
	)
	if err != nil {
		return account, err
	}

	account.IsDefault = isDefault == 1
	account.CreatedAt = time.Unix(createdAtUnix, 0).UTC()

	return account, nil
}

func (r *Repository) scanAccountFromRows(rows *sql.Rows) (Account, error) {
	var account Account
	var isDefault int
	var createdAtUnix int64

	err := rows.Scan(
		&account.ID,
		&account.Name,
		&account.Type,
		&account.StartingBalance,
		&isDefault,
		&createdAtUnix,
	)
	if err != nil {
		return account, err
	}

	account.IsDefault = isDefault == 1
	account.CreatedAt = time.Unix(createdAtUnix, 0).UTC()

	return account, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
