package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTempDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()

	dir := t.TempDir()
	db, err := New(Config{
		Path:    filepath.Join(dir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestNewCreatesDirectoryAndConnects(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "data", "nested", "ledger.db")

	db, err := New(Config{Path: nested, Profile: ProfileLedger, Name: "ledger"})
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(filepath.Dir(nested))
	assert.NoError(t, err)
	assert.Equal(t, ProfileLedger, db.Profile())
	assert.Equal(t, "ledger", db.Name())
}

func TestDefaultProfileIsStandard(t *testing.T) {
	dir := t.TempDir()
	db, err := New(Config{Path: filepath.Join(dir, "x.db"), Name: "x"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ProfileStandard, db.Profile())
}

func TestMigrateLedgerSchema(t *testing.T) {
	db := newTempDB(t, "ledger", ProfileLedger)
	require.NoError(t, db.Migrate())

	// Migrate is idempotent
	require.NoError(t, db.Migrate())

	tables := []string{"accounts", "tickers", "commissions", "trades",
		"trade_status_history", "cash_flows", "cost_basis"}
	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigrateCacheSchema(t *testing.T) {
	db := newTempDB(t, "cache", ProfileCache)
	require.NoError(t, db.Migrate())

	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='cache'",
	).Scan(&name)
	assert.NoError(t, err)
}

func TestMigrateUnknownNameIsNoop(t *testing.T) {
	db := newTempDB(t, "mystery", ProfileStandard)
	assert.NoError(t, db.Migrate())
}

func TestWithTransactionCommit(t *testing.T) {
	db := newTempDB(t, "txtest", ProfileStandard)
	_, err := db.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)")
	require.NoError(t, err)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO items (label) VALUES ('a')")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransactionRollbackOnError(t *testing.T) {
	db := newTempDB(t, "txtest", ProfileStandard)
	_, err := db.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)")
	require.NoError(t, err)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO items (label) VALUES ('a')"); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransactionRecoversPanic(t *testing.T) {
	db := newTempDB(t, "txtest", ProfileStandard)
	_, err := db.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)")
	require.NoError(t, err)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, _ = tx.Exec("INSERT INTO items (label) VALUES ('a')")
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestHealthCheck(t *testing.T) {
	db := newTempDB(t, "ledger", ProfileLedger)
	require.NoError(t, db.Migrate())

	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, db.QuickCheck(context.Background()))
}

func TestWALCheckpointAndStats(t *testing.T) {
	db := newTempDB(t, "ledger", ProfileLedger)
	require.NoError(t, db.Migrate())

	assert.NoError(t, db.WALCheckpoint(""))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))
}
