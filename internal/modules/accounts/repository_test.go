package accounts

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/greenmangroup/wheelhouse/internal/testing"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, cleanup := testhelpers.NewTestDB(t, "ledger")
	t.Cleanup(cleanup)

	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestCreateFirstAccountBecomesDefault(t *testing.T) {
	repo := newTestRepo(t)

	account := &Account{Name: "Rule One", Type: "margin", StartingBalance: 25000}
	require.NoError(t, repo.Create(account))

	assert.NotZero(t, account.ID)
	assert.True(t, account.IsDefault, "first account is the default")
	assert.False(t, account.CreatedAt.IsZero())
}

func TestCreateRejectsEmptyName(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Create(&Account{Name: "   "})
	assert.Error(t, err)
}

func TestDefaultFlagMovesToNewDefault(t *testing.T) {
	repo := newTestRepo(t)

	first := &Account{Name: "Taxable", StartingBalance: 10000}
	require.NoError(t, repo.Create(first))

	second := &Account{Name: "IRA", StartingBalance: 50000, IsDefault: true}
	require.NoError(t, repo.Create(second))

	def, err := repo.GetDefault()
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, second.ID, def.ID)

	reloaded, err := repo.GetByID(first.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.False(t, reloaded.IsDefault)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	account, err := repo.GetByID(999)
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestGetByName(t *testing.T) {
	repo := newTestRepo(t)

	created := &Account{Name: "Rule One", StartingBalance: 25000}
	require.NoError(t, repo.Create(created))

	account, err := repo.GetByName("Rule One")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, created.ID, account.ID)
	assert.Equal(t, 25000.0, account.StartingBalance)
}

func TestGetAllOrdered(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(&Account{Name: "A"}))
	require.NoError(t, repo.Create(&Account{Name: "B"}))
	require.NoError(t, repo.Create(&Account{Name: "C"}))

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].Name)
	assert.Equal(t, "C", all[2].Name)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUpdateStartingBalance(t *testing.T) {
	repo := newTestRepo(t)

	account := &Account{Name: "Rule One", StartingBalance: 25000}
	require.NoError(t, repo.Create(account))

	require.NoError(t, repo.UpdateStartingBalance(account.ID, 30000))

	reloaded, err := repo.GetByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, 30000.0, reloaded.StartingBalance)

	err = repo.UpdateStartingBalance(999, 1)
	assert.Error(t, err)
}
