package cash_flows

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/greenmangroup/wheelhouse/internal/testing"
)

func newTestRepo(t *testing.T) (*Repository, *sql.DB) {
	t.Helper()

	db, cleanup := testhelpers.NewTestDB(t, "ledger")
	t.Cleanup(cleanup)

	conn := db.Conn()
	_, err := conn.Exec(`
		INSERT INTO accounts (name, account_type, starting_balance, is_default, created_at)
		VALUES ('Rule One', 'brokerage', 25000, 1, strftime('%s', 'now'))
	`)
	require.NoError(t, err)

	return NewRepository(conn, zerolog.Nop()), conn
}

func seedTrade(t *testing.T, conn *sql.DB) int64 {
	t.Helper()

	_, err := conn.Exec(`INSERT INTO tickers (symbol, created_at) VALUES ('AMD', strftime('%s', 'now'))`)
	require.NoError(t, err)

	result, err := conn.Exec(`
		INSERT INTO trades (account_id, ticker_id, trade_type, trade_date, num_of_contracts, seq)
		VALUES (1, 1, 'put_roll', strftime('%s', 'now'), 2, 1)
	`)
	require.NoError(t, err)

	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestCreateAssignsPerAccountSequence(t *testing.T) {
	repo, _ := newTestRepo(t)

	first, err := repo.Create(&CashFlow{
		AccountID:   1,
		FlowType:    FlowDeposit,
		Amount:      1000,
		Date:        "2024-03-01",
		Description: "initial funding",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Seq)
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := repo.Create(&CashFlow{
		AccountID: 1,
		FlowType:  FlowWithdrawal,
		Amount:    250,
		Date:      "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Seq)

	got, err := repo.GetByID(first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-03-01", got.Date)
	assert.Equal(t, "initial funding", got.Description)
	assert.Equal(t, FlowDeposit, got.FlowType)
	assert.Equal(t, 1000.0, got.Amount)
}

func TestCreateValidation(t *testing.T) {
	repo, _ := newTestRepo(t)

	tests := []struct {
		name string
		flow *CashFlow
	}{
		{"invalid flow type", &CashFlow{AccountID: 1, FlowType: "DIVIDEND", Amount: 10, Date: "2024-03-01"}},
		{"negative amount", &CashFlow{AccountID: 1, FlowType: FlowDeposit, Amount: -10, Date: "2024-03-01"}},
		{"missing account", &CashFlow{FlowType: FlowDeposit, Amount: 10, Date: "2024-03-01"}},
		{"bad date", &CashFlow{AccountID: 1, FlowType: FlowDeposit, Amount: 10, Date: "03/01/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(tt.flow)
			assert.Error(t, err)
		})
	}
}

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		flowType string
		want     float64
	}{
		{FlowDeposit, 100},
		{FlowPremiumCredit, 100},
		{FlowSell, 100},
		{FlowWithdrawal, -100},
		{FlowPremiumDebit, -100},
		{FlowBuy, -100},
	}

	for _, tt := range tests {
		t.Run(tt.flowType, func(t *testing.T) {
			cf := &CashFlow{FlowType: tt.flowType, Amount: 100}
			assert.Equal(t, tt.want, cf.SignedAmount())
		})
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	got, err := repo.GetByID(999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListFilters(t *testing.T) {
	repo, conn := newTestRepo(t)

	_, err := conn.Exec(`
		INSERT INTO accounts (name, account_type, starting_balance, is_default, created_at)
		VALUES ('IRA', 'retirement', 10000, 0, strftime('%s', 'now'))
	`)
	require.NoError(t, err)

	seed := []struct {
		accountID int64
		flowType  string
		amount    float64
		date      string
	}{
		{1, FlowDeposit, 1000, "2024-01-15"},
		{1, FlowPremiumCredit, 158, "2024-02-01"},
		{1, FlowWithdrawal, 300, "2024-02-20"},
		{2, FlowDeposit, 5000, "2024-02-01"},
	}
	for _, s := range seed {
		_, err := repo.Create(&CashFlow{AccountID: s.accountID, FlowType: s.flowType, Amount: s.amount, Date: s.date})
		require.NoError(t, err)
	}

	accountOne := int64(1)
	flows, err := repo.List(ListFilter{AccountID: &accountOne})
	require.NoError(t, err)
	require.Len(t, flows, 3)
	assert.Equal(t, "2024-02-20", flows[0].Date)
	assert.Equal(t, "2024-01-15", flows[2].Date)

	flows, err = repo.List(ListFilter{AccountID: &accountOne, FlowType: FlowPremiumCredit})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, 158.0, flows[0].Amount)

	flows, err = repo.List(ListFilter{StartDate: "2024-02-01", EndDate: "2024-02-01"})
	require.NoError(t, err)
	assert.Len(t, flows, 2)

	limit := 1
	flows, err = repo.List(ListFilter{AccountID: &accountOne, Limit: &limit})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, FlowWithdrawal, flows[0].FlowType)

	_, err = repo.List(ListFilter{StartDate: "whenever"})
	assert.Error(t, err)
}

func TestSameDayFlowsOrderedBySequence(t *testing.T) {
	repo, _ := newTestRepo(t)

	for _, amount := range []float64{10, 20, 30} {
		_, err := repo.Create(&CashFlow{AccountID: 1, FlowType: FlowDeposit, Amount: amount, Date: "2024-03-01"})
		require.NoError(t, err)
	}

	accountOne := int64(1)
	flows, err := repo.List(ListFilter{AccountID: &accountOne})
	require.NoError(t, err)
	require.Len(t, flows, 3)
	assert.Equal(t, 30.0, flows[0].Amount)
	assert.Equal(t, 10.0, flows[2].Amount)
}

func TestDelete(t *testing.T) {
	repo, _ := newTestRepo(t)

	flow, err := repo.Create(&CashFlow{AccountID: 1, FlowType: FlowDeposit, Amount: 100, Date: "2024-03-01"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(flow.ID))

	got, err := repo.GetByID(flow.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, repo.Delete(flow.ID))
}

func TestDeleteByTradeID(t *testing.T) {
	repo, conn := newTestRepo(t)
	tradeID := seedTrade(t, conn)

	_, err := repo.Create(&CashFlow{AccountID: 1, TradeID: &tradeID, FlowType: FlowPremiumCredit, Amount: 316, Date: "2024-03-08"})
	require.NoError(t, err)
	_, err = repo.Create(&CashFlow{AccountID: 1, TradeID: &tradeID, FlowType: FlowBuy, Amount: 11000, Date: "2024-04-19"})
	require.NoError(t, err)
	_, err = repo.Create(&CashFlow{AccountID: 1, FlowType: FlowDeposit, Amount: 1000, Date: "2024-03-01"})
	require.NoError(t, err)

	removed, err := repo.DeleteByTradeID(tradeID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	accountOne := int64(1)
	flows, err := repo.List(ListFilter{AccountID: &accountOne})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, FlowDeposit, flows[0].FlowType)
}

func TestDeleteByTradeAndType(t *testing.T) {
	repo, conn := newTestRepo(t)
	tradeID := seedTrade(t, conn)

	_, err := repo.Create(&CashFlow{AccountID: 1, TradeID: &tradeID, FlowType: FlowPremiumCredit, Amount: 316, Date: "2024-03-08"})
	require.NoError(t, err)
	_, err = repo.Create(&CashFlow{AccountID: 1, TradeID: &tradeID, FlowType: FlowBuy, Amount: 11000, Date: "2024-04-19"})
	require.NoError(t, err)

	removed, err := repo.DeleteByTradeAndType(tradeID, FlowBuy)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	tid := tradeID
	flows, err := repo.List(ListFilter{TradeID: &tid})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, FlowPremiumCredit, flows[0].FlowType)
}

func TestSumSigned(t *testing.T) {
	repo, _ := newTestRepo(t)

	seed := []struct {
		flowType string
		amount   float64
		date     string
	}{
		{FlowDeposit, 1000, "2024-01-05"},
		{FlowPremiumCredit, 50, "2024-02-01"},
		{FlowSell, 200, "2024-02-10"},
		{FlowWithdrawal, 300, "2024-02-15"},
		{FlowBuy, 150, "2024-02-20"},
		{FlowPremiumDebit, 25, "2024-03-01"},
	}
	for _, s := range seed {
		_, err := repo.Create(&CashFlow{AccountID: 1, FlowType: s.flowType, Amount: s.amount, Date: s.date})
		require.NoError(t, err)
	}

	total, err := repo.SumSigned(1, "", "")
	require.NoError(t, err)
	assert.InDelta(t, 775.0, total, 1e-9)

	total, err = repo.SumSigned(1, "2024-02-01", "2024-02-29")
	require.NoError(t, err)
	assert.InDelta(t, -200.0, total, 1e-9)

	total, err = repo.SumSigned(2, "", "")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSumByType(t *testing.T) {
	repo, _ := newTestRepo(t)

	for _, amount := range []float64{1000, 500} {
		_, err := repo.Create(&CashFlow{AccountID: 1, FlowType: FlowDeposit, Amount: amount, Date: "2024-01-05"})
		require.NoError(t, err)
	}
	_, err := repo.Create(&CashFlow{AccountID: 1, FlowType: FlowWithdrawal, Amount: 200, Date: "2024-01-10"})
	require.NoError(t, err)

	totals, err := repo.SumByType(1)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, totals[FlowDeposit])
	assert.Equal(t, 200.0, totals[FlowWithdrawal])
	_, ok := totals[FlowBuy]
	assert.False(t, ok)
}

func TestBalanceHistory(t *testing.T) {
	repo, _ := newTestRepo(t)

	seed := []struct {
		flowType string
		amount   float64
		date     string
	}{
		{FlowDeposit, 1000, "2024-03-01"},
		{FlowWithdrawal, 200, "2024-03-02"},
		{FlowPremiumCredit, 50, "2024-03-02"},
		{FlowBuy, 100, "2024-03-03"},
	}
	for _, s := range seed {
		_, err := repo.Create(&CashFlow{AccountID: 1, FlowType: s.flowType, Amount: s.amount, Date: s.date})
		require.NoError(t, err)
	}

	points, err := repo.BalanceHistory(1, "2024-03-01", "2024-03-31", 500)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2024-03-01", points[0].Date)
	assert.InDelta(t, 1500.0, points[0].Balance, 1e-9)
	assert.Equal(t, "2024-03-02", points[1].Date)
	assert.InDelta(t, 1350.0, points[1].Balance, 1e-9)
	assert.Equal(t, "2024-03-03", points[2].Date)
	assert.InDelta(t, 1250.0, points[2].Balance, 1e-9)
}
