package ledger

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmangroup/wheelhouse/internal/events"
	"github.com/greenmangroup/wheelhouse/internal/modules/tickers"
	"github.com/greenmangroup/wheelhouse/internal/modules/trades"
	testhelpers "github.com/greenmangroup/wheelhouse/internal/testing"
)

type ledgerFixture struct {
	service    *Service
	cache      *SnapshotCache
	tradesRepo *trades.Repository
	accountID  int64
	tickerID   int64
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	ledgerDB, cleanupLedger := testhelpers.NewTestDB(t, "ledger")
	t.Cleanup(cleanupLedger)
	cacheDB, cleanupCache := testhelpers.NewTestDB(t, "cache")
	t.Cleanup(cleanupCache)

	conn := ledgerDB.Conn()
	_, err := conn.Exec(`
		INSERT INTO accounts (name, account_type, starting_balance, is_default, created_at)
		VALUES ('Rule One', 'brokerage', 25000, 1, strftime('%s', 'now'))
	`)
	require.NoError(t, err)

	tickersRepo := tickers.NewRepository(conn, zerolog.Nop())
	ticker, err := tickersRepo.GetOrCreate("AMD")
	require.NoError(t, err)

	tradesRepo := trades.NewRepository(conn, zerolog.Nop())
	repo := NewRepository(conn, zerolog.Nop())
	cache := NewSnapshotCache(cacheDB.Conn(), 5*time.Minute, zerolog.Nop())
	bus := events.NewBus(zerolog.Nop())

	return &ledgerFixture{
		service:    NewService(repo, tradesRepo, tickersRepo, cache, bus, zerolog.Nop()),
		cache:      cache,
		tradesRepo: tradesRepo,
		accountID:  1,
		tickerID:   ticker.ID,
	}
}

func (f *ledgerFixture) createTrade(t *testing.T, trade *trades.Trade) *trades.Trade {
	t.Helper()

	trade.AccountID = f.accountID
	trade.TickerID = f.tickerID
	trade.Ticker = "AMD"

	created, err := f.tradesRepo.Create(trade)
	require.NoError(t, err)
	return created
}

func TestRebuildPartitionReplaysTrades(t *testing.T) {
	f := newLedgerFixture(t)

	f.createTrade(t, &trades.Trade{
		TradeType: trades.TypeBuyToOpen, TradeDate: "2024-01-02",
		NumOfContracts: 100, Premium: 10.00, Status: trades.StatusClosed,
		TotalPremium: 1000.00,
	})
	f.createTrade(t, &trades.Trade{
		TradeType: trades.TypeSellToClose, TradeDate: "2024-01-15",
		NumOfContracts: 40, Premium: 12.00, Status: trades.StatusClosed,
		TotalPremium: 480.00,
	})

	require.NoError(t, f.service.RebuildPartition(f.accountID, f.tickerID))

	snapshot, err := f.service.GetSnapshot(f.accountID, f.tickerID)
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 2)

	assert.Equal(t, 60.0, snapshot.Totals.RunningShares)
	assert.Equal(t, 600.00, snapshot.Totals.RunningBasis)
	assert.Equal(t, 10.00, snapshot.Totals.BasisPerShare)
	assert.Equal(t, "AMD", snapshot.Totals.Symbol)
}

func TestRebuildPartitionIsIdempotent(t *testing.T) {
	f := newLedgerFixture(t)

	exp := "2024-02-16"
	f.createTrade(t, &trades.Trade{
		TradeType: trades.TypePutRoll, TradeDate: "2024-01-02",
		ExpirationDate: &exp, NumOfContracts: 2, StrikePrice: 50,
		Premium: 1.00, Status: trades.StatusAssigned, TotalPremium: 200.00,
	})

	require.NoError(t, f.service.RebuildPartition(f.accountID, f.tickerID))
	first, err := f.service.GetSnapshot(f.accountID, f.tickerID)
	require.NoError(t, err)

	require.NoError(t, f.service.RebuildPartition(f.accountID, f.tickerID))
	second, err := f.service.GetSnapshot(f.accountID, f.tickerID)
	require.NoError(t, err)

	require.Equal(t, len(first.Entries), len(second.Entries))
	for i := range first.Entries {
		a, b := first.Entries[i], second.Entries[i]
		assert.Equal(t, a.TransactionDate, b.TransactionDate)
		assert.Equal(t, a.Seq, b.Seq)
		assert.Equal(t, a.Description, b.Description)
		assert.Equal(t, a.Shares, b.Shares)
		assert.Equal(t, a.Amount, b.Amount)
		assert.Equal(t, a.RunningBasis, b.RunningBasis)
		assert.Equal(t, a.RunningShares, b.RunningShares)
		assert.Equal(t, a.BasisPerShare, b.BasisPerShare)
	}
}

func TestRebuildInvalidatesSnapshotCache(t *testing.T) {
	f := newLedgerFixture(t)

	f.createTrade(t, &trades.Trade{
		TradeType: trades.TypeBuyToOpen, TradeDate: "2024-01-02",
		NumOfContracts: 100, Premium: 10.00, Status: trades.StatusClosed,
		TotalPremium: 1000.00,
	})
	require.NoError(t, f.service.RebuildPartition(f.accountID, f.tickerID))

	// Prime the cache.
	snapshot, err := f.service.GetSnapshot(f.accountID, f.tickerID)
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 1)

	// A new trade and rebuild must evict the cached snapshot.
	f.createTrade(t, &trades.Trade{
		TradeType: trades.TypeSellToClose, TradeDate: "2024-01-15",
		NumOfContracts: 40, Premium: 12.00, Status: trades.StatusClosed,
		TotalPremium: 480.00,
	})
	require.NoError(t, f.service.RebuildPartition(f.accountID, f.tickerID))

	snapshot, err = f.service.GetSnapshot(f.accountID, f.tickerID)
	require.NoError(t, err)
	assert.Len(t, snapshot.Entries, 2)
	assert.Equal(t, 60.0, snapshot.Totals.RunningShares)
}

func TestInvalidationLeavesOtherPartitionsCached(t *testing.T) {
	f := newLedgerFixture(t)

	// Ticker ids 1 and 10 share a decimal prefix; evicting partition
	// (1, 1) must not touch partition (1, 10).
	f.cache.Set(partitionKey(1, 1), "one")
	f.cache.Set(partitionKey(1, 10), "ten")

	f.cache.DeletePrefix(partitionKey(1, 1))

	var got string
	assert.False(t, f.cache.Get(partitionKey(1, 1), &got))
	require.True(t, f.cache.Get(partitionKey(1, 10), &got))
	assert.Equal(t, "ten", got)
}

func TestRebuildAssignedPutProducesPremiumAndSettlement(t *testing.T) {
	f := newLedgerFixture(t)

	exp := "2024-02-16"
	f.createTrade(t, &trades.Trade{
		TradeType: trades.TypePutRoll, TradeDate: "2024-01-02",
		ExpirationDate: &exp, NumOfContracts: 2, StrikePrice: 50,
		Premium: 1.00, Status: trades.StatusAssigned, TotalPremium: 200.00,
	})

	require.NoError(t, f.service.RebuildPartition(f.accountID, f.tickerID))

	snapshot, err := f.service.GetSnapshot(f.accountID, f.tickerID)
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 2)

	// Premium credit lowers basis before assignment settles the shares.
	assert.Equal(t, -200.00, snapshot.Entries[0].RunningBasis)
	assert.Equal(t, 200.0, snapshot.Entries[1].RunningShares)
	assert.Equal(t, 9800.00, snapshot.Entries[1].RunningBasis)
	assert.Equal(t, 49.00, snapshot.Entries[1].BasisPerShare)
}

func TestRebuildAllCoversEveryPartition(t *testing.T) {
	f := newLedgerFixture(t)

	f.createTrade(t, &trades.Trade{
		TradeType: trades.TypeBuyToOpen, TradeDate: "2024-01-02",
		NumOfContracts: 100, Premium: 10.00, Status: trades.StatusClosed,
		TotalPremium: 1000.00,
	})

	partitions, err := f.service.RebuildAll()
	require.NoError(t, err)
	assert.Equal(t, 1, partitions)

	snapshots, err := f.service.GetAccountSnapshots(f.accountID)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "AMD", snapshots[0].Totals.Symbol)
}
