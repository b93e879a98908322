package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/events"
	"github.com/greenmangroup/wheelhouse/internal/metrics"
	"github.com/greenmangroup/wheelhouse/internal/modules/tickers"
	"github.com/greenmangroup/wheelhouse/internal/modules/trades"
	"github.com/greenmangroup/wheelhouse/internal/utils"
)

// Service owns the cost basis ledger: it rebuilds partitions when trades
// change and serves cached snapshots to readers.
//
// Rebuilds for one (account, ticker) partition are serialized on a
// per-partition mutex; distinct partitions rebuild concurrently with no
// shared mutable state. Every rebuild replaces the partition atomically,
// so readers always see a complete ledger.
type Service struct {
	log     zerolog.Logger
	repo    *Repository
	trades  *trades.Repository
	tickers *tickers.Repository
	cache   *SnapshotCache // optional
	bus     *events.Bus

	mu    sync.Mutex
	locks map[[2]int64]*sync.Mutex
}

// NewService creates a new ledger service. cache may be nil, in which case
// reads go straight to the ledger database.
func NewService(
	repo *Repository,
	tradesRepo *trades.Repository,
	tickersRepo *tickers.Repository,
	cache *SnapshotCache,
	bus *events.Bus,
	log zerolog.Logger,
) *Service {
	return &Service{
		log:     log.With().Str("service", "ledger").Logger(),
		repo:    repo,
		trades:  tradesRepo,
		tickers: tickersRepo,
		cache:   cache,
		bus:     bus,
		locks:   make(map[[2]int64]*sync.Mutex),
	}
}

// partitionLock returns the mutex serializing one partition's rebuilds.
func (s *Service) partitionLock(accountID, tickerID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]int64{accountID, tickerID}
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// RebuildPartition regenerates one partition's cost basis entries from its
// trades. Idempotent: rebuilding an unchanged partition produces identical
// rows. Called synchronously by every trade and cash mutation touching the
// partition, so the stored ledger is consistent with committed trade data
// by the time the mutating request returns.
func (s *Service) RebuildPartition(accountID, tickerID int64) error {
	lock := s.partitionLock(accountID, tickerID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	partition, err := s.trades.ListByPartition(accountID, tickerID)
	if err != nil {
		metrics.LedgerRebuilds.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load partition trades: %w", err)
	}

	evs, err := CollectEvents(partition)
	if err != nil {
		metrics.LedgerRebuilds.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to collect partition events: %w", err)
	}

	entries := Build(accountID, tickerID, evs)

	if err := s.repo.ReplacePartition(accountID, tickerID, entries); err != nil {
		metrics.LedgerRebuilds.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to replace partition: %w", err)
	}

	if s.cache != nil {
		s.cache.DeletePrefix(partitionKey(accountID, tickerID))
	}

	elapsed := time.Since(start)
	metrics.LedgerRebuilds.WithLabelValues("ok").Inc()
	metrics.LedgerRebuildDuration.Observe(elapsed.Seconds())

	if s.bus != nil {
		symbol := ""
		if ticker, err := s.tickers.GetByID(tickerID); err == nil && ticker != nil {
			symbol = ticker.Symbol
		}
		s.bus.EmitData("ledger", &events.LedgerRebuiltData{
			Account:    strconv.FormatInt(accountID, 10),
			Ticker:     symbol,
			Events:     len(entries),
			DurationMS: float64(elapsed.Microseconds()) / 1000,
		})
	}

	s.log.Debug().
		Int64("account_id", accountID).
		Int64("ticker_id", tickerID).
		Int("entries", len(entries)).
		Dur("elapsed", elapsed).
		Msg("Partition rebuilt")

	return nil
}

// RebuildAll regenerates every partition that has trades. Used by the
// manual rebuild endpoint and after restoring a database.
func (s *Service) RebuildAll() (int, error) {
	timer := utils.NewTimer("ledger_rebuild_all", s.log)
	defer timer.Stop()

	partitions, err := s.trades.Partitions()
	if err != nil {
		return 0, fmt.Errorf("failed to list partitions: %w", err)
	}

	for _, p := range partitions {
		if err := s.RebuildPartition(p[0], p[1]); err != nil {
			return 0, fmt.Errorf("failed to rebuild partition (%d, %d): %w", p[0], p[1], err)
		}
	}

	s.log.Info().Int("partitions", len(partitions)).Msg("Full ledger rebuild complete")
	return len(partitions), nil
}

// GetSnapshot returns one partition's ordered entries and totals, reading
// through the snapshot cache when one is configured.
func (s *Service) GetSnapshot(accountID, tickerID int64) (*Snapshot, error) {
	key := partitionKey(accountID, tickerID)

	if s.cache != nil {
		var cached Snapshot
		if s.cache.Get(key, &cached) {
			return &cached, nil
		}
	}

	entries, err := s.repo.ListPartition(accountID, tickerID)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Entries: entries,
		Totals:  s.totals(accountID, tickerID, entries),
	}

	if s.cache != nil {
		s.cache.Set(key, snapshot)
	}
	return snapshot, nil
}

// GetAccountSnapshots returns the snapshots of every partition under an
// account, ordered by symbol.
func (s *Service) GetAccountSnapshots(accountID int64) ([]Snapshot, error) {
	partitions, err := s.repo.AccountPartitions(accountID)
	if err != nil {
		return nil, err
	}

	tickerIDs := make([]int64, 0, len(partitions))
	for tickerID := range partitions {
		tickerIDs = append(tickerIDs, tickerID)
	}
	sort.Slice(tickerIDs, func(i, j int) bool {
		if partitions[tickerIDs[i]] != partitions[tickerIDs[j]] {
			return partitions[tickerIDs[i]] < partitions[tickerIDs[j]]
		}
		return tickerIDs[i] < tickerIDs[j]
	})

	snapshots := make([]Snapshot, 0, len(tickerIDs))
	for _, tickerID := range tickerIDs {
		snapshot, err := s.GetSnapshot(accountID, tickerID)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}
	return snapshots, nil
}

// totals summarizes a partition from its final entry.
func (s *Service) totals(accountID, tickerID int64, entries []Entry) Totals {
	totals := Totals{
		AccountID:  accountID,
		TickerID:   tickerID,
		EntryCount: len(entries),
	}

	if ticker, err := s.tickers.GetByID(tickerID); err == nil && ticker != nil {
		totals.Symbol = ticker.Symbol
		totals.CompanyName = ticker.CompanyName
	}

	if len(entries) > 0 {
		last := entries[len(entries)-1]
		totals.RunningBasis = last.RunningBasis
		totals.RunningShares = last.RunningShares
		totals.BasisPerShare = last.BasisPerShare
	}
	return totals
}
