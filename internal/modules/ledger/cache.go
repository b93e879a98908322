package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/greenmangroup/wheelhouse/internal/metrics"
)

// SnapshotCache is the read-through cache for ledger snapshots, backed by
// the disposable cache database. Values are msgpack blobs keyed by the
// filter parameters that produced them; every rebuild of a partition
// invalidates that partition's keys by prefix. The cache is owned by the
// ledger service, never consulted by writers.
type SnapshotCache struct {
	db  *sql.DB
	ttl time.Duration
	log zerolog.Logger
}

// NewSnapshotCache creates a snapshot cache with the given TTL.
func NewSnapshotCache(db *sql.DB, ttl time.Duration, log zerolog.Logger) *SnapshotCache {
	return &SnapshotCache{
		db:  db,
		ttl: ttl,
		log: log.With().Str("component", "snapshot_cache").Logger(),
	}
}

// Get decodes a cached value into dest. Returns false on a miss or an
// expired row. Decode failures are treated as misses: a stale or
// incompatible blob is deleted, never returned.
func (c *SnapshotCache) Get(key string, dest interface{}) bool {
	var blob []byte
	err := c.db.QueryRow(
		"SELECT value FROM cache WHERE key = ? AND expires_at > ?",
		key, time.Now().Unix(),
	).Scan(&blob)
	if err == sql.ErrNoRows {
		metrics.SnapshotCacheMisses.Inc()
		return false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		metrics.SnapshotCacheMisses.Inc()
		return false
	}

	if err := msgpack.Unmarshal(blob, dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache blob undecodable, evicting")
		c.Delete(key)
		metrics.SnapshotCacheMisses.Inc()
		return false
	}

	metrics.SnapshotCacheHits.Inc()
	return true
}

// Set stores a value under key for the cache TTL. Failures are logged and
// swallowed; the cache never fails a read path.
func (c *SnapshotCache) Set(key string, value interface{}) {
	blob, err := msgpack.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
		return
	}

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO cache (key, value, expires_at, created_at) VALUES (?, ?, ?, ?)",
		key, blob, time.Now().Add(c.ttl).Unix(), time.Now().Unix(),
	)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// Delete removes one key.
func (c *SnapshotCache) Delete(key string) {
	if _, err := c.db.Exec("DELETE FROM cache WHERE key = ?", key); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache delete failed")
	}
}

// DeletePrefix removes every key under a prefix. Rebuilds call this with
// the partition's key prefix so all filtered views of that partition
// drop together.
func (c *SnapshotCache) DeletePrefix(prefix string) {
	if _, err := c.db.Exec("DELETE FROM cache WHERE key LIKE ?", prefix+"%"); err != nil {
		c.log.Warn().Err(err).Str("prefix", prefix).Msg("Cache prefix delete failed")
	}
}

// partitionKey builds the cache key for one partition's snapshot. It
// doubles as the invalidation prefix for that partition. The trailing
// colon terminates both ids so a prefix delete for partition (1, 1)
// cannot match (1, 10).
func partitionKey(accountID, tickerID int64) string {
	return fmt.Sprintf("ledger:%d:%d:", accountID, tickerID)
}
