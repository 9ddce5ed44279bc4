package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amplifi/rate-engine/internal/metrics"
	"github.com/amplifi/rate-engine/internal/model"
	"github.com/amplifi/rate-engine/internal/provider"
)

// SnapshotFetcher produces a market snapshot for a query. The provider
// aggregator satisfies this.
type SnapshotFetcher interface {
	Fetch(ctx context.Context, q provider.Query) model.MarketSnapshot
}

// CachedSnapshots wraps a SnapshotFetcher with a Redis read-through cache
// keyed by city, country, and stay date. Acquisition is the expensive step
// (AI research plus web search), so repeated lookups for the same market
// day are served from cache until the TTL expires.
//
// Redis failures degrade to a direct fetch; the cache is never load-bearing.
type CachedSnapshots struct {
	fetcher SnapshotFetcher
	rdb     *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
}

// NewCachedSnapshots creates the caching wrapper.
func NewCachedSnapshots(fetcher SnapshotFetcher, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedSnapshots {
	return &CachedSnapshots{fetcher: fetcher, rdb: rdb, ttl: ttl, logger: logger}
}

// Fetch returns the cached snapshot when present, otherwise fetches and
// caches the fresh one.
func (c *CachedSnapshots) Fetch(ctx context.Context, q provider.Query) model.MarketSnapshot {
	key := snapshotKey(q)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var snap model.MarketSnapshot
		if json.Unmarshal(data, &snap) == nil {
			metrics.SnapshotCacheHits.Inc()
			return snap
		}
	}
	metrics.SnapshotCacheMisses.Inc()

	snap := c.fetcher.Fetch(ctx, q)
	if payload, err := json.Marshal(snap); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("snapshot cache write failed", "key", key, "error", err)
		}
	}
	return snap
}

func snapshotKey(q provider.Query) string {
	return fmt.Sprintf("snapshot:%s:%s:%s", q.City, q.Country, q.Date)
}
