package domain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/davidbz/tally/internal/metrics"
	"github.com/davidbz/tally/internal/observability"
)

// DefaultCacheTTL is how long a fetched region price table stays valid.
const DefaultCacheTTL = 24 * time.Hour

// PricingCache caches normalized per-region price tables for a bounded time.
// Entries are replaced wholesale on expiry, never merged, so readers always
// see an internally consistent table. State is instance-scoped: two caches
// built with different fetchers or TTLs share nothing.
type PricingCache struct {
	fetcher PriceFetcher
	events  EventPublisher
	metrics *metrics.Metrics
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]*RegionPrices

	// Concurrent refreshes for one region coalesce into a single upstream
	// fetch; every waiter gets the table that fetch produced.
	group singleflight.Group
}

// NewPricingCache creates a pricing cache using the wall clock. A
// non-positive ttl falls back to DefaultCacheTTL; events and m may be nil.
func NewPricingCache(fetcher PriceFetcher, ttl time.Duration, events EventPublisher, m *metrics.Metrics) *PricingCache {
	return NewPricingCacheWithClock(fetcher, ttl, events, m, time.Now)
}

// NewPricingCacheWithClock creates a pricing cache with an injected clock,
// for tests that control entry aging.
func NewPricingCacheWithClock(
	fetcher PriceFetcher,
	ttl time.Duration,
	events EventPublisher,
	m *metrics.Metrics,
	now func() time.Time,
) *PricingCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &PricingCache{
		fetcher: fetcher,
		events:  events,
		metrics: m,
		ttl:     ttl,
		now:     now,
		entries: make(map[string]*RegionPrices),
	}
}

// EnsureFresh returns a valid price table for the region, fetching and
// normalizing a new one when none exists or the existing entry has aged past
// the TTL. Safe to call before every estimate.
func (c *PricingCache) EnsureFresh(ctx context.Context, region string) (*RegionPrices, error) {
	region = strings.ToLower(region)

	if entry, ok := c.lookup(region); ok {
		if c.metrics != nil {
			c.metrics.ObserveCacheLookup(region, true)
		}
		return entry, nil
	}

	if c.metrics != nil {
		c.metrics.ObserveCacheLookup(region, false)
	}

	result, err, _ := c.group.Do(region, func() (interface{}, error) {
		// A coalesced waiter may arrive after the leader already stored a
		// fresh table.
		if entry, ok := c.lookup(region); ok {
			return entry, nil
		}

		return c.refresh(ctx, region)
	})
	if err != nil {
		return nil, err
	}

	return result.(*RegionPrices), nil
}

func (c *PricingCache) lookup(region string) (*RegionPrices, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[region]
	if !ok || c.now().Sub(entry.FetchedAt) >= c.ttl {
		return nil, false
	}

	return entry, true
}

func (c *PricingCache) refresh(ctx context.Context, region string) (*RegionPrices, error) {
	items, err := c.fetcher.FetchRegionPrices(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices for region %s: %w", region, err)
	}

	entry := &RegionPrices{
		FetchedAt: c.now(),
		Models:    NormalizePrices(ctx, items),
	}

	c.mu.Lock()
	c.entries[region] = entry
	c.mu.Unlock()

	observability.FromContext(ctx).Info("region price table refreshed",
		zap.String("region", region),
		zap.Int("raw_records", len(items)),
		zap.Int("models", len(entry.Models)),
	)

	if c.events != nil {
		c.events.Publish(ctx, "pricing.refreshed", map[string]interface{}{
			"region": region,
			"models": len(entry.Models),
		})
	}

	return entry, nil
}
