// Package memory provides the process-local cache implementations. The
// trade cache is deliberately not persisted: it is a bounded, per-pair
// convenience window with process lifetime.
package memory

import (
	"sort"
	"sync"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

// TradeCache is an in-memory domain.TradeCache keyed by (network, pair).
// Entries are created lazily on first merge and replaced wholesale, never
// mutated in place; a mutex per key serializes concurrent merges for the
// same pair so overlapping reconstruction windows cannot lose updates.
type TradeCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*tradeEntry
}

type tradeEntry struct {
	mu     sync.Mutex
	trades []domain.Trade
}

// NewTradeCache creates a cache holding at most capacity trades per key.
// A non-positive capacity falls back to domain.TradeCacheCapacity.
func NewTradeCache(capacity int) *TradeCache {
	if capacity <= 0 {
		capacity = domain.TradeCacheCapacity
	}
	return &TradeCache{
		capacity: capacity,
		entries:  make(map[string]*tradeEntry),
	}
}

// Get returns the cached trades for key, or nil when nothing has been
// merged yet. The returned slice is a copy; callers may not observe later
// merges through it.
func (c *TradeCache) Get(key string) []domain.Trade {
	e := c.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.trades == nil {
		return nil
	}
	out := make([]domain.Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

// Merge folds freshly reconstructed trades into the entry for key:
// fresh trades (newest scan first) go ahead of the cached list, duplicates
// by hash keep the first occurrence so a fresh copy replaces a stale one,
// the result is ordered by time descending and truncated to capacity.
func (c *TradeCache) Merge(key string, fresh []domain.Trade) []domain.Trade {
	e := c.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	combined := make([]domain.Trade, 0, len(fresh)+len(e.trades))
	combined = append(combined, fresh...)
	combined = append(combined, e.trades...)

	seen := make(map[string]struct{}, len(combined))
	merged := combined[:0]
	for _, t := range combined {
		if _, dup := seen[t.Hash]; dup {
			continue
		}
		seen[t.Hash] = struct{}{}
		merged = append(merged, t)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time.After(merged[j].Time)
	})
	if len(merged) > c.capacity {
		merged = merged[:c.capacity]
	}

	e.trades = merged

	out := make([]domain.Trade, len(merged))
	copy(out, merged)
	return out
}

// entry returns the per-key entry, creating it lazily. Entries are never
// deleted; the key space is bounded by the pairs actually queried.
func (c *TradeCache) entry(key string) *tradeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &tradeEntry{}
		c.entries[key] = e
	}
	return e
}
