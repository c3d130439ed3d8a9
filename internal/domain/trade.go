package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide is the direction of a trade relative to the base asset.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// Trade is an executed exchange of base for quote, reconstructed from
// transaction metadata. Hash is the identity key: a cache never holds two
// trades with the same hash.
type Trade struct {
	Side        TradeSide       `json:"side"`
	Price       decimal.Decimal `json:"price"`
	BaseAmount  decimal.Decimal `json:"baseAmount"`
	QuoteAmount decimal.Decimal `json:"quoteAmount"`
	Account     string          `json:"account"`
	Time        time.Time       `json:"time"`
	Hash        string          `json:"hash"`
}

// TradeCacheCapacity bounds the number of trades retained per pair.
const TradeCacheCapacity = 50

// TradeCache stores recent trades per (network, pair) key. Implementations
// must keep each entry deduplicated by hash, ordered by time descending, and
// capped at TradeCacheCapacity.
type TradeCache interface {
	// Get returns the cached trades for the key, or nil when the key has
	// never been merged into.
	Get(key string) []Trade

	// Merge folds freshly reconstructed trades (newest scan first) into the
	// cached entry, preferring fresh copies over stale ones with the same
	// hash, and returns the resulting entry.
	Merge(key string, fresh []Trade) []Trade
}

// TradeCacheKey builds the cache key for a pair on a network.
func TradeCacheKey(network string, p Pair) string {
	return network + "|" + p.Base.String() + "|" + p.Quote.String()
}
