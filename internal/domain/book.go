package domain

import "github.com/shopspring/decimal"

// Level is a single rung of an order-book ladder: one offer's price and
// base-asset size.
type Level struct {
	Price   decimal.Decimal `json:"price"`
	Size    decimal.Decimal `json:"size"`
	Account string          `json:"account,omitempty"`
}

// DepthLevel reports how much base asset is available at-or-better-than a
// price. Derived, immutable once computed, recomputed per request.
type DepthLevel struct {
	Price          decimal.Decimal `json:"price"`
	CumulativeSize decimal.Decimal `json:"cumulativeSize"`
}

// BookDepth carries cumulative depth for both sides of a book.
type BookDepth struct {
	Asks []DepthLevel `json:"asks"`
	Bids []DepthLevel `json:"bids"`
}

// OrderBook is the aggregated two-sided book for a pair.
//
// Asks are ordered with the best (lowest) price last and bids with the best
// (highest) price first, so the two ladders render stacked around the spread.
type OrderBook struct {
	Base  Asset     `json:"base"`
	Quote Asset     `json:"quote"`
	Asks  []Level   `json:"sell"`
	Bids  []Level   `json:"buy"`
	Depth BookDepth `json:"depth"`
}
