// Package book classifies raw ledger offers into bid/ask ladders for a
// chosen base/quote pair and derives cumulative depth.
package book

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

// Options controls aggregation.
type Options struct {
	// Limit truncates each ladder to at most this many levels. Zero or
	// negative means no truncation. Cumulative depth is computed before
	// truncation so boundary figures stay correct.
	Limit int

	// Domain scopes the query to a permissioned domain. When empty,
	// domain-only offers are excluded and hybrid offers are kept.
	Domain string

	// CloseTime filters out offers expired as of this ledger close time.
	// Zero disables the filter.
	CloseTime time.Time
}

// Aggregate re-classifies every offer against the caller's base/quote pair,
// regardless of which raw book list it arrived in: the ledger splits
// book_offers results by the creator's sell flag, not by which side is base.
// An offer matching neither side of the pair is dropped silently.
func Aggregate(offers []domain.Offer, base, quote domain.Asset, opts Options) domain.OrderBook {
	var asks, bids []domain.Level

	for _, o := range offers {
		if !inDomainScope(o, opts.Domain) {
			continue
		}
		if !opts.CloseTime.IsZero() && o.Expired(opts.CloseTime) {
			continue
		}

		gets := o.EffectiveGets()
		pays := o.EffectivePays()

		switch {
		case gets.Asset.Equals(base) && pays.Asset.Equals(quote):
			// Creator sells base: an ask.
			asks = append(asks, domain.Level{
				Price:   safeRatio(pays.Value, gets.Value),
				Size:    gets.Value,
				Account: o.Account,
			})
		case pays.Asset.Equals(base) && gets.Asset.Equals(quote):
			// Creator buys base: a bid.
			bids = append(bids, domain.Level{
				Price:   safeRatio(gets.Value, pays.Value),
				Size:    pays.Value,
				Account: o.Account,
			})
		}
	}

	// Best ask is the lowest price, best bid the highest. Stable sorts keep
	// input order among equal prices.
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price.LessThan(asks[j].Price) })
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price.GreaterThan(bids[j].Price) })

	askDepth := cumulativeDepth(asks)
	bidDepth := cumulativeDepth(bids)

	if opts.Limit > 0 {
		asks = truncate(asks, opts.Limit)
		bids = truncate(bids, opts.Limit)
		askDepth = truncate(askDepth, opts.Limit)
		bidDepth = truncate(bidDepth, opts.Limit)
	}

	// Asks render nearest-to-spread last: best (lowest) price at the end.
	reverse(asks)

	return domain.OrderBook{
		Base:  base,
		Quote: quote,
		Asks:  asks,
		Bids:  bids,
		Depth: domain.BookDepth{Asks: askDepth, Bids: bidDepth},
	}
}

// inDomainScope applies permissioned-domain visibility. An unscoped query
// sees open-book offers plus hybrid domain offers; a scoped query sees only
// that domain's offers.
func inDomainScope(o domain.Offer, queryDomain string) bool {
	if queryDomain == "" {
		return o.DomainID == "" || o.IsHybrid()
	}
	return o.DomainID == queryDomain
}

// safeRatio divides counter by base, returning zero for a zero base amount
// rather than failing the whole aggregation.
func safeRatio(counter, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return counter.Div(base)
}

// cumulativeDepth walks levels from the best outward, accumulating size:
// each entry reports how much base is available at-or-better-than its price.
func cumulativeDepth(levels []domain.Level) []domain.DepthLevel {
	depth := make([]domain.DepthLevel, 0, len(levels))
	sum := decimal.Zero
	for _, lv := range levels {
		sum = sum.Add(lv.Size)
		depth = append(depth, domain.DepthLevel{Price: lv.Price, CumulativeSize: sum})
	}
	return depth
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
