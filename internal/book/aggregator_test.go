package book

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

var (
	baseAsset  = domain.Asset{Currency: "USD", Issuer: "rIssuer"}
	quoteAsset = domain.NativeAsset()
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amt(a domain.Asset, v string) domain.Amount {
	return domain.Amount{Asset: a, Value: dec(v)}
}

// offer creates a minimal open-book offer.
func offer(account string, gets, pays domain.Amount) domain.Offer {
	return domain.Offer{Account: account, TakerGets: gets, TakerPays: pays}
}

func TestAggregateClassifiesBothSides(t *testing.T) {
	offers := []domain.Offer{
		// Creator sells 50 USD for 500 XRP: an ask at 10.
		offer("rAsk", amt(baseAsset, "50"), amt(quoteAsset, "500")),
		// Creator sells 600 XRP for 60 USD: a bid at 10.
		offer("rBid", amt(quoteAsset, "600"), amt(baseAsset, "60")),
	}

	ob := Aggregate(offers, baseAsset, quoteAsset, Options{})

	require.Len(t, ob.Asks, 1)
	assert.True(t, ob.Asks[0].Price.Equal(dec("10")), ob.Asks[0].Price.String())
	assert.True(t, ob.Asks[0].Size.Equal(dec("50")))
	assert.Equal(t, "rAsk", ob.Asks[0].Account)

	require.Len(t, ob.Bids, 1)
	assert.True(t, ob.Bids[0].Price.Equal(dec("10")), ob.Bids[0].Price.String())
	assert.True(t, ob.Bids[0].Size.Equal(dec("60")))
	assert.Equal(t, "rBid", ob.Bids[0].Account)

	require.Len(t, ob.Depth.Asks, 1)
	assert.True(t, ob.Depth.Asks[0].CumulativeSize.Equal(dec("50")))
	require.Len(t, ob.Depth.Bids, 1)
	assert.True(t, ob.Depth.Bids[0].CumulativeSize.Equal(dec("60")))
}

func TestAggregateDropsForeignPairs(t *testing.T) {
	other := domain.Asset{Currency: "EUR", Issuer: "rOther"}
	offers := []domain.Offer{
		offer("rX", amt(other, "10"), amt(quoteAsset, "100")),
		offer("rY", amt(baseAsset, "10"), amt(other, "100")),
	}

	ob := Aggregate(offers, baseAsset, quoteAsset, Options{})
	assert.Empty(t, ob.Asks)
	assert.Empty(t, ob.Bids)
}

func TestAggregateOrderingAndTruncation(t *testing.T) {
	offers := []domain.Offer{
		offer("rA", amt(baseAsset, "10"), amt(quoteAsset, "30")), // ask at 3
		offer("rB", amt(baseAsset, "10"), amt(quoteAsset, "10")), // ask at 1
		offer("rC", amt(baseAsset, "10"), amt(quoteAsset, "20")), // ask at 2
		offer("rD", amt(quoteAsset, "10"), amt(baseAsset, "10")), // bid at 1
		offer("rE", amt(quoteAsset, "30"), amt(baseAsset, "10")), // bid at 3
		offer("rF", amt(quoteAsset, "20"), amt(baseAsset, "10")), // bid at 2
	}

	ob := Aggregate(offers, baseAsset, quoteAsset, Options{Limit: 2})

	// Asks keep the two best (lowest) prices and render best-last.
	require.Len(t, ob.Asks, 2)
	assert.True(t, ob.Asks[0].Price.Equal(dec("2")))
	assert.True(t, ob.Asks[1].Price.Equal(dec("1")))

	// Bids render best-first.
	require.Len(t, ob.Bids, 2)
	assert.True(t, ob.Bids[0].Price.Equal(dec("3")))
	assert.True(t, ob.Bids[1].Price.Equal(dec("2")))

	// Depth stays ordered from the best level outward and accumulates.
	require.Len(t, ob.Depth.Asks, 2)
	assert.True(t, ob.Depth.Asks[0].Price.Equal(dec("1")))
	assert.True(t, ob.Depth.Asks[0].CumulativeSize.Equal(dec("10")))
	assert.True(t, ob.Depth.Asks[1].CumulativeSize.Equal(dec("20")))

	require.Len(t, ob.Depth.Bids, 2)
	assert.True(t, ob.Depth.Bids[0].Price.Equal(dec("3")))
	assert.True(t, ob.Depth.Bids[1].CumulativeSize.Equal(dec("20")))
}

func TestAggregateDepthMonotonic(t *testing.T) {
	offers := []domain.Offer{
		offer("r1", amt(baseAsset, "5"), amt(quoteAsset, "10")),
		offer("r2", amt(baseAsset, "7"), amt(quoteAsset, "21")),
		offer("r3", amt(baseAsset, "3"), amt(quoteAsset, "12")),
	}

	ob := Aggregate(offers, baseAsset, quoteAsset, Options{})
	require.Len(t, ob.Depth.Asks, 3)
	for i := 1; i < len(ob.Depth.Asks); i++ {
		assert.True(t, ob.Depth.Asks[i].CumulativeSize.GreaterThan(ob.Depth.Asks[i-1].CumulativeSize))
		assert.True(t, ob.Depth.Asks[i].Price.GreaterThanOrEqual(ob.Depth.Asks[i-1].Price))
	}
}

func TestAggregateExpirationFilter(t *testing.T) {
	closeTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := closeTime.Add(-time.Minute)
	future := closeTime.Add(time.Minute)

	expired := offer("rOld", amt(baseAsset, "10"), amt(quoteAsset, "100"))
	expired.Expiration = &past
	live := offer("rNew", amt(baseAsset, "10"), amt(quoteAsset, "110"))
	live.Expiration = &future

	ob := Aggregate([]domain.Offer{expired, live}, baseAsset, quoteAsset, Options{CloseTime: closeTime})
	require.Len(t, ob.Asks, 1)
	assert.Equal(t, "rNew", ob.Asks[0].Account)

	// Without a close time the filter is off.
	ob = Aggregate([]domain.Offer{expired, live}, baseAsset, quoteAsset, Options{})
	assert.Len(t, ob.Asks, 2)
}

func TestAggregateDomainScope(t *testing.T) {
	open := offer("rOpen", amt(baseAsset, "1"), amt(quoteAsset, "10"))

	scoped := offer("rScoped", amt(baseAsset, "1"), amt(quoteAsset, "10"))
	scoped.DomainID = "ABCD"

	hybrid := offer("rHybrid", amt(baseAsset, "1"), amt(quoteAsset, "10"))
	hybrid.DomainID = "ABCD"
	hybrid.Flags = domain.OfferFlagHybrid

	offers := []domain.Offer{open, scoped, hybrid}

	// Unscoped query: open-book plus hybrid offers.
	ob := Aggregate(offers, baseAsset, quoteAsset, Options{})
	accounts := make([]string, 0, len(ob.Asks))
	for _, lv := range ob.Asks {
		accounts = append(accounts, lv.Account)
	}
	assert.ElementsMatch(t, []string{"rOpen", "rHybrid"}, accounts)

	// Scoped query: only that domain's offers.
	ob = Aggregate(offers, baseAsset, quoteAsset, Options{Domain: "ABCD"})
	accounts = accounts[:0]
	for _, lv := range ob.Asks {
		accounts = append(accounts, lv.Account)
	}
	assert.ElementsMatch(t, []string{"rScoped", "rHybrid"}, accounts)

	// Scoped query for a different domain sees nothing.
	ob = Aggregate(offers, baseAsset, quoteAsset, Options{Domain: "FFFF"})
	assert.Empty(t, ob.Asks)
}

func TestAggregateFundedAmountsOverride(t *testing.T) {
	o := offer("rThin", amt(baseAsset, "100"), amt(quoteAsset, "1000"))
	funded := amt(baseAsset, "25")
	fundedPays := amt(quoteAsset, "250")
	o.TakerGetsFunded = &funded
	o.TakerPaysFunded = &fundedPays

	ob := Aggregate([]domain.Offer{o}, baseAsset, quoteAsset, Options{})
	require.Len(t, ob.Asks, 1)
	assert.True(t, ob.Asks[0].Size.Equal(dec("25")), ob.Asks[0].Size.String())
	assert.True(t, ob.Asks[0].Price.Equal(dec("10")))
}

func TestAggregateZeroSizeOffer(t *testing.T) {
	o := offer("rZero", amt(baseAsset, "0"), amt(quoteAsset, "100"))

	ob := Aggregate([]domain.Offer{o}, baseAsset, quoteAsset, Options{})
	require.Len(t, ob.Asks, 1)
	assert.True(t, ob.Asks[0].Price.IsZero())
}
