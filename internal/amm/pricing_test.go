package amm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testPool() domain.AMMPool {
	return domain.AMMPool{
		Exists:       true,
		BaseReserve:  dec("1000"),
		QuoteReserve: dec("10000"),
		FeeRate:      dec("0.01"),
	}
}

// within asserts |got - want| / want < tol.
func within(t *testing.T, want, got, tol decimal.Decimal) {
	t.Helper()
	relErr := got.Sub(want).Abs().DivRound(want.Abs(), quotePrecision)
	assert.True(t, relErr.LessThan(tol),
		"want %s, got %s, rel err %s", want.String(), got.String(), relErr.String())
}

func TestBuildParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.AMMPool)
		ok     bool
	}{
		{"healthy pool", func(p *domain.AMMPool) {}, true},
		{"missing pool", func(p *domain.AMMPool) { p.Exists = false }, false},
		{"zero base reserve", func(p *domain.AMMPool) { p.BaseReserve = decimal.Zero }, false},
		{"zero quote reserve", func(p *domain.AMMPool) { p.QuoteReserve = decimal.Zero }, false},
		{"base frozen", func(p *domain.AMMPool) { p.BaseFrozen = true }, false},
		{"quote frozen", func(p *domain.AMMPool) { p.QuoteFrozen = true }, false},
		{"negative fee", func(p *domain.AMMPool) { p.FeeRate = dec("-0.01") }, false},
		{"fee of one", func(p *domain.AMMPool) { p.FeeRate = dec("1") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := testPool()
			tt.mutate(&pool)
			_, ok := BuildParams(pool)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSpotPrice(t *testing.T) {
	p, ok := BuildParams(testPool())
	require.True(t, ok)

	// Q / (B * (1-F)) = 10000 / 990.
	within(t, dec("10.10101010101"), p.SpotPrice(), dec("0.0001"))
}

func TestMarginalBuyPriceIncreasesWithConsumption(t *testing.T) {
	p, _ := BuildParams(testPool())

	at0, ok := p.MarginalBuyPrice(decimal.Zero)
	require.True(t, ok)
	at100, ok := p.MarginalBuyPrice(dec("100"))
	require.True(t, ok)
	assert.True(t, at100.GreaterThan(at0))

	// Consuming the whole reserve is impossible.
	_, ok = p.MarginalBuyPrice(dec("1000"))
	assert.False(t, ok)
}

func TestMarginalSellPriceDecreasesWithConsumption(t *testing.T) {
	p, _ := BuildParams(testPool())

	at0, ok := p.MarginalSellPrice(decimal.Zero)
	require.True(t, ok)
	// Q*B*(1-F) / B^2 = 9.9.
	within(t, dec("9.9"), at0, dec("0.0001"))

	at100, ok := p.MarginalSellPrice(dec("100"))
	require.True(t, ok)
	assert.True(t, at100.LessThan(at0))

	_, ok = p.MarginalSellPrice(dec("-1"))
	assert.False(t, ok)
}

func TestMaxBuyBeforePrice(t *testing.T) {
	p, _ := BuildParams(testPool())

	// The spot price is already above 9: nothing can be bought below it.
	assert.True(t, p.MaxBuyBeforePrice(dec("9")).IsZero())
	assert.True(t, p.MaxBuyBeforePrice(decimal.Zero).IsZero())

	// A limit above spot admits a positive amount, and the marginal price
	// after consuming exactly that amount sits at the limit.
	limit := dec("15")
	maxBuy := p.MaxBuyBeforePrice(limit)
	assert.True(t, maxBuy.Sign() > 0)

	marginal, ok := p.MarginalBuyPrice(maxBuy)
	require.True(t, ok)
	within(t, limit, marginal, dec("0.001"))
}

func TestMaxSellBeforePrice(t *testing.T) {
	p, _ := BuildParams(testPool())

	// The current sell price is 9.9: a floor above it admits nothing.
	assert.True(t, p.MaxSellBeforePrice(dec("10")).IsZero())
	assert.True(t, p.MaxSellBeforePrice(decimal.Zero).IsZero())

	floor := dec("8")
	maxSell := p.MaxSellBeforePrice(floor)
	assert.True(t, maxSell.Sign() > 0)

	marginal, ok := p.MarginalSellPrice(maxSell)
	require.True(t, ok)
	within(t, floor, marginal, dec("0.001"))
}

func TestBuyCostMatchesMarginalForTinyTrades(t *testing.T) {
	p, _ := BuildParams(testPool())

	delta := dec("0.001")
	cost, ok := p.BuyCost(delta, decimal.Zero)
	require.True(t, ok)

	marginal, _ := p.MarginalBuyPrice(decimal.Zero)
	within(t, marginal, cost.DivRound(delta, quotePrecision), dec("0.001"))
}

func TestBuyCostExceedsFlatApproximationForLargeTrades(t *testing.T) {
	p, _ := BuildParams(testPool())

	delta := dec("100")
	cost, ok := p.BuyCost(delta, decimal.Zero)
	require.True(t, ok)

	marginal, _ := p.MarginalBuyPrice(decimal.Zero)
	flat := marginal.Mul(delta)
	assert.True(t, cost.GreaterThan(flat), "cost %s flat %s", cost.String(), flat.String())

	// Cost is convex in trade size.
	cost2, ok := p.BuyCost(dec("200"), decimal.Zero)
	require.True(t, ok)
	assert.True(t, cost2.GreaterThan(cost.Mul(dec("2"))))
}

func TestBuyCostSegmentsCompose(t *testing.T) {
	p, _ := BuildParams(testPool())

	// Buying 100 then 100 more must cost the same as buying 200 at once.
	first, ok := p.BuyCost(dec("100"), decimal.Zero)
	require.True(t, ok)
	second, ok := p.BuyCost(dec("100"), dec("100"))
	require.True(t, ok)
	whole, ok := p.BuyCost(dec("200"), decimal.Zero)
	require.True(t, ok)

	within(t, whole, first.Add(second), dec("0.0000001"))
}

func TestBuyCostRefusesDrainingPool(t *testing.T) {
	p, _ := BuildParams(testPool())

	_, ok := p.BuyCost(dec("1000"), decimal.Zero)
	assert.False(t, ok)
	_, ok = p.BuyCost(dec("500"), dec("500"))
	assert.False(t, ok)
	_, ok = p.BuyCost(dec("-1"), decimal.Zero)
	assert.False(t, ok)
}

func TestSellProceeds(t *testing.T) {
	p, _ := BuildParams(testPool())

	delta := dec("0.001")
	proceeds, ok := p.SellProceeds(delta, decimal.Zero)
	require.True(t, ok)
	marginal, _ := p.MarginalSellPrice(decimal.Zero)
	within(t, marginal, proceeds.DivRound(delta, quotePrecision), dec("0.001"))

	// Large sells realize less than the flat approximation.
	big := dec("100")
	proceeds, ok = p.SellProceeds(big, decimal.Zero)
	require.True(t, ok)
	assert.True(t, proceeds.LessThan(marginal.Mul(big)))

	// Segments compose.
	first, _ := p.SellProceeds(dec("50"), decimal.Zero)
	second, _ := p.SellProceeds(dec("50"), dec("50"))
	whole, _ := p.SellProceeds(dec("100"), decimal.Zero)
	within(t, whole, first.Add(second), dec("0.0000001"))
}

func TestSqrt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4", "2"},
		{"2", "1.41421356237309504880168872"},
		{"1000000", "1000"},
		{"0.25", "0.5"},
	}
	for _, tt := range tests {
		within(t, dec(tt.want), sqrt(dec(tt.in)), dec("0.0000000001"))
	}
	assert.True(t, sqrt(decimal.Zero).IsZero())
}
