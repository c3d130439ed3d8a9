// Package amm prices trades against a constant-product automated market
// maker. All functions are pure over a pool snapshot and use
// arbitrary-precision decimals throughout: reserves and fee rates routinely
// carry 15+ significant digits, and binary floating point corrupts the
// constant-product invariant under repeated divide/multiply/sqrt chains.
package amm

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

// quotePrecision is the number of decimal digits kept by intermediate
// divisions and roots.
const quotePrecision = 28

var (
	one = decimal.New(1, 0)
	two = decimal.New(2, 0)
)

// Params are the validated constant-product parameters of a pool oriented
// for a specific pair: B base reserve, Q quote reserve, F the trading fee as
// a fraction of the input side.
type Params struct {
	B decimal.Decimal
	Q decimal.Decimal
	F decimal.Decimal
}

// BuildParams validates a pool snapshot. It reports false when the pool does
// not exist, either reserve is zero, or either side is frozen: such a pool
// supplies no quote, and every pricing function must refuse to compute
// rather than divide by zero.
func BuildParams(pool domain.AMMPool) (Params, bool) {
	if !pool.Exists || pool.BaseFrozen || pool.QuoteFrozen {
		return Params{}, false
	}
	if pool.BaseReserve.Sign() <= 0 || pool.QuoteReserve.Sign() <= 0 {
		return Params{}, false
	}
	if pool.FeeRate.Sign() < 0 || pool.FeeRate.GreaterThanOrEqual(one) {
		return Params{}, false
	}
	return Params{B: pool.BaseReserve, Q: pool.QuoteReserve, F: pool.FeeRate}, true
}

// feeFactor is 1 - F, the fraction of the input side that reaches the pool.
func (p Params) feeFactor() decimal.Decimal {
	return one.Sub(p.F)
}

// SpotPrice is the quote cost of the next infinitesimal unit of base at the
// current pool state, fee included: Q / (B * (1-F)).
func (p Params) SpotPrice() decimal.Decimal {
	price, _ := p.MarginalBuyPrice(decimal.Zero)
	return price
}

// MarginalBuyPrice is the instantaneous quote cost of the next infinitesimal
// unit of base after `consumed` base has already been bought from the pool
// in the current evaluation:
//
//	Q*B / ((B - consumed)^2 * (1-F))
//
// The fee applies to the quote (input) side of a buy. Reports false when the
// pool cannot supply `consumed` base.
func (p Params) MarginalBuyPrice(consumed decimal.Decimal) (decimal.Decimal, bool) {
	remaining := p.B.Sub(consumed)
	if remaining.Sign() <= 0 {
		return decimal.Zero, false
	}
	denom := remaining.Mul(remaining).Mul(p.feeFactor())
	return p.Q.Mul(p.B).DivRound(denom, quotePrecision), true
}

// MarginalSellPrice is the instantaneous quote proceeds of the next
// infinitesimal unit of base sold after `consumed` base already sold:
//
//	Q*B*(1-F) / (B + consumed*(1-F))^2
//
// The fee applies to the base (input) side of a sell.
func (p Params) MarginalSellPrice(consumed decimal.Decimal) (decimal.Decimal, bool) {
	if consumed.Sign() < 0 {
		return decimal.Zero, false
	}
	g := p.feeFactor()
	grown := p.B.Add(consumed.Mul(g))
	denom := grown.Mul(grown)
	return p.Q.Mul(p.B).Mul(g).DivRound(denom, quotePrecision), true
}

// MaxBuyBeforePrice is the largest amount of base that can be bought before
// the marginal buy price exceeds priceLimit, solved by inverting the
// marginal-price formula:
//
//	max(0, B - sqrt(Q*B / (priceLimit*(1-F))))
//
// It returns exactly zero when the pool's current marginal price already
// exceeds the limit.
func (p Params) MaxBuyBeforePrice(priceLimit decimal.Decimal) decimal.Decimal {
	if priceLimit.Sign() <= 0 {
		return decimal.Zero
	}
	inner := p.Q.Mul(p.B).DivRound(priceLimit.Mul(p.feeFactor()), quotePrecision)
	consumed := p.B.Sub(sqrt(inner))
	if consumed.Sign() < 0 {
		return decimal.Zero
	}
	return consumed
}

// MaxSellBeforePrice is the largest amount of base that can be sold before
// the marginal sell price drops below priceLimit:
//
//	max(0, (sqrt(Q*B*(1-F)/priceLimit) - B) / (1-F))
func (p Params) MaxSellBeforePrice(priceLimit decimal.Decimal) decimal.Decimal {
	if priceLimit.Sign() <= 0 {
		return decimal.Zero
	}
	g := p.feeFactor()
	inner := p.Q.Mul(p.B).Mul(g).DivRound(priceLimit, quotePrecision)
	consumed := sqrt(inner).Sub(p.B).DivRound(g, quotePrecision)
	if consumed.Sign() < 0 {
		return decimal.Zero
	}
	return consumed
}

// BuyCost is the exact quote cost of buying `delta` more base after
// `consumed` has already been bought:
//
//	Q*B*delta / ((B - consumed - delta) * (B - consumed) * (1-F))
//
// This is the definite integral of the marginal price over
// [consumed, consumed+delta], not marginal price times delta: the price
// moves continuously as the trade consumes the pool, and for trade sizes
// comparable to the reserves the flat approximation understates slippage
// materially.
func (p Params) BuyCost(delta, consumed decimal.Decimal) (decimal.Decimal, bool) {
	if delta.Sign() < 0 || consumed.Sign() < 0 {
		return decimal.Zero, false
	}
	before := p.B.Sub(consumed)
	after := before.Sub(delta)
	if after.Sign() <= 0 {
		return decimal.Zero, false
	}
	denom := after.Mul(before).Mul(p.feeFactor())
	return p.Q.Mul(p.B).Mul(delta).DivRound(denom, quotePrecision), true
}

// SellProceeds is the exact quote proceeds of selling `delta` more base
// after `consumed` has already been sold:
//
//	Q*B*delta*(1-F) / ((B + consumed*(1-F)) * (B + (consumed+delta)*(1-F)))
func (p Params) SellProceeds(delta, consumed decimal.Decimal) (decimal.Decimal, bool) {
	if delta.Sign() < 0 || consumed.Sign() < 0 {
		return decimal.Zero, false
	}
	g := p.feeFactor()
	before := p.B.Add(consumed.Mul(g))
	after := p.B.Add(consumed.Add(delta).Mul(g))
	denom := before.Mul(after)
	return p.Q.Mul(p.B).Mul(delta).Mul(g).DivRound(denom, quotePrecision), true
}
