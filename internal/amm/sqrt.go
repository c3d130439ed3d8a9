package amm

import (
	"math"

	"github.com/shopspring/decimal"
)

// sqrtIterations is enough Newton steps to exceed quotePrecision digits
// starting from a float64 seed (precision roughly doubles per step).
const sqrtIterations = 6

// sqrt computes the square root of a non-negative decimal at quotePrecision
// digits. The decimal library has no root operation, so this runs Newton's
// method seeded from the float64 root.
func sqrt(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}

	seed, _ := d.Float64()
	var x decimal.Decimal
	if seed > 0 && !math.IsInf(seed, 0) {
		x = decimal.NewFromFloat(math.Sqrt(seed))
	} else {
		x = d.DivRound(two, quotePrecision)
	}
	if x.Sign() <= 0 {
		x = decimal.New(1, 0)
	}

	for i := 0; i < sqrtIterations; i++ {
		x = x.Add(d.DivRound(x, quotePrecision)).DivRound(two, quotePrecision)
	}
	return x
}
