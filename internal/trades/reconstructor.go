// Package trades derives executed trades for a currency pair from a window
// of historical transactions and their metadata. Open offers say what an
// account wanted; only metadata says what actually moved.
package trades

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/xrplmarketd/internal/domain"
	"github.com/ledgerline/xrplmarketd/internal/ledger"
)

// displayDigits is the significant-figure rendering applied to reconstructed
// prices and amounts. Display rounding only: ratios are computed at full
// precision first.
const displayDigits = 6

// IssuerAccount picks the account whose transaction history is a complete
// superset of all trades in the pair: the issuer of whichever asset is not
// native, preferring the base issuer when both sides are issued. Every
// transfer of an issued asset posts a balance-change entry against the
// issuer's ledger line, regardless of which account submitted it.
func IssuerAccount(base, quote domain.Asset) string {
	if !base.IsNative() {
		return base.Issuer
	}
	return quote.Issuer
}

// Reconstruct scans a transaction window (newest first) and returns the
// trades that actually executed in the base/quote pair, newest first.
func Reconstruct(window []ledger.TxRecord, base, quote domain.Asset) []domain.Trade {
	issuer := IssuerAccount(base, quote)

	var out []domain.Trade
	for _, rec := range window {
		if t, ok := reconstructOne(rec, base, quote, issuer); ok {
			out = append(out, t)
		}
	}
	return out
}

func reconstructOne(rec ledger.TxRecord, base, quote domain.Asset, issuer string) (domain.Trade, bool) {
	if rec.Tx.TransactionType != ledger.TxTypeOfferCreate {
		return domain.Trade{}, false
	}
	if rec.Meta.TransactionResult != ledger.TesSuccess {
		return domain.Trade{}, false
	}

	fee := feeValue(rec.Tx.Fee)

	baseTotal := decimal.Zero
	quoteTotal := decimal.Zero
	for _, ch := range ledger.ParseBalanceChanges(rec.Meta) {
		// The issuer's entries mirror every counterparty's trust-line
		// movement; counting them would double the totals.
		if ch.Account == issuer {
			continue
		}

		delta := ch.Delta
		if ch.Asset.IsNative() && ch.Account == rec.Tx.Account {
			// The submitter's native delta carries the network fee; back
			// it out so the fee is not counted as traded volume.
			delta = delta.Add(fee)
		}
		if delta.Sign() <= 0 {
			continue
		}

		switch {
		case ch.Asset.Equals(base):
			baseTotal = baseTotal.Add(delta)
		case ch.Asset.Equals(quote):
			quoteTotal = quoteTotal.Add(delta)
		}
	}

	// Nothing moved in one of the two assets: the offer only rested on the
	// book, which is not a trade.
	if baseTotal.Sign() <= 0 || quoteTotal.Sign() <= 0 {
		return domain.Trade{}, false
	}

	return domain.Trade{
		Side:        tradeSide(rec.Tx, base),
		Price:       RoundSignificant(quoteTotal.DivRound(baseTotal, 28), displayDigits),
		BaseAmount:  RoundSignificant(baseTotal, displayDigits),
		QuoteAmount: RoundSignificant(quoteTotal, displayDigits),
		Account:     rec.Tx.Account,
		Time:        ledger.TimeFromRippleEpoch(rec.Date),
		Hash:        rec.Hash,
	}, true
}

// tradeSide classifies by the declared taker-pays asset of the triggering
// offer: the submitter acquiring base is a buy of base. Classification from
// declared amounts rather than executed direction matches the ledger's
// reporting convention for offer crossings.
func tradeSide(tx ledger.Transaction, base domain.Asset) domain.TradeSide {
	if tx.TakerPays != nil {
		if asset, err := rawAmountAsset(*tx.TakerPays); err == nil && asset.Equals(base) {
			return domain.TradeSideBuy
		}
	}
	return domain.TradeSideSell
}

func rawAmountAsset(r ledger.RawAmount) (domain.Asset, error) {
	if r.IsNative() {
		return domain.NativeAsset(), nil
	}
	return ledger.DecodeAsset(r.Currency, r.Issuer)
}

// feeValue converts a drops fee string to display units, zero on any parse
// failure.
func feeValue(fee string) decimal.Decimal {
	if fee == "" {
		return decimal.Zero
	}
	drops, err := decimal.NewFromString(fee)
	if err != nil {
		return decimal.Zero
	}
	return drops.Div(ledger.DropsPerNative)
}

// RoundSignificant rounds a decimal to n significant figures.
func RoundSignificant(d decimal.Decimal, n int32) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	intDigits := int32(d.NumDigits()) + d.Exponent()
	return d.Round(n - intDigits)
}
