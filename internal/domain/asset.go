package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NativeCurrency is the ledger's base settlement currency. It has no issuer.
const NativeCurrency = "XRP"

// Asset identifies a tradable asset on the ledger: the native currency, or an
// issued currency qualified by its issuing account.
type Asset struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer,omitempty"`
}

// NativeAsset returns the native-currency asset.
func NativeAsset() Asset {
	return Asset{Currency: NativeCurrency}
}

// IsNative reports whether the asset is the ledger's native currency.
func (a Asset) IsNative() bool {
	return a.Currency == NativeCurrency && a.Issuer == ""
}

// Equals reports whether two assets identify the same currency. The native
// asset carries no issuer on either side; issued assets must match on both
// currency code and issuer.
func (a Asset) Equals(b Asset) bool {
	return a.Currency == b.Currency && a.Issuer == b.Issuer
}

// Validate enforces the issuer pairing invariant: the native asset must not
// carry an issuer and an issued asset must carry one.
func (a Asset) Validate() error {
	if a.Currency == "" {
		return fmt.Errorf("empty currency code: %w", ErrInvalidAsset)
	}
	if a.Currency == NativeCurrency {
		if a.Issuer != "" {
			return fmt.Errorf("native asset with issuer %q: %w", a.Issuer, ErrInvalidAsset)
		}
		return nil
	}
	if a.Issuer == "" {
		return fmt.Errorf("issued asset %q without issuer: %w", a.Currency, ErrInvalidAsset)
	}
	return nil
}

// String renders "XRP" or "CODE:issuer".
func (a Asset) String() string {
	if a.Issuer == "" {
		return a.Currency
	}
	return a.Currency + ":" + a.Issuer
}

// ParseAsset parses "XRP" or "CODE:issuer" into an Asset and validates it.
func ParseAsset(s string) (Asset, error) {
	var a Asset
	if i := strings.IndexByte(s, ':'); i >= 0 {
		a = Asset{Currency: s[:i], Issuer: s[i+1:]}
	} else {
		a = Asset{Currency: s}
	}
	if err := a.Validate(); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// Amount is a quantity of a specific asset. Value is arbitrary-precision:
// ledger amounts carry up to 16 significant digits and fee math compounds
// binary-float rounding error.
type Amount struct {
	Asset Asset           `json:"asset"`
	Value decimal.Decimal `json:"value"`
}

// IsNative reports whether the amount is denominated in the native currency.
func (m Amount) IsNative() bool {
	return m.Asset.IsNative()
}

// Pair is an ordered (base, quote) currency pair.
type Pair struct {
	Base  Asset `json:"base"`
	Quote Asset `json:"quote"`
}

// Validate checks both legs and rejects a pair trading an asset against itself.
func (p Pair) Validate() error {
	if err := p.Base.Validate(); err != nil {
		return fmt.Errorf("base: %w", err)
	}
	if err := p.Quote.Validate(); err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	if p.Base.Equals(p.Quote) {
		return fmt.Errorf("base and quote are the same asset: %w", ErrInvalidAsset)
	}
	return nil
}

// String renders "BASE/QUOTE" with issuers where present.
func (p Pair) String() string {
	return p.Base.String() + "/" + p.Quote.String()
}
