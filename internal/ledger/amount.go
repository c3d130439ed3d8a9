package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

// DropsPerNative converts the native currency's smallest unit to its display
// unit.
var DropsPerNative = decimal.NewFromInt(1_000_000)

// RawAmount is a ledger amount as it appears on the wire: either a bare
// numeric string (native currency, smallest unit) or an object carrying
// currency, issuer, and value.
type RawAmount struct {
	native bool
	drops  string

	Currency string
	Issuer   string
	Value    string
}

// rawIssuedAmount mirrors the issued-asset object shape.
type rawIssuedAmount struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
	Value    string `json:"value"`
}

// UnmarshalJSON accepts both wire shapes.
func (r *RawAmount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var drops string
		if err := json.Unmarshal(data, &drops); err != nil {
			return err
		}
		*r = RawAmount{native: true, drops: drops}
		return nil
	}

	var obj rawIssuedAmount
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = RawAmount{Currency: obj.Currency, Issuer: obj.Issuer, Value: obj.Value}
	return nil
}

// MarshalJSON renders the amount back in its wire shape.
func (r RawAmount) MarshalJSON() ([]byte, error) {
	if r.native {
		return json.Marshal(r.drops)
	}
	return json.Marshal(rawIssuedAmount{Currency: r.Currency, Issuer: r.Issuer, Value: r.Value})
}

// IsNative reports whether the amount arrived as a bare drops string.
func (r RawAmount) IsNative() bool {
	return r.native
}

// NativeRawAmount builds a native wire amount from a drops string.
func NativeRawAmount(drops string) RawAmount {
	return RawAmount{native: true, drops: drops}
}

// IssuedRawAmount builds an issued wire amount.
func IssuedRawAmount(currency, issuer, value string) RawAmount {
	return RawAmount{Currency: currency, Issuer: issuer, Value: value}
}

// Decode converts a wire amount into a domain Amount. Native amounts are
// converted from the smallest unit to display units; issued amounts keep
// their decimal value and have their currency code decoded.
func (r RawAmount) Decode() (domain.Amount, error) {
	if r.native {
		drops, err := decimal.NewFromString(r.drops)
		if err != nil {
			return domain.Amount{}, fmt.Errorf("ledger: parse drops %q: %w", r.drops, err)
		}
		return domain.Amount{
			Asset: domain.NativeAsset(),
			Value: drops.Div(DropsPerNative),
		}, nil
	}

	value, err := decimal.NewFromString(r.Value)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("ledger: parse amount value %q: %w", r.Value, err)
	}
	asset := domain.Asset{Currency: DecodeCurrency(r.Currency), Issuer: r.Issuer}
	if err := asset.Validate(); err != nil {
		return domain.Amount{}, err
	}
	return domain.Amount{Asset: asset, Value: value}, nil
}

// DecodeAsset converts a wire asset reference ({currency} or
// {currency, issuer}) into a domain Asset.
func DecodeAsset(currency, issuer string) (domain.Asset, error) {
	code := DecodeCurrency(currency)
	if code == domain.NativeCurrency && issuer == "" {
		return domain.NativeAsset(), nil
	}
	asset := domain.Asset{Currency: code, Issuer: issuer}
	if err := asset.Validate(); err != nil {
		return domain.Asset{}, err
	}
	return asset, nil
}
