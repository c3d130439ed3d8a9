package domain

import "github.com/shopspring/decimal"

// BalanceChange is one account's realized delta in one asset, derived from
// transaction metadata. For trust-line entries the asset's issuer is the
// counterparty of the line.
type BalanceChange struct {
	Account string
	Asset   Asset
	Delta   decimal.Decimal
}
