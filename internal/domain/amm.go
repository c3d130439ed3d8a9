package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AMMPool is a snapshot of an automated-market-maker pool's reserves for one
// orientation of a pair. If Exists is false, either reserve is zero, or
// either side is frozen, the pool supplies no valid quote and every pricing
// function must refuse to compute.
type AMMPool struct {
	Exists       bool
	BaseReserve  decimal.Decimal
	QuoteReserve decimal.Decimal

	// FeeRate is the trading fee as a fraction in [0, 1).
	FeeRate decimal.Decimal

	BaseFrozen  bool
	QuoteFrozen bool
}

// AuctionSlot is the discounted-fee slot sold by the AMM.
type AuctionSlot struct {
	Account       string    `json:"account"`
	DiscountedFee int       `json:"discountedFee"`
	Price         Amount    `json:"price"`
	Expiration    time.Time `json:"expiration"`
	AuthAccounts  []string  `json:"authAccounts,omitempty"`
}

// VoteSlot is a single liquidity provider's fee vote.
type VoteSlot struct {
	Account    string `json:"account"`
	TradingFee int    `json:"tradingFee"`
	VoteWeight int    `json:"voteWeight"`
}

// AMMInfo is the normalized pool description returned to consumers. When no
// pool exists for the pair, Exists is false and all amounts are zero rather
// than an error payload.
type AMMInfo struct {
	Exists     bool            `json:"exists"`
	Account    string          `json:"account,omitempty"`
	Asset      Amount          `json:"asset"`
	Asset2     Amount          `json:"asset2"`
	LPToken    Amount          `json:"lpToken"`
	TradingFee decimal.Decimal `json:"tradingFee"`
	SpotPrice  decimal.Decimal `json:"spotPrice"`

	AssetFrozen  bool `json:"assetFrozen,omitempty"`
	Asset2Frozen bool `json:"asset2Frozen,omitempty"`

	AuctionSlot *AuctionSlot `json:"auctionSlot,omitempty"`
	VoteSlots   []VoteSlot   `json:"voteSlots,omitempty"`
}
