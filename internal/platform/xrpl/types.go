package xrpl

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/xrplmarketd/internal/domain"
	"github.com/ledgerline/xrplmarketd/internal/ledger"
)

// rpcRequest is the JSON-RPC envelope the node expects over HTTP.
type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params,omitempty"`
}

// rpcEnvelope wraps every HTTP response.
type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// rpcStatus is the status portion embedded in every result.
type rpcStatus struct {
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// AssetRef names an asset in request parameters: ledger currency form plus
// issuer for issued assets.
type AssetRef struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer,omitempty"`
}

// AssetParam converts a domain asset to its request form. Non-standard
// currency codes are hex-encoded to the ledger field width.
func AssetParam(a domain.Asset) (AssetRef, error) {
	code, err := ledger.ToLedgerCurrency(a.Currency)
	if err != nil {
		return AssetRef{}, err
	}
	return AssetRef{Currency: code, Issuer: a.Issuer}, nil
}

// RawOffer is one row of a book_offers response.
type RawOffer struct {
	Account   string           `json:"Account"`
	Flags     uint32           `json:"Flags"`
	Sequence  uint32           `json:"Sequence"`
	TakerGets ledger.RawAmount `json:"TakerGets"`
	TakerPays ledger.RawAmount `json:"TakerPays"`

	Expiration *int64 `json:"Expiration,omitempty"`
	DomainID   string `json:"DomainID,omitempty"`

	// quality and the funded amounts are appended by the reporting layer,
	// hence the snake_case keys.
	Quality         string            `json:"quality,omitempty"`
	OwnerFunds      string            `json:"owner_funds,omitempty"`
	TakerGetsFunded *ledger.RawAmount `json:"taker_gets_funded,omitempty"`
	TakerPaysFunded *ledger.RawAmount `json:"taker_pays_funded,omitempty"`
}

// Decode converts a wire offer into a domain offer.
func (r RawOffer) Decode() (domain.Offer, error) {
	gets, err := r.TakerGets.Decode()
	if err != nil {
		return domain.Offer{}, err
	}
	pays, err := r.TakerPays.Decode()
	if err != nil {
		return domain.Offer{}, err
	}

	o := domain.Offer{
		Account:   r.Account,
		TakerGets: gets,
		TakerPays: pays,
		Sequence:  r.Sequence,
		Flags:     r.Flags,
		DomainID:  r.DomainID,
	}

	if r.Quality != "" {
		if q, err := decimal.NewFromString(r.Quality); err == nil {
			o.Quality = q
		}
	}
	if r.Expiration != nil {
		t := ledger.TimeFromRippleEpoch(*r.Expiration)
		o.Expiration = &t
	}
	if r.TakerGetsFunded != nil {
		if funded, err := r.TakerGetsFunded.Decode(); err == nil {
			o.TakerGetsFunded = &funded
		}
	}
	if r.TakerPaysFunded != nil {
		if funded, err := r.TakerPaysFunded.Decode(); err == nil {
			o.TakerPaysFunded = &funded
		}
	}

	return o, nil
}

// bookOffersResult is the result payload of book_offers.
type bookOffersResult struct {
	rpcStatus
	Offers []RawOffer `json:"offers"`
}

// RawAuctionSlot is the auction_slot object of amm_info.
type RawAuctionSlot struct {
	Account       string           `json:"account"`
	DiscountedFee int              `json:"discounted_fee"`
	Expiration    string           `json:"expiration"`
	Price         ledger.RawAmount `json:"price"`
	AuthAccounts  []struct {
		AuthAccount struct {
			Account string `json:"account"`
		} `json:"auth_account"`
	} `json:"auth_accounts,omitempty"`
	TimeInterval int `json:"time_interval"`
}

// RawVoteSlot is one vote_slots entry of amm_info.
type RawVoteSlot struct {
	Account    string `json:"account"`
	TradingFee int    `json:"trading_fee"`
	VoteWeight int    `json:"vote_weight"`
}

// RawAMM is the amm object of an amm_info response. trading_fee is in units
// of 1/100000 (1000 = 1%).
type RawAMM struct {
	Account      string           `json:"account"`
	Amount       ledger.RawAmount `json:"amount"`
	Amount2      ledger.RawAmount `json:"amount2"`
	AssetFrozen  bool             `json:"asset_frozen,omitempty"`
	Asset2Frozen bool             `json:"asset2_frozen,omitempty"`
	AuctionSlot  *RawAuctionSlot  `json:"auction_slot,omitempty"`
	LPToken      ledger.RawAmount `json:"lp_token"`
	TradingFee   int              `json:"trading_fee"`
	VoteSlots    []RawVoteSlot    `json:"vote_slots,omitempty"`
}

// AMMSnapshot is an amm_info result normalized to "pool found or not".
type AMMSnapshot struct {
	Exists bool
	AMM    RawAMM
}

// ammInfoResult is the result payload of amm_info.
type ammInfoResult struct {
	rpcStatus
	AMM RawAMM `json:"amm"`
}

// accountTxRow is one transactions[] entry of account_tx. The identifying
// hash and close date live inside the tx object on the wire.
type accountTxRow struct {
	Tx        json.RawMessage `json:"tx"`
	Meta      ledger.TxMeta   `json:"meta"`
	Validated bool            `json:"validated"`
}

// accountTxResult is the result payload of account_tx.
type accountTxResult struct {
	rpcStatus
	Account      string         `json:"account"`
	Transactions []accountTxRow `json:"transactions"`
}

// txIdentity extracts the hash and close date embedded in a tx object.
type txIdentity struct {
	Hash string `json:"hash"`
	Date int64  `json:"date"`
}

// serverInfoResult is the subset of server_info this service reads.
type serverInfoResult struct {
	rpcStatus
	Info struct {
		BuildVersion    string `json:"build_version"`
		NetworkID       int    `json:"network_id"`
		ValidatedLedger struct {
			Seq       int64 `json:"seq"`
			CloseTime int64 `json:"close_time"`
		} `json:"validated_ledger"`
	} `json:"info"`
}

// NetworkInfo summarizes the connected node.
type NetworkInfo struct {
	BuildVersion   string
	NetworkID      int
	ValidatedSeq   int64
	LastCloseEpoch int64
}
