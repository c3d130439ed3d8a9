package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offer ledger-entry flags.
const (
	// OfferFlagPassive marks an offer that does not consume offers at the
	// same exchange rate when placed.
	OfferFlagPassive uint32 = 0x00010000

	// OfferFlagSell marks an offer placed with the sell flag: the creator
	// wants to dispose of the full TakerGets amount rather than acquire
	// exactly TakerPays.
	OfferFlagSell uint32 = 0x00020000

	// OfferFlagHybrid marks a permissioned-domain offer that is also listed
	// on the open order book.
	OfferFlagHybrid uint32 = 0x00100000
)

// Offer is a snapshot of an open offer on the ledger's decentralized
// exchange. Offers are created and destroyed entirely by the ledger; this
// system only observes them.
type Offer struct {
	Account   string
	TakerGets Amount
	TakerPays Amount
	Sequence  uint32
	Flags     uint32

	// Quality is the ledger-reported TakerPays/TakerGets ratio, zero when
	// the upstream did not supply one.
	Quality decimal.Decimal

	// Expiration is nil for offers without an expiration time.
	Expiration *time.Time

	// DomainID is the hex permissioned-domain identifier, empty for open
	// order-book offers.
	DomainID string

	// Funded amounts override the nominal TakerGets/TakerPays when the
	// creator can only partially cover the offer. Nil when fully funded.
	TakerGetsFunded *Amount
	TakerPaysFunded *Amount
}

// IsSell reports whether the offer was placed with the sell flag.
func (o Offer) IsSell() bool {
	return o.Flags&OfferFlagSell != 0
}

// IsHybrid reports whether a domain-scoped offer is also on the open book.
func (o Offer) IsHybrid() bool {
	return o.Flags&OfferFlagHybrid != 0
}

// Expired reports whether the offer is expired as of the given close time.
func (o Offer) Expired(closeTime time.Time) bool {
	return o.Expiration != nil && !o.Expiration.After(closeTime)
}

// EffectiveGets returns the funded TakerGets when present, else the nominal.
func (o Offer) EffectiveGets() Amount {
	if o.TakerGetsFunded != nil {
		return *o.TakerGetsFunded
	}
	return o.TakerGets
}

// EffectivePays returns the funded TakerPays when present, else the nominal.
func (o Offer) EffectivePays() Amount {
	if o.TakerPaysFunded != nil {
		return *o.TakerPaysFunded
	}
	return o.TakerPays
}
