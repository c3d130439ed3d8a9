package ledger

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

// TesSuccess is the result code of a fully applied transaction.
const TesSuccess = "tesSUCCESS"

// TxMeta is transaction metadata as reported by the ledger.
type TxMeta struct {
	AffectedNodes     []AffectedNode `json:"AffectedNodes"`
	TransactionIndex  int            `json:"TransactionIndex"`
	TransactionResult string         `json:"TransactionResult"`
}

// AffectedNode is one ledger entry touched by a transaction. Exactly one of
// the three fields is set.
type AffectedNode struct {
	Created  *NodeData `json:"CreatedNode,omitempty"`
	Modified *NodeData `json:"ModifiedNode,omitempty"`
	Deleted  *NodeData `json:"DeletedNode,omitempty"`
}

// NodeData carries the entry type and the before/after field images.
type NodeData struct {
	LedgerEntryType string          `json:"LedgerEntryType"`
	LedgerIndex     string          `json:"LedgerIndex"`
	FinalFields     json.RawMessage `json:"FinalFields,omitempty"`
	NewFields       json.RawMessage `json:"NewFields,omitempty"`
	PreviousFields  json.RawMessage `json:"PreviousFields,omitempty"`
}

// accountRootFields is the subset of AccountRoot fields balance extraction
// needs. Balance is a drops string.
type accountRootFields struct {
	Account string `json:"Account"`
	Balance string `json:"Balance"`
}

// rippleStateFields is the subset of RippleState fields balance extraction
// needs. Balance.value is signed from the low account's perspective.
type rippleStateFields struct {
	Balance   *rawIssuedAmount `json:"Balance"`
	LowLimit  *rawIssuedAmount `json:"LowLimit"`
	HighLimit *rawIssuedAmount `json:"HighLimit"`
}

// ParseBalanceChanges derives every realized per-account balance delta from
// transaction metadata. This reads executed state transitions, not declared
// transaction amounts: offers can rest partially filled or not execute at
// all, and only the metadata records what actually moved.
func ParseBalanceChanges(meta TxMeta) []domain.BalanceChange {
	var changes []domain.BalanceChange

	for _, an := range meta.AffectedNodes {
		node, created := an.node()
		if node == nil {
			continue
		}
		switch node.LedgerEntryType {
		case "AccountRoot":
			if ch, ok := accountRootChange(node, created); ok {
				changes = append(changes, ch)
			}
		case "RippleState":
			changes = append(changes, rippleStateChanges(node, created)...)
		}
	}

	return changes
}

// node returns the populated node image and whether the entry was created by
// this transaction.
func (an AffectedNode) node() (*NodeData, bool) {
	switch {
	case an.Created != nil:
		return an.Created, true
	case an.Modified != nil:
		return an.Modified, false
	case an.Deleted != nil:
		return an.Deleted, false
	default:
		return nil, false
	}
}

func accountRootChange(node *NodeData, created bool) (domain.BalanceChange, bool) {
	var final accountRootFields
	if err := unmarshalFields(node.FinalFields, node.NewFields, &final); err != nil || final.Balance == "" {
		return domain.BalanceChange{}, false
	}

	finalBal, err := decimal.NewFromString(final.Balance)
	if err != nil {
		return domain.BalanceChange{}, false
	}

	prevBal := decimal.Zero
	if !created {
		var prev accountRootFields
		if err := json.Unmarshal(node.PreviousFields, &prev); err != nil || prev.Balance == "" {
			// No Balance in PreviousFields means the native balance did
			// not change in this transaction.
			return domain.BalanceChange{}, false
		}
		prevBal, err = decimal.NewFromString(prev.Balance)
		if err != nil {
			return domain.BalanceChange{}, false
		}
	}

	delta := finalBal.Sub(prevBal).Div(DropsPerNative)
	if delta.IsZero() {
		return domain.BalanceChange{}, false
	}
	return domain.BalanceChange{
		Account: final.Account,
		Asset:   domain.NativeAsset(),
		Delta:   delta,
	}, true
}

// rippleStateChanges attributes a trust-line balance movement to both ends of
// the line. The stored balance is signed from the low account's perspective,
// so the high account's delta is the negation.
func rippleStateChanges(node *NodeData, created bool) []domain.BalanceChange {
	var final rippleStateFields
	if err := unmarshalFields(node.FinalFields, node.NewFields, &final); err != nil {
		return nil
	}
	if final.Balance == nil || final.LowLimit == nil || final.HighLimit == nil {
		return nil
	}

	finalBal, err := decimal.NewFromString(final.Balance.Value)
	if err != nil {
		return nil
	}

	prevBal := decimal.Zero
	if !created {
		var prev rippleStateFields
		if err := json.Unmarshal(node.PreviousFields, &prev); err != nil || prev.Balance == nil {
			return nil
		}
		prevBal, err = decimal.NewFromString(prev.Balance.Value)
		if err != nil {
			return nil
		}
	}

	delta := finalBal.Sub(prevBal)
	if delta.IsZero() {
		return nil
	}

	currency := DecodeCurrency(final.Balance.Currency)
	low := final.LowLimit.Issuer
	high := final.HighLimit.Issuer

	return []domain.BalanceChange{
		{
			Account: low,
			Asset:   domain.Asset{Currency: currency, Issuer: high},
			Delta:   delta,
		},
		{
			Account: high,
			Asset:   domain.Asset{Currency: currency, Issuer: low},
			Delta:   delta.Neg(),
		},
	}
}

// unmarshalFields decodes FinalFields, falling back to NewFields for created
// entries.
func unmarshalFields(finalFields, newFields json.RawMessage, v any) error {
	if len(finalFields) > 0 {
		return json.Unmarshal(finalFields, v)
	}
	return json.Unmarshal(newFields, v)
}
