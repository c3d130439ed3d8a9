package ledger

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

func mustMeta(t *testing.T, raw string) TxMeta {
	t.Helper()
	var meta TxMeta
	require.NoError(t, json.Unmarshal([]byte(raw), &meta))
	return meta
}

func findChange(changes []domain.BalanceChange, account string, asset domain.Asset) (domain.BalanceChange, bool) {
	for _, ch := range changes {
		if ch.Account == account && ch.Asset.Equals(asset) {
			return ch, true
		}
	}
	return domain.BalanceChange{}, false
}

func TestParseBalanceChangesAccountRoot(t *testing.T) {
	meta := mustMeta(t, `{
		"TransactionResult": "tesSUCCESS",
		"AffectedNodes": [
			{"ModifiedNode": {
				"LedgerEntryType": "AccountRoot",
				"FinalFields": {"Account": "rAlice", "Balance": "1001000000"},
				"PreviousFields": {"Balance": "1000000000"}
			}},
			{"ModifiedNode": {
				"LedgerEntryType": "AccountRoot",
				"FinalFields": {"Account": "rBob", "Balance": "7000000"},
				"PreviousFields": {"Sequence": 12}
			}},
			{"CreatedNode": {
				"LedgerEntryType": "AccountRoot",
				"NewFields": {"Account": "rCarol", "Balance": "5000000"}
			}}
		]
	}`)

	changes := ParseBalanceChanges(meta)
	require.Len(t, changes, 2)

	alice, ok := findChange(changes, "rAlice", domain.NativeAsset())
	require.True(t, ok)
	assert.True(t, alice.Delta.Equal(decimal.NewFromInt(1)), alice.Delta.String())

	// rBob's Balance did not appear in PreviousFields, so it did not change.
	_, ok = findChange(changes, "rBob", domain.NativeAsset())
	assert.False(t, ok)

	carol, ok := findChange(changes, "rCarol", domain.NativeAsset())
	require.True(t, ok)
	assert.True(t, carol.Delta.Equal(decimal.NewFromInt(5)), carol.Delta.String())
}

func TestParseBalanceChangesRippleState(t *testing.T) {
	meta := mustMeta(t, `{
		"TransactionResult": "tesSUCCESS",
		"AffectedNodes": [
			{"ModifiedNode": {
				"LedgerEntryType": "RippleState",
				"FinalFields": {
					"Balance":   {"currency": "USD", "issuer": "rrrrrrrrrrrrrrrrrrrrBZbvji", "value": "110"},
					"LowLimit":  {"currency": "USD", "issuer": "rLow", "value": "1000"},
					"HighLimit": {"currency": "USD", "issuer": "rHigh", "value": "0"}
				},
				"PreviousFields": {
					"Balance": {"currency": "USD", "issuer": "rrrrrrrrrrrrrrrrrrrrBZbvji", "value": "100"}
				}
			}}
		]
	}`)

	changes := ParseBalanceChanges(meta)
	require.Len(t, changes, 2)

	// The stored balance is from the low account's perspective: +10 means
	// the low side gained 10 USD issued by the high side.
	low, ok := findChange(changes, "rLow", domain.Asset{Currency: "USD", Issuer: "rHigh"})
	require.True(t, ok)
	assert.True(t, low.Delta.Equal(decimal.NewFromInt(10)), low.Delta.String())

	high, ok := findChange(changes, "rHigh", domain.Asset{Currency: "USD", Issuer: "rLow"})
	require.True(t, ok)
	assert.True(t, high.Delta.Equal(decimal.NewFromInt(-10)), high.Delta.String())
}

func TestParseBalanceChangesIgnoresOtherEntries(t *testing.T) {
	meta := mustMeta(t, `{
		"TransactionResult": "tesSUCCESS",
		"AffectedNodes": [
			{"DeletedNode": {
				"LedgerEntryType": "Offer",
				"FinalFields": {"Account": "rMaker"}
			}},
			{"ModifiedNode": {
				"LedgerEntryType": "DirectoryNode",
				"FinalFields": {}
			}}
		]
	}`)

	assert.Empty(t, ParseBalanceChanges(meta))
}

func TestParseBalanceChangesZeroDeltaDropped(t *testing.T) {
	meta := mustMeta(t, `{
		"TransactionResult": "tesSUCCESS",
		"AffectedNodes": [
			{"ModifiedNode": {
				"LedgerEntryType": "AccountRoot",
				"FinalFields": {"Account": "rAlice", "Balance": "1000000000"},
				"PreviousFields": {"Balance": "1000000000"}
			}}
		]
	}`)

	assert.Empty(t, ParseBalanceChanges(meta))
}
