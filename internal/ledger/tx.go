package ledger

// TxTypeOfferCreate is the transaction type that places an offer on the DEX.
const TxTypeOfferCreate = "OfferCreate"

// Transaction is the subset of transaction fields trade reconstruction
// needs.
type Transaction struct {
	TransactionType string     `json:"TransactionType"`
	Account         string     `json:"Account"`
	Fee             string     `json:"Fee,omitempty"`
	Sequence        uint32     `json:"Sequence,omitempty"`
	TakerGets       *RawAmount `json:"TakerGets,omitempty"`
	TakerPays       *RawAmount `json:"TakerPays,omitempty"`
}

// TxRecord is one row of an account's transaction history: the transaction,
// its metadata, the identifying hash, and the ledger close time (ledger
// epoch seconds).
type TxRecord struct {
	Tx        Transaction `json:"tx"`
	Meta      TxMeta      `json:"meta"`
	Hash      string      `json:"hash"`
	Date      int64       `json:"date"`
	Validated bool        `json:"validated"`
}
