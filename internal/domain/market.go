package domain

// MarketData is the composed market view for a pair. The three pieces are
// computed independently: a failed sub-fetch leaves its field nil while the
// others are still returned.
type MarketData struct {
	Pair   Pair       `json:"pair"`
	Book   *OrderBook `json:"book"`
	AMM    *AMMInfo   `json:"amm"`
	Trades []Trade    `json:"trades"`
}
