package handler

import (
	"log/slog"
	"net/http"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

// tradesResponse wraps the trade history output with the pair it belongs to.
type tradesResponse struct {
	Base   domain.Asset   `json:"base"`
	Quote  domain.Asset   `json:"quote"`
	Trades []domain.Trade `json:"trades"`
}

// GetTrades returns the reconstructed recent trade history for a pair,
// newest first.
// GET /api/trades?base=USD:r...&quote=XRP
func (h *MarketHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	pair, err := parsePair(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pair: "+err.Error())
		return
	}

	list, err := h.markets.GetTrades(r.Context(), pair)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get trades failed",
			slog.String("pair", pair.String()),
			slog.String("error", err.Error()),
		)
		writeError(w, errStatus(err), "failed to get trades")
		return
	}
	if list == nil {
		list = []domain.Trade{}
	}

	writeJSON(w, http.StatusOK, tradesResponse{
		Base:   pair.Base,
		Quote:  pair.Quote,
		Trades: list,
	})
}
