package handler

import (
	"log/slog"
	"net/http"
)

// GetOrderBook returns the aggregated two-sided order book for a pair.
// GET /api/book?base=USD:r...&quote=XRP&limit=25&domain=<hash>
func (h *MarketHandler) GetOrderBook(w http.ResponseWriter, r *http.Request) {
	pair, err := parsePair(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pair: "+err.Error())
		return
	}

	book, err := h.markets.GetOrderBook(r.Context(), pair, parseBookOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get order book failed",
			slog.String("pair", pair.String()),
			slog.String("error", err.Error()),
		)
		writeError(w, errStatus(err), "failed to get order book")
		return
	}

	writeJSON(w, http.StatusOK, book)
}
