package handler

import (
	"log/slog"
	"net/http"
)

// GetAMMInfo returns the AMM pool state for a pair. A pair without a pool
// gets a well-formed response with exists=false, not an error.
// GET /api/amm?base=USD:r...&quote=XRP
func (h *MarketHandler) GetAMMInfo(w http.ResponseWriter, r *http.Request) {
	pair, err := parsePair(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pair: "+err.Error())
		return
	}

	info, err := h.markets.GetAMMInfo(r.Context(), pair)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get amm info failed",
			slog.String("pair", pair.String()),
			slog.String("error", err.Error()),
		)
		writeError(w, errStatus(err), "failed to get amm info")
		return
	}

	writeJSON(w, http.StatusOK, info)
}
