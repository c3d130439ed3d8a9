package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ledgerline/xrplmarketd/internal/domain"
	"github.com/ledgerline/xrplmarketd/internal/service"
)

// MarketService defines the methods the market handler requires from the
// service layer. It is declared locally so the handler package does not
// depend on the concrete service implementation.
type MarketService interface {
	GetOrderBook(ctx context.Context, pair domain.Pair, opts service.BookOptions) (domain.OrderBook, error)
	GetAMMInfo(ctx context.Context, pair domain.Pair) (domain.AMMInfo, error)
	GetTrades(ctx context.Context, pair domain.Pair) ([]domain.Trade, error)
	GetMarketData(ctx context.Context, pair domain.Pair, opts service.BookOptions) (domain.MarketData, error)
}

// MarketHandler serves market-data HTTP endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logHandler(logger, "market"),
	}
}

// GetMarketData returns the composed market view: order book, AMM pool, and
// recent trades. Pieces that cannot be computed come back null.
// GET /api/market?base=USD:r...&quote=XRP&limit=25
func (h *MarketHandler) GetMarketData(w http.ResponseWriter, r *http.Request) {
	pair, err := parsePair(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pair: "+err.Error())
		return
	}

	data, err := h.markets.GetMarketData(r.Context(), pair, parseBookOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get market data failed",
			slog.String("pair", pair.String()),
			slog.String("error", err.Error()),
		)
		writeError(w, errStatus(err), "failed to get market data")
		return
	}

	writeJSON(w, http.StatusOK, data)
}
