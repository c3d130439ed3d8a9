package app

import (
	"log/slog"

	"github.com/ledgerline/xrplmarketd/internal/cache/memory"
	"github.com/ledgerline/xrplmarketd/internal/config"
	"github.com/ledgerline/xrplmarketd/internal/domain"
	"github.com/ledgerline/xrplmarketd/internal/platform/xrpl"
	"github.com/ledgerline/xrplmarketd/internal/service"
)

// Dependencies bundles everything the daemon needs to operate. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Node clients
	Gateway *xrpl.Client
	Stream  *xrpl.WSClient

	// Caches
	TradeCache  domain.TradeCache
	RateLimiter domain.RateLimiter

	// Services
	Market *service.MarketService
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Node clients ---
	deps.Gateway = xrpl.NewClient(cfg.Node.RPCURL, cfg.Node.RequestTimeout.Duration, logger)

	if cfg.Node.WSURL != "" {
		deps.Stream = xrpl.NewWSClient(cfg.Node.WSURL)
		stream := deps.Stream
		closers = append(closers, func() { _ = stream.Close() })
	}

	// --- Caches ---
	deps.TradeCache = memory.NewTradeCache(cfg.Market.TradeCacheCapacity)
	deps.RateLimiter = memory.NewRateLimiter()

	// --- Services ---
	deps.Market = service.NewMarketService(deps.Gateway, deps.TradeCache, cfg.Node.Network, cfg.Market.FetchLimit, logger)

	return deps, cleanup, nil
}
