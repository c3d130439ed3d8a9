// Package service composes the pure market-state computations over data
// fetched from the ledger node.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerline/xrplmarketd/internal/amm"
	"github.com/ledgerline/xrplmarketd/internal/book"
	"github.com/ledgerline/xrplmarketd/internal/domain"
	"github.com/ledgerline/xrplmarketd/internal/ledger"
	"github.com/ledgerline/xrplmarketd/internal/platform/xrpl"
	"github.com/ledgerline/xrplmarketd/internal/trades"
)

// feeDenominator converts the ledger's trading_fee units (1/100000, so 1000
// means 1%) to a fraction.
var feeDenominator = decimal.NewFromInt(100_000)

// auctionExpirationLayout is the timestamp format of amm_info auction slots.
const auctionExpirationLayout = "2006-01-02T15:04:05Z0700"

// validatePair rejects malformed pairs before anything is sent to the node.
// Beyond the shape checks, issuer accounts must decode and checksum as
// classic addresses; junk issuers would otherwise surface as node errors.
func validatePair(pair domain.Pair) error {
	if err := pair.Validate(); err != nil {
		return err
	}
	for _, leg := range []domain.Asset{pair.Base, pair.Quote} {
		if !leg.IsNative() && !ledger.ValidClassicAddress(leg.Issuer) {
			return fmt.Errorf("service: issuer %q is not a classic address: %w", leg.Issuer, domain.ErrInvalidAsset)
		}
	}
	return nil
}

// LedgerGateway is what the market service needs from the node client.
type LedgerGateway interface {
	PairOffers(ctx context.Context, pair domain.Pair, limit int, domainID string) ([]domain.Offer, error)
	AMMInfo(ctx context.Context, pair domain.Pair) (xrpl.AMMSnapshot, error)
	AccountTx(ctx context.Context, account string, limit int) ([]ledger.TxRecord, error)
}

// BookOptions narrows an order-book request.
type BookOptions struct {
	Limit  int
	Domain string
}

// MarketService reconstructs tradable market state for currency pairs.
type MarketService struct {
	gateway LedgerGateway
	cache   domain.TradeCache
	network string
	logger  *slog.Logger

	// fetchLimit bounds raw offer and transaction windows requested from
	// the node. Cumulative depth needs the full ladder before truncation,
	// so this stays well above typical response limits.
	fetchLimit int
}

// NewMarketService creates a MarketService. network tags trade-cache keys so
// one process can serve several networks without mixing their histories.
// fetchLimit <= 0 falls back to 300.
func NewMarketService(gateway LedgerGateway, cache domain.TradeCache, network string, fetchLimit int, logger *slog.Logger) *MarketService {
	if fetchLimit <= 0 {
		fetchLimit = 300
	}
	return &MarketService{
		gateway:    gateway,
		cache:      cache,
		network:    network,
		logger:     logger.With(slog.String("component", "market_service")),
		fetchLimit: fetchLimit,
	}
}

// GetOrderBook fetches both raw books for the pair and aggregates them into
// classified, depth-annotated ladders.
func (s *MarketService) GetOrderBook(ctx context.Context, pair domain.Pair, opts BookOptions) (domain.OrderBook, error) {
	if err := validatePair(pair); err != nil {
		return domain.OrderBook{}, err
	}

	offers, err := s.gateway.PairOffers(ctx, pair, s.fetchLimit, opts.Domain)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("service: order book %s: %w", pair, err)
	}

	return book.Aggregate(offers, pair.Base, pair.Quote, book.Options{
		Limit:     opts.Limit,
		Domain:    opts.Domain,
		CloseTime: time.Now().UTC(),
	}), nil
}

// GetAMMInfo fetches and normalizes the AMM pool for a pair. A missing pool
// is a well-formed all-zero answer, not an error.
func (s *MarketService) GetAMMInfo(ctx context.Context, pair domain.Pair) (domain.AMMInfo, error) {
	if err := validatePair(pair); err != nil {
		return domain.AMMInfo{}, err
	}

	snap, err := s.gateway.AMMInfo(ctx, pair)
	if err != nil {
		return domain.AMMInfo{}, fmt.Errorf("service: amm info %s: %w", pair, err)
	}
	if !snap.Exists {
		return domain.AMMInfo{Exists: false}, nil
	}

	return decodeAMMInfo(snap.AMM)
}

// GetTrades reconstructs recent executed trades for the pair from the
// issuer's transaction history and merges them into the per-pair cache.
func (s *MarketService) GetTrades(ctx context.Context, pair domain.Pair) ([]domain.Trade, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}

	issuer := trades.IssuerAccount(pair.Base, pair.Quote)
	if issuer == "" {
		return nil, fmt.Errorf("service: trades %s: no issued side: %w", pair, domain.ErrInvalidAsset)
	}

	window, err := s.gateway.AccountTx(ctx, issuer, s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("service: trades %s: %w", pair, err)
	}

	fresh := trades.Reconstruct(window, pair.Base, pair.Quote)
	key := domain.TradeCacheKey(s.network, pair)
	return s.cache.Merge(key, fresh), nil
}

// GetMarketData composes the order book, AMM info, and trade history for a
// pair. The sub-fetches run concurrently and fail independently: a piece
// that cannot be computed is returned nil, never an overall error.
func (s *MarketService) GetMarketData(ctx context.Context, pair domain.Pair, opts BookOptions) (domain.MarketData, error) {
	if err := validatePair(pair); err != nil {
		return domain.MarketData{}, err
	}

	data := domain.MarketData{Pair: pair}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := s.GetOrderBook(gctx, pair, opts)
		if err != nil {
			s.logger.WarnContext(gctx, "order book unavailable",
				slog.String("pair", pair.String()),
				slog.String("error", err.Error()),
			)
			return nil
		}
		data.Book = &b
		return nil
	})

	g.Go(func() error {
		info, err := s.GetAMMInfo(gctx, pair)
		if err != nil {
			s.logger.WarnContext(gctx, "amm info unavailable",
				slog.String("pair", pair.String()),
				slog.String("error", err.Error()),
			)
			return nil
		}
		data.AMM = &info
		return nil
	})

	g.Go(func() error {
		list, err := s.GetTrades(gctx, pair)
		if err != nil {
			s.logger.WarnContext(gctx, "trade history unavailable",
				slog.String("pair", pair.String()),
				slog.String("error", err.Error()),
			)
			return nil
		}
		data.Trades = list
		return nil
	})

	// Sub-fetches recover their own errors; Wait only synchronizes.
	g.Wait()

	return data, nil
}

// decodeAMMInfo converts a raw amm_info payload into the normalized shape.
// The amount field pairs with the requested base asset and amount2 with the
// quote, so reserves keep the caller's orientation.
func decodeAMMInfo(raw xrpl.RawAMM) (domain.AMMInfo, error) {
	asset, err := raw.Amount.Decode()
	if err != nil {
		return domain.AMMInfo{}, fmt.Errorf("service: amm amount: %w", err)
	}
	asset2, err := raw.Amount2.Decode()
	if err != nil {
		return domain.AMMInfo{}, fmt.Errorf("service: amm amount2: %w", err)
	}
	lpToken, err := raw.LPToken.Decode()
	if err != nil {
		return domain.AMMInfo{}, fmt.Errorf("service: amm lp token: %w", err)
	}

	feeRate := decimal.NewFromInt(int64(raw.TradingFee)).Div(feeDenominator)

	info := domain.AMMInfo{
		Exists:       true,
		Account:      raw.Account,
		Asset:        asset,
		Asset2:       asset2,
		LPToken:      lpToken,
		TradingFee:   feeRate,
		AssetFrozen:  raw.AssetFrozen,
		Asset2Frozen: raw.Asset2Frozen,
	}

	pool := domain.AMMPool{
		Exists:       true,
		BaseReserve:  asset.Value,
		QuoteReserve: asset2.Value,
		FeeRate:      feeRate,
		BaseFrozen:   raw.AssetFrozen,
		QuoteFrozen:  raw.Asset2Frozen,
	}
	if params, ok := amm.BuildParams(pool); ok {
		info.SpotPrice = params.SpotPrice()
	}

	if raw.AuctionSlot != nil {
		slot := domain.AuctionSlot{
			Account:       raw.AuctionSlot.Account,
			DiscountedFee: raw.AuctionSlot.DiscountedFee,
		}
		if price, err := raw.AuctionSlot.Price.Decode(); err == nil {
			slot.Price = price
		}
		if exp, err := time.Parse(auctionExpirationLayout, raw.AuctionSlot.Expiration); err == nil {
			slot.Expiration = exp.UTC()
		}
		for _, aa := range raw.AuctionSlot.AuthAccounts {
			slot.AuthAccounts = append(slot.AuthAccounts, aa.AuthAccount.Account)
		}
		info.AuctionSlot = &slot
	}

	for _, vs := range raw.VoteSlots {
		info.VoteSlots = append(info.VoteSlots, domain.VoteSlot{
			Account:    vs.Account,
			TradingFee: vs.TradingFee,
			VoteWeight: vs.VoteWeight,
		})
	}

	return info, nil
}
