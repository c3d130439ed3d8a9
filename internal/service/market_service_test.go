package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/xrplmarketd/internal/cache/memory"
	"github.com/ledgerline/xrplmarketd/internal/domain"
	"github.com/ledgerline/xrplmarketd/internal/ledger"
	"github.com/ledgerline/xrplmarketd/internal/platform/xrpl"
)

// testIssuer is a real checksummed classic address (the genesis account).
const testIssuer = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

var testPair = domain.Pair{
	Base:  domain.Asset{Currency: "USD", Issuer: testIssuer},
	Quote: domain.NativeAsset(),
}

// stubGateway is a canned LedgerGateway.
type stubGateway struct {
	offers    []domain.Offer
	offersErr error

	snap    xrpl.AMMSnapshot
	snapErr error

	records    []ledger.TxRecord
	recordsErr error
}

func (s *stubGateway) PairOffers(context.Context, domain.Pair, int, string) ([]domain.Offer, error) {
	return s.offers, s.offersErr
}

func (s *stubGateway) AMMInfo(context.Context, domain.Pair) (xrpl.AMMSnapshot, error) {
	return s.snap, s.snapErr
}

func (s *stubGateway) AccountTx(context.Context, string, int) ([]ledger.TxRecord, error) {
	return s.records, s.recordsErr
}

func newTestService(gw *stubGateway) *MarketService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMarketService(gw, memory.NewTradeCache(10), "testnet", 0, logger)
}

func testOffer() domain.Offer {
	return domain.Offer{
		Account:   "rAsk",
		TakerGets: domain.Amount{Asset: testPair.Base, Value: decimal.NewFromInt(50)},
		TakerPays: domain.Amount{Asset: testPair.Quote, Value: decimal.NewFromInt(500)},
	}
}

func testSnapshot() xrpl.AMMSnapshot {
	return xrpl.AMMSnapshot{
		Exists: true,
		AMM: xrpl.RawAMM{
			Account:    "rPool",
			Amount:     ledger.IssuedRawAmount("USD", testIssuer, "1000"),
			Amount2:    ledger.NativeRawAmount("10000000000"),
			LPToken:    ledger.IssuedRawAmount("0373B1A0F8B29E0B348CB07B0F3F6C6132C58DA1", "rPool", "500"),
			TradingFee: 1000,
		},
	}
}

func TestGetOrderBookRejectsInvalidPair(t *testing.T) {
	svc := newTestService(&stubGateway{})
	bad := domain.Pair{Base: testPair.Base, Quote: testPair.Base}
	_, err := svc.GetOrderBook(context.Background(), bad, BookOptions{})
	require.ErrorIs(t, err, domain.ErrInvalidAsset)
}

func TestRejectsBadIssuerAddress(t *testing.T) {
	svc := newTestService(&stubGateway{offers: []domain.Offer{testOffer()}})

	for _, issuer := range []string{
		"rIssuer",                            // too short
		"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTi", // tampered checksum
		"not-an-address",
	} {
		bad := domain.Pair{
			Base:  domain.Asset{Currency: "USD", Issuer: issuer},
			Quote: domain.NativeAsset(),
		}

		_, err := svc.GetOrderBook(context.Background(), bad, BookOptions{})
		require.ErrorIs(t, err, domain.ErrInvalidAsset, "issuer %q", issuer)
		_, err = svc.GetAMMInfo(context.Background(), bad)
		require.ErrorIs(t, err, domain.ErrInvalidAsset, "issuer %q", issuer)
		_, err = svc.GetTrades(context.Background(), bad)
		require.ErrorIs(t, err, domain.ErrInvalidAsset, "issuer %q", issuer)
		_, err = svc.GetMarketData(context.Background(), bad, BookOptions{})
		require.ErrorIs(t, err, domain.ErrInvalidAsset, "issuer %q", issuer)
	}
}

func TestGetOrderBook(t *testing.T) {
	svc := newTestService(&stubGateway{offers: []domain.Offer{testOffer()}})

	ob, err := svc.GetOrderBook(context.Background(), testPair, BookOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, ob.Asks, 1)
	assert.True(t, ob.Asks[0].Price.Equal(decimal.NewFromInt(10)))
}

func TestGetAMMInfoMissingPool(t *testing.T) {
	svc := newTestService(&stubGateway{snap: xrpl.AMMSnapshot{Exists: false}})

	info, err := svc.GetAMMInfo(context.Background(), testPair)
	require.NoError(t, err)
	assert.False(t, info.Exists)
}

func TestGetAMMInfo(t *testing.T) {
	svc := newTestService(&stubGateway{snap: testSnapshot()})

	info, err := svc.GetAMMInfo(context.Background(), testPair)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Equal(t, "rPool", info.Account)
	assert.True(t, info.Asset.Value.Equal(decimal.NewFromInt(1000)))
	assert.True(t, info.Asset2.Value.Equal(decimal.NewFromInt(10000)))
	// trading_fee of 1000 is 1%.
	assert.True(t, info.TradingFee.Equal(decimal.RequireFromString("0.01")), info.TradingFee.String())
	// Q / (B * (1-F)) = 10000 / 990.
	assert.True(t, info.SpotPrice.Sub(decimal.RequireFromString("10.10101")).Abs().LessThan(decimal.RequireFromString("0.0001")),
		info.SpotPrice.String())
}

func TestGetTradesEmptyWindow(t *testing.T) {
	svc := newTestService(&stubGateway{})

	list, err := svc.GetTrades(context.Background(), testPair)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetMarketDataPartialFailure(t *testing.T) {
	gw := &stubGateway{
		offers:  []domain.Offer{testOffer()},
		snapErr: errors.New("amm_info timed out"),
	}
	svc := newTestService(gw)

	data, err := svc.GetMarketData(context.Background(), testPair, BookOptions{Limit: 10})
	require.NoError(t, err)

	require.NotNil(t, data.Book)
	assert.Len(t, data.Book.Asks, 1)
	assert.Nil(t, data.AMM)
	assert.NotNil(t, data.Trades)
}

func TestGetMarketDataAllUnavailable(t *testing.T) {
	boom := errors.New("node down")
	gw := &stubGateway{offersErr: boom, snapErr: boom, recordsErr: boom}
	svc := newTestService(gw)

	data, err := svc.GetMarketData(context.Background(), testPair, BookOptions{})
	require.NoError(t, err)
	assert.Nil(t, data.Book)
	assert.Nil(t, data.AMM)
	assert.Nil(t, data.Trades)
}
