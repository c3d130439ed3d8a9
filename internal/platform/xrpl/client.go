// Package xrpl talks to an XRP Ledger node. The HTTP client speaks JSON-RPC
// for point queries; the WebSocket client carries the same commands plus
// stream subscriptions.
package xrpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ledgerline/xrplmarketd/internal/domain"
	"github.com/ledgerline/xrplmarketd/internal/ledger"
)

// Client is the JSON-RPC over HTTP client for an XRPL node.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a Client for the given JSON-RPC endpoint, e.g.
// "https://s1.ripple.com:51234".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		logger: logger.With(slog.String("component", "xrpl_client")),
	}
}

// call posts one JSON-RPC command and unmarshals the result payload into out.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	req := rpcRequest{Method: method}
	if params != nil {
		req.Params = []any{params}
	}

	var envelope rpcEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&envelope).
		Post("/")
	if err != nil {
		return fmt.Errorf("xrpl: %s: %v: %w", method, err, domain.ErrUpstreamUnavailable)
	}
	if resp.IsError() {
		return fmt.Errorf("xrpl: %s: http %d: %w", method, resp.StatusCode(), domain.ErrUpstreamUnavailable)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("xrpl: %s: decode result: %v: %w", method, err, domain.ErrUpstreamUnavailable)
	}
	return nil
}

// resultErr maps a node-reported result status to a domain error, nil for
// success.
func resultErr(method string, st rpcStatus) error {
	if st.Error == "" && st.Status != "error" {
		return nil
	}
	switch st.Error {
	case "actNotFound", "entryNotFound", "objectNotFound":
		return fmt.Errorf("xrpl: %s: %s: %w", method, st.Error, domain.ErrNotFound)
	default:
		return fmt.Errorf("xrpl: %s: %s (%s): %w", method, st.Error, st.ErrorMessage, domain.ErrUpstreamUnavailable)
	}
}

// BookOffers fetches one direction of an order book: offers whose creators
// give takerGets and want takerPays. Rows that fail to decode are skipped.
func (c *Client) BookOffers(ctx context.Context, takerGets, takerPays domain.Asset, limit int, domainID string) ([]domain.Offer, error) {
	getsRef, err := AssetParam(takerGets)
	if err != nil {
		return nil, err
	}
	paysRef, err := AssetParam(takerPays)
	if err != nil {
		return nil, err
	}

	params := map[string]any{
		"taker_gets": getsRef,
		"taker_pays": paysRef,
	}
	if limit > 0 {
		params["limit"] = limit
	}
	if domainID != "" {
		params["domain"] = domainID
	}

	var result bookOffersResult
	if err := c.call(ctx, "book_offers", params, &result); err != nil {
		return nil, err
	}
	if err := resultErr("book_offers", result.rpcStatus); err != nil {
		return nil, err
	}

	offers := make([]domain.Offer, 0, len(result.Offers))
	for _, raw := range result.Offers {
		o, err := raw.Decode()
		if err != nil {
			c.logger.WarnContext(ctx, "skipping undecodable offer",
				slog.String("account", raw.Account),
				slog.Uint64("sequence", uint64(raw.Sequence)),
				slog.String("error", err.Error()),
			)
			continue
		}
		offers = append(offers, o)
	}
	return offers, nil
}

// PairOffers fetches both directions of a pair's book. The ledger splits
// offers by the creator's sell flag, so a full ladder needs both queries;
// the aggregator re-classifies every offer against the pair anyway.
func (c *Client) PairOffers(ctx context.Context, pair domain.Pair, limit int, domainID string) ([]domain.Offer, error) {
	asks, err := c.BookOffers(ctx, pair.Base, pair.Quote, limit, domainID)
	if err != nil {
		return nil, err
	}
	bids, err := c.BookOffers(ctx, pair.Quote, pair.Base, limit, domainID)
	if err != nil {
		return nil, err
	}
	return append(asks, bids...), nil
}

// AMMInfo fetches the AMM pool for a pair. A pool that does not exist is a
// well-formed answer, not an error: the snapshot comes back with
// Exists false.
func (c *Client) AMMInfo(ctx context.Context, pair domain.Pair) (AMMSnapshot, error) {
	assetRef, err := AssetParam(pair.Base)
	if err != nil {
		return AMMSnapshot{}, err
	}
	asset2Ref, err := AssetParam(pair.Quote)
	if err != nil {
		return AMMSnapshot{}, err
	}

	params := map[string]any{
		"asset":  assetRef,
		"asset2": asset2Ref,
	}

	var result ammInfoResult
	if err := c.call(ctx, "amm_info", params, &result); err != nil {
		return AMMSnapshot{}, err
	}
	if err := resultErr("amm_info", result.rpcStatus); err != nil {
		if isNotFound(err) {
			return AMMSnapshot{Exists: false}, nil
		}
		return AMMSnapshot{}, err
	}

	return AMMSnapshot{Exists: true, AMM: result.AMM}, nil
}

// AccountTx fetches the most recent validated transactions touching an
// account, newest first.
func (c *Client) AccountTx(ctx context.Context, account string, limit int) ([]ledger.TxRecord, error) {
	params := map[string]any{
		"account":          account,
		"ledger_index_min": -1,
		"ledger_index_max": -1,
		"forward":          false,
	}
	if limit > 0 {
		params["limit"] = limit
	}

	var result accountTxResult
	if err := c.call(ctx, "account_tx", params, &result); err != nil {
		return nil, err
	}
	if err := resultErr("account_tx", result.rpcStatus); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	records := make([]ledger.TxRecord, 0, len(result.Transactions))
	for _, row := range result.Transactions {
		if !row.Validated {
			continue
		}

		var tx ledger.Transaction
		if err := json.Unmarshal(row.Tx, &tx); err != nil {
			continue
		}
		var id txIdentity
		if err := json.Unmarshal(row.Tx, &id); err != nil || id.Hash == "" {
			continue
		}

		records = append(records, ledger.TxRecord{
			Tx:        tx,
			Meta:      row.Meta,
			Hash:      id.Hash,
			Date:      id.Date,
			Validated: row.Validated,
		})
	}
	return records, nil
}

// ServerInfo fetches node and validated-ledger identifiers.
func (c *Client) ServerInfo(ctx context.Context) (NetworkInfo, error) {
	var result serverInfoResult
	if err := c.call(ctx, "server_info", nil, &result); err != nil {
		return NetworkInfo{}, err
	}
	if err := resultErr("server_info", result.rpcStatus); err != nil {
		return NetworkInfo{}, err
	}
	return NetworkInfo{
		BuildVersion:   result.Info.BuildVersion,
		NetworkID:      result.Info.NetworkID,
		ValidatedSeq:   result.Info.ValidatedLedger.Seq,
		LastCloseEpoch: result.Info.ValidatedLedger.CloseTime,
	}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
