// Package config defines the top-level configuration for the market-data
// daemon and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by XRPLMD_* environment
// variables.
type Config struct {
	Node     NodeConfig   `toml:"node"`
	Market   MarketConfig `toml:"market"`
	Server   ServerConfig `toml:"server"`
	LogLevel string       `toml:"log_level"`
}

// NodeConfig holds XRPL node endpoints and connection parameters.
type NodeConfig struct {
	// RPCURL is the JSON-RPC endpoint, e.g. "https://s1.ripple.com:51234".
	RPCURL string `toml:"rpc_url"`
	// WSURL is the WebSocket endpoint used for the ledger stream,
	// e.g. "wss://s1.ripple.com". Empty disables the stream.
	WSURL string `toml:"ws_url"`
	// Network names the ledger this node serves ("mainnet", "testnet",
	// "devnet"). It namespaces the trade cache.
	Network        string   `toml:"network"`
	RequestTimeout duration `toml:"request_timeout"`
}

// MarketConfig holds market-data computation parameters.
type MarketConfig struct {
	// FetchLimit bounds raw offer and transaction windows requested from
	// the node per query.
	FetchLimit int `toml:"fetch_limit"`
	// BookLimit is the default per-side order book depth served to clients.
	BookLimit int `toml:"book_limit"`
	// TradeCacheCapacity caps cached trades per pair.
	TradeCacheCapacity int `toml:"trade_cache_capacity"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey guards the API when set; empty disables authentication.
	APIKey string `toml:"api_key"`
	// RateLimit is requests per window per client; 0 disables limiting.
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Node: NodeConfig{
			RPCURL:         "https://s1.ripple.com:51234",
			WSURL:          "wss://s1.ripple.com",
			Network:        "mainnet",
			RequestTimeout: duration{15 * time.Second},
		},
		Market: MarketConfig{
			FetchLimit:         300,
			BookLimit:          25,
			TradeCacheCapacity: 50,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{},
			RateLimit:   20,
			RateWindow:  duration{time.Second},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Node
	if c.Node.RPCURL == "" {
		errs = append(errs, "node: rpc_url must not be empty")
	}
	if c.Node.Network == "" {
		errs = append(errs, "node: network must not be empty")
	}
	if c.Node.RequestTimeout.Duration <= 0 {
		errs = append(errs, "node: request_timeout must be positive")
	}

	// Market
	if c.Market.FetchLimit < 1 {
		errs = append(errs, "market: fetch_limit must be >= 1")
	}
	if c.Market.BookLimit < 1 {
		errs = append(errs, "market: book_limit must be >= 1")
	}
	if c.Market.BookLimit > c.Market.FetchLimit {
		errs = append(errs, "market: book_limit must not exceed fetch_limit")
	}
	if c.Market.TradeCacheCapacity < 1 {
		errs = append(errs, "market: trade_cache_capacity must be >= 1")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
			errs = append(errs, "server: rate_window must be positive when rate_limit is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
