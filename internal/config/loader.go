package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies XRPLMD_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known XRPLMD_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject endpoints and keys at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Node ──
	setStr(&cfg.Node.RPCURL, "XRPLMD_NODE_RPC_URL")
	setStr(&cfg.Node.WSURL, "XRPLMD_NODE_WS_URL")
	setStr(&cfg.Node.Network, "XRPLMD_NODE_NETWORK")
	setDuration(&cfg.Node.RequestTimeout, "XRPLMD_NODE_REQUEST_TIMEOUT")

	// ── Market ──
	setInt(&cfg.Market.FetchLimit, "XRPLMD_MARKET_FETCH_LIMIT")
	setInt(&cfg.Market.BookLimit, "XRPLMD_MARKET_BOOK_LIMIT")
	setInt(&cfg.Market.TradeCacheCapacity, "XRPLMD_MARKET_TRADE_CACHE_CAPACITY")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "XRPLMD_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "XRPLMD_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "XRPLMD_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "XRPLMD_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "XRPLMD_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "XRPLMD_SERVER_RATE_WINDOW")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "XRPLMD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
