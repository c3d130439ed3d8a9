// Package app provides the top-level application lifecycle for the
// market-data daemon. It wires together the node clients, caches, services,
// and API server, starts them, and blocks until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerline/xrplmarketd/internal/config"
	"github.com/ledgerline/xrplmarketd/internal/platform/xrpl"
	"github.com/ledgerline/xrplmarketd/internal/server"
	"github.com/ledgerline/xrplmarketd/internal/server/handler"
	"github.com/ledgerline/xrplmarketd/internal/server/ws"
)

// shutdownGrace bounds how long in-flight requests may run after a
// termination signal.
const shutdownGrace = 10 * time.Second

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the ledger
// stream and the API server, and blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("network", a.cfg.Node.Network),
		slog.String("rpc_url", a.cfg.Node.RPCURL),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	g, gctx := errgroup.WithContext(ctx)

	// --- Ledger stream -> WebSocket hub ---
	var hub *ws.Hub
	if deps.Stream != nil {
		hub = ws.NewHub(a.cfg.Node.Network, a.logger)
		deps.Stream.OnLedgerClosed(func(evt xrpl.LedgerClosed) {
			hub.Publish(ws.ChannelLedger, evt)
		})
		g.Go(func() error { return a.runStream(gctx, deps.Stream) })
		g.Go(func() error {
			err := hub.Run(gctx)
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}

	// --- HTTP API server ---
	if a.cfg.Server.Enabled {
		srv := server.NewServer(server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.APIKey,
			RateLimit:   a.cfg.Server.RateLimit,
			RateWindow:  a.cfg.Server.RateWindow.Duration,
		}, server.Handlers{
			Health: handler.NewHealthHandler(deps.Gateway, a.logger),
			Market: handler.NewMarketHandler(deps.Market, a.logger),
		}, hub, deps.RateLimiter, a.logger)

		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

// runStream keeps the node's ledger stream subscription alive, reconnecting
// with backoff whenever the connection drops. The first successful connect
// issues the subscription; later connects restore it automatically.
func (a *App) runStream(ctx context.Context, stream *xrpl.WSClient) error {
	backoff := time.Second
	subscribed := false

	for {
		if err := stream.Connect(ctx); err != nil {
			a.logger.WarnContext(ctx, "ledger stream connect failed",
				slog.String("error", err.Error()),
			)
		} else {
			if !subscribed {
				if err := stream.SubscribeLedger(ctx); err != nil {
					a.logger.WarnContext(ctx, "ledger stream subscribe failed",
						slog.String("error", err.Error()),
					)
				} else {
					subscribed = true
				}
			}
			backoff = time.Second

			select {
			case <-ctx.Done():
				return nil
			case <-stream.Dropped():
				a.logger.WarnContext(ctx, "ledger stream disconnected, reconnecting")
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
