package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ledgerline/xrplmarketd/internal/platform/xrpl"
)

// NodeService reports the state of the connected ledger node.
type NodeService interface {
	ServerInfo(ctx context.Context) (xrpl.NetworkInfo, error)
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	node   NodeService
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. node may be nil, in which case
// the check reports process liveness only.
func NewHealthHandler(node NodeService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{node: node, logger: logHandler(logger, "health")}
}

// HealthCheck reports liveness plus, when the node is reachable, the
// validated ledger sequence. An unreachable node degrades the status but
// still answers 200 so load balancers keep the process in rotation.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.node != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		info, err := h.node.ServerInfo(ctx)
		if err != nil {
			h.logger.WarnContext(r.Context(), "handler: node unreachable",
				slog.String("error", err.Error()),
			)
			body["status"] = "degraded"
			body["node"] = map[string]any{"reachable": false}
		} else {
			body["node"] = map[string]any{
				"reachable":        true,
				"build_version":    info.BuildVersion,
				"network_id":       info.NetworkID,
				"validated_ledger": info.ValidatedSeq,
			}
		}
	}

	writeJSON(w, http.StatusOK, body)
}
