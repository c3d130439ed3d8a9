package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ledgerline/xrplmarketd/internal/domain"
	"github.com/ledgerline/xrplmarketd/internal/service"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parsePair reads the base and quote query parameters. Assets are written
// "XRP" for the native asset or "CODE:issuer" for issued ones.
func parsePair(r *http.Request) (domain.Pair, error) {
	q := r.URL.Query()

	base, err := domain.ParseAsset(q.Get("base"))
	if err != nil {
		return domain.Pair{}, err
	}
	quote, err := domain.ParseAsset(q.Get("quote"))
	if err != nil {
		return domain.Pair{}, err
	}

	pair := domain.Pair{Base: base, Quote: quote}
	return pair, pair.Validate()
}

// parseBookOpts extracts order-book narrowing parameters from the query
// string. Defaults: limit=25 (max 300), no domain scope.
func parseBookOpts(r *http.Request) service.BookOptions {
	q := r.URL.Query()

	limit := 25
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 300 {
		limit = 300
	}

	return service.BookOptions{
		Limit:  limit,
		Domain: q.Get("domain"),
	}
}

// errStatus maps domain errors to HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAsset), errors.Is(err, domain.ErrInvalidLength):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrWSDisconnect):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// logHandler is a convenience to attach slog fields in handler code.
func logHandler(logger *slog.Logger, handler string) *slog.Logger {
	return logger.With(slog.String("handler", handler))
}
