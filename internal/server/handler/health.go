package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/garrettladley/whoopsync/internal/xhttp"
	"github.com/garrettladley/whoopsync/internal/xslog"
)

const healthCheckTimeout = 2 * time.Second

type PingFunc func(ctx context.Context) error

type Health struct {
	checks map[string]PingFunc
}

// NewHealth reports healthy only when every named check succeeds.
func NewHealth(checks map[string]PingFunc) *Health {
	return &Health{checks: checks}
}

type healthResponse struct {
	Status string   `json:"status"`
	Failed []string `json:"failed,omitempty"`
}

// HandleHealth handles GET /health requests.
func (h *Health) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	var failed []string
	for name, ping := range h.checks {
		if ping == nil {
			continue
		}
		if err := ping(ctx); err != nil {
			xslog.FromContext(ctx).WarnContext(ctx, "health check failed",
				xslog.Driver(name),
				xslog.Error(err))
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		xhttp.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Failed: failed})
		return
	}
	xhttp.WriteOK(w, healthResponse{Status: "ok"})
}
