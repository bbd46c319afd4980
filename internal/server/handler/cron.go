package handler

import (
	"net/http"

	"github.com/garrettladley/whoopsync/internal/xhttp"
	"github.com/garrettladley/whoopsync/internal/xsync"
)

const cronCompletedMessage = "WHOOP data fetch process completed."

type Cron struct {
	syncer xsync.Syncer
}

func NewCron(syncer xsync.Syncer) *Cron {
	return &Cron{syncer: syncer}
}

type cronResponse struct {
	Message string `json:"message"`
	xsync.Summary
}

// HandleSync handles GET and POST /cron/sync requests. Authorization is
// enforced by middleware.CronAuth.
func (h *Cron) HandleSync(w http.ResponseWriter, r *http.Request) {
	summary := h.syncer.SyncAllUsers(r.Context())
	xhttp.WriteOK(w, cronResponse{
		Message: cronCompletedMessage,
		Summary: summary,
	})
}
