package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/garrettladley/whoopsync/internal/service/webhook"
	"github.com/garrettladley/whoopsync/internal/xerrors"
	"github.com/garrettladley/whoopsync/internal/xhttp"
	"github.com/garrettladley/whoopsync/internal/xslog"
)

const maxWebhookBodyBytes = 1 << 20

type Webhook struct {
	service webhook.Service
}

func NewWebhook(service webhook.Service) *Webhook {
	return &Webhook{service: service}
}

// HandleWebhook handles POST /webhooks/whoop requests.
func (h *Webhook) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		xerrors.WriteError(ctx, w, xerrors.BadRequest(
			xerrors.WithMessage("failed to read request body"),
			xerrors.WithCause(err),
		))
		return
	}

	result, err := h.service.ProcessWebhook(ctx, webhook.ProcessRequest{Body: body})
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrMissingUserID):
			xerrors.WriteError(ctx, w, xerrors.BadRequest(
				xerrors.WithCode("missing_user_id"),
				xerrors.WithMessage("Missing user_id in webhook payload"),
			))
		case errors.Is(err, webhook.ErrMalformedPayload):
			xerrors.WriteError(ctx, w, xerrors.BadRequest(
				xerrors.WithCode("malformed_payload"),
				xerrors.WithMessage("Invalid JSON payload"),
				xerrors.WithCause(err),
			))
		default:
			xslog.FromContext(ctx).ErrorContext(ctx, "failed to process webhook", xslog.Error(err))
			xerrors.WriteError(ctx, w, xerrors.Internal(
				xerrors.WithMessage("failed to process webhook"),
				xerrors.WithCause(err),
			))
		}
		return
	}

	xhttp.WriteOK(w, result)
}
