package http

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/billing"
	"github.com/aussiebroadwan/farmstead/pkg/cryptox"
	"github.com/aussiebroadwan/farmstead/pkg/farmsdk"
	"github.com/aussiebroadwan/farmstead/pkg/httpx"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
)

type BillingWebhookHandler struct {
	Plans  billing.Applier
	Secret string
	Now    func() time.Time
}

// ServeHTTP godoc
//
//	@Summary		Billing Webhook
//	@Description	Receives plan-change notifications from the billing provider. Replayed event ids are accepted without effect.
//	@Tags			Billing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		farmsdk.BillingEvent	true	"Plan change event"
//	@Success		200		{object}	farmsdk.WebhookResponse	"success, applied"
//	@Failure		400		{object}	farmsdk.ErrorResponse	"Malformed event or unknown plan"
//	@Failure		401		{object}	farmsdk.ErrorResponse	"Bad secret"
//	@Failure		404		{object}	farmsdk.ErrorResponse	"Unknown user"
//	@Security		BillingSecret
//	@Router			/v1/billing/webhook [post].
func (h *BillingWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !cryptox.EqualSecrets(r.Header.Get(farmsdk.BillingSecretHeader), h.Secret) {
		log.Warn("billing webhook rejected: bad secret")
		httpx.WriteJSON(w, http.StatusUnauthorized, farmsdk.ErrorResponse{
			Error:            farmsdk.ErrorCodeNotAuthenticated,
			ErrorDescription: "invalid webhook secret",
		})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, httpx.MaxBodyBytes))
	if err != nil {
		badRequest(w, "failed to read body")
		return
	}

	ev, err := billing.Decode(body)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if ev.Type != billing.EventTypePlanChanged {
		log.Debug("ignoring billing event", slog.String("event_id", ev.ID), slog.String("type", ev.Type))
		httpx.WriteJSON(w, http.StatusOK, farmsdk.WebhookResponse{Success: true})
		return
	}

	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}

	applied, err := h.Plans.ApplyPlanChange(ctx, ev.PlanChange("webhook", now))
	if err != nil {
		writeError(w, r, "billing_webhook", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, farmsdk.WebhookResponse{Success: true, Applied: applied})
}
