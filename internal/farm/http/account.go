package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/pkg/farmsdk"
	"github.com/aussiebroadwan/farmstead/pkg/httpx"
)

type AccountHandler struct {
	AccountService  *service.AccountService
	IdentityService *service.IdentityService
	PlanService     *service.PlanService
}

// HandleRegister godoc
//
//	@Summary		Register Account
//	@Description	Creates the caller's account and personal farm from the verified token identity. Calling it again returns the existing account unchanged.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		farmsdk.RegisterRequest		false	"Display and farm names"
//	@Success		200		{object}	farmsdk.AccountResponse		"Resolved account"
//	@Failure		400		{object}	farmsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	farmsdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	farmsdk.ErrorResponse		"Email not verified"
//	@Failure		409		{object}	farmsdk.ErrorResponse		"Email registered to another account"
//	@Security		BearerAuth
//	@Router			/v1/account [post].
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req farmsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		id, _ := httpx.IdentityFromContext(r.Context())
		displayName = id.Name
	}

	view, err := h.AccountService.Register(r.Context(), principal(r), displayName, req.FarmName)
	if err != nil {
		writeError(w, r, "register", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(view))
}

// HandleGet godoc
//
//	@Summary		Get Account
//	@Description	Resolves the caller's farm and role and lists the capabilities granted on that farm.
//	@Tags			Account
//	@Produce		json
//	@Success		200	{object}	farmsdk.AccountResponse	"Resolved account"
//	@Failure		401	{object}	farmsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	farmsdk.ErrorResponse	"Not registered"
//	@Security		BearerAuth
//	@Router			/v1/account [get].
func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.IdentityService.Resolve(r.Context(), principal(r).UserID)
	if err != nil {
		writeError(w, r, "resolve", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(view))
}

// HandleDowngrade godoc
//
//	@Summary		Downgrade To Free
//	@Description	Moves the caller to the free plan. Owners' roles follow the plan immediately.
//	@Tags			Account
//	@Produce		json
//	@Success		200	{object}	farmsdk.AccountResponse	"Updated account"
//	@Failure		401	{object}	farmsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	farmsdk.ErrorResponse	"Caller may not manage billing"
//	@Security		BearerAuth
//	@Router			/v1/account/plan/downgrade [post].
func (h *AccountHandler) HandleDowngrade(w http.ResponseWriter, r *http.Request) {
	view, err := h.PlanService.DowngradeToFree(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, "downgrade", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(view))
}
