package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/pkg/farmsdk"
	"github.com/aussiebroadwan/farmstead/pkg/httpx"
	"github.com/aussiebroadwan/farmstead/pkg/idx"
)

// InvitationsHandler serves invitation creation, listings and the invitee
// and inviter transitions.
type InvitationsHandler struct {
	InvitationService *service.InvitationService
}

// HandleInvite godoc
//
//	@Summary		Invite Staff
//	@Description	Creates a pending invitation for an email address to join the farm as admin, editor or viewer.
//	@Description	The returned token is shown once and can be redeemed by the invitee.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			farmID	path		string					true	"Farm ID"
//	@Param			request	body		farmsdk.InviteRequest	true	"Invitee and role"
//	@Success		201		{object}	farmsdk.InviteResponse	"Invitation and token"
//	@Failure		400		{object}	farmsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	farmsdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	farmsdk.ErrorResponse	"Already invited or already a member"
//	@Security		BearerAuth
//	@Router			/v1/farms/{farmID}/invitations [post].
func (h *InvitationsHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req farmsdk.InviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		badRequest(w, "email is required")
		return
	}

	created, err := h.InvitationService.Invite(r.Context(), principal(r), r.PathValue("farmID"), req.Email, req.Role)
	if err != nil {
		writeError(w, r, "invite", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, farmsdk.InviteResponse{
		Success:    true,
		Message:    "Invitation sent",
		Invitation: toInvitation(created.Invitation),
		Token:      created.Token,
	})
}

// HandleListFarm godoc
//
//	@Summary		List Farm Invitations
//	@Description	Lists the farm's pending, unexpired invitations.
//	@Tags			Invitations
//	@Produce		json
//	@Param			farmID	path		string						true	"Farm ID"
//	@Success		200		{object}	farmsdk.InvitationsResponse	"Active invitations"
//	@Failure		403		{object}	farmsdk.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/farms/{farmID}/invitations [get].
func (h *InvitationsHandler) HandleListFarm(w http.ResponseWriter, r *http.Request) {
	list, err := h.InvitationService.ListForFarm(r.Context(), principal(r), r.PathValue("farmID"))
	if err != nil {
		writeError(w, r, "list_farm_invitations", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, farmsdk.InvitationsResponse{Success: true, Invitations: toInvitations(list)})
}

// HandleListMine godoc
//
//	@Summary		List My Invitations
//	@Description	Lists pending, unexpired invitations addressed to the caller's verified email.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	farmsdk.InvitationsResponse	"Active invitations"
//	@Failure		403	{object}	farmsdk.ErrorResponse		"Email not verified"
//	@Security		BearerAuth
//	@Router			/v1/invitations [get].
func (h *InvitationsHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.InvitationService.ListMine(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, "list_my_invitations", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, farmsdk.InvitationsResponse{Success: true, Invitations: toInvitations(list)})
}

// HandleRedeem godoc
//
//	@Summary		Redeem Invitation Token
//	@Description	Accepts the invitation identified by an opaque token.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		farmsdk.RedeemRequest	true	"Invitation token"
//	@Success		200		{object}	farmsdk.AcceptResponse	"Joined farm"
//	@Failure		404		{object}	farmsdk.ErrorResponse	"Unknown token"
//	@Failure		409		{object}	farmsdk.ErrorResponse	"No longer pending"
//	@Failure		410		{object}	farmsdk.ErrorResponse	"Expired"
//	@Security		BearerAuth
//	@Router			/v1/invitations/redeem [post].
func (h *InvitationsHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	var req farmsdk.RedeemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Token == "" {
		badRequest(w, "token is required")
		return
	}

	accepted, err := h.InvitationService.Redeem(r.Context(), principal(r), req.Token)
	if err != nil {
		writeError(w, r, "redeem", err)
		return
	}
	writeAccepted(w, accepted)
}

// HandleAccept godoc
//
//	@Summary		Accept Invitation
//	@Description	Joins the inviting farm with the invited role. The caller's verified email must match the invitation.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string					true	"Invitation ID"
//	@Success		200	{object}	farmsdk.AcceptResponse	"Joined farm"
//	@Failure		403	{object}	farmsdk.ErrorResponse	"Addressed to someone else"
//	@Failure		404	{object}	farmsdk.ErrorResponse	"Invitation or inviting farm not found"
//	@Failure		409	{object}	farmsdk.ErrorResponse	"No longer pending, or the farm's owner has left it"
//	@Failure		410	{object}	farmsdk.ErrorResponse	"Expired"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/accept [post].
func (h *InvitationsHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	id, err := invitationID(r)
	if err != nil {
		writeError(w, r, "accept", err)
		return
	}
	accepted, err := h.InvitationService.Accept(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, r, "accept", err)
		return
	}
	writeAccepted(w, accepted)
}

func writeAccepted(w http.ResponseWriter, a service.Accepted) {
	httpx.WriteJSON(w, http.StatusOK, farmsdk.AcceptResponse{
		Success:      true,
		Message:      "Invitation accepted",
		InvitationID: a.InvitationID,
		FarmID:       a.FarmID,
		Role:         string(a.Role),
	})
}

// HandleDecline godoc
//
//	@Summary		Decline Invitation
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string					true	"Invitation ID"
//	@Success		200	{object}	farmsdk.MessageResponse	"Declined"
//	@Failure		403	{object}	farmsdk.ErrorResponse	"Addressed to someone else"
//	@Failure		409	{object}	farmsdk.ErrorResponse	"No longer pending"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/decline [post].
func (h *InvitationsHandler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	id, err := invitationID(r)
	if err == nil {
		err = h.InvitationService.Decline(r.Context(), principal(r), id)
	}
	if err != nil {
		writeError(w, r, "decline", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, farmsdk.MessageResponse{Success: true, Message: "Invitation declined"})
}

// HandleRevoke godoc
//
//	@Summary		Revoke Invitation
//	@Description	Withdraws a pending invitation. Requires the revoke_invitation capability on the inviting farm.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string					true	"Invitation ID"
//	@Success		200	{object}	farmsdk.MessageResponse	"Revoked"
//	@Failure		403	{object}	farmsdk.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	farmsdk.ErrorResponse	"No longer pending"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/revoke [post].
func (h *InvitationsHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	id, err := invitationID(r)
	if err == nil {
		err = h.InvitationService.Revoke(r.Context(), principal(r), id)
	}
	if err != nil {
		writeError(w, r, "revoke", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, farmsdk.MessageResponse{Success: true, Message: "Invitation revoked"})
}

// invitationID reads the {id} path segment. Invitation ids are ULIDs, so
// anything else cannot name an invitation.
func invitationID(r *http.Request) (string, error) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		return "", service.ErrInvitationNotFound
	}
	return id.String(), nil
}
