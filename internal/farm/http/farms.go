package http

import (
	"net/http"

	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/pkg/farmsdk"
	"github.com/aussiebroadwan/farmstead/pkg/httpx"
)

type FarmsHandler struct {
	MembershipService *service.MembershipService
}

// HandleUpdate godoc
//
//	@Summary		Update Farm
//	@Description	Changes the farm's name and location. Requires the change_farm_details capability on the caller's current farm.
//	@Tags			Farms
//	@Accept			json
//	@Produce		json
//	@Param			farmID	path		string						true	"Farm ID"
//	@Param			request	body		farmsdk.UpdateFarmRequest	true	"New details"
//	@Success		200		{object}	farmsdk.FarmResponse		"Updated farm"
//	@Failure		400		{object}	farmsdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	farmsdk.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/farms/{farmID} [patch].
func (h *FarmsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req farmsdk.UpdateFarmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	farm, err := h.MembershipService.UpdateFarm(r.Context(), principal(r), r.PathValue("farmID"), req.Name, req.Location)
	if err != nil {
		writeError(w, r, "update_farm", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, farmsdk.FarmResponse{
		Success: true,
		Message: "Farm updated",
		Farm:    toFarm(farm),
	})
}

// HandleRemoveStaff godoc
//
//	@Summary		Remove Staff
//	@Description	Removes a staff member from the farm and returns them to a farm they own, creating one if needed.
//	@Tags			Farms
//	@Produce		json
//	@Param			farmID	path		string						true	"Farm ID"
//	@Param			userID	path		string						true	"Staff user ID"
//	@Success		200		{object}	farmsdk.RemoveStaffResponse	"Where the removed user landed"
//	@Failure		403		{object}	farmsdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	farmsdk.ErrorResponse		"User is not staff on this farm"
//	@Failure		409		{object}	farmsdk.ErrorResponse		"The owner cannot be removed"
//	@Security		BearerAuth
//	@Router			/v1/farms/{farmID}/staff/{userID} [delete].
func (h *FarmsHandler) HandleRemoveStaff(w http.ResponseWriter, r *http.Request) {
	removed, err := h.MembershipService.RemoveStaff(r.Context(), principal(r), r.PathValue("farmID"), r.PathValue("userID"))
	if err != nil {
		writeError(w, r, "remove_staff", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, farmsdk.RemoveStaffResponse{
		Success:     true,
		Message:     "Staff member removed",
		UserID:      removed.UserID,
		FarmID:      removed.FarmID,
		CreatedFarm: removed.CreatedFarm,
	})
}
