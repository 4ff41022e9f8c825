package farmsdk

import (
	"context"
	"net/http"
	"net/url"
)

func farmPath(farmID string, rest ...string) string {
	p := "/v1/farms/" + url.PathEscape(farmID)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// UpdateFarm changes the farm's name and location.
func (s *Session) UpdateFarm(ctx context.Context, farmID string, req UpdateFarmRequest) (*FarmResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, farmPath(farmID), req)
	if err != nil {
		return nil, err
	}

	var out FarmResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveStaff removes userID from the farm's staff.
func (s *Session) RemoveStaff(ctx context.Context, farmID, userID string) (*RemoveStaffResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, farmPath(farmID, "staff", url.PathEscape(userID)), nil)
	if err != nil {
		return nil, err
	}

	var out RemoveStaffResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Invite creates an invitation to the farm.
func (s *Session) Invite(ctx context.Context, farmID string, req InviteRequest) (*InviteResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, farmPath(farmID, "invitations"), req)
	if err != nil {
		return nil, err
	}

	var out InviteResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFarmInvitations returns the farm's active invitations.
func (s *Session) ListFarmInvitations(ctx context.Context, farmID string) ([]Invitation, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, farmPath(farmID, "invitations"), nil)
	if err != nil {
		return nil, err
	}

	var out InvitationsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Invitations, nil
}
