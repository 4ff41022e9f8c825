package farmsdk

import (
	"context"
	"net/http"
	"net/url"
)

// MyInvitations returns active invitations addressed to the caller.
func (s *Session) MyInvitations(ctx context.Context) ([]Invitation, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/invitations", nil)
	if err != nil {
		return nil, err
	}

	var out InvitationsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Invitations, nil
}

// Redeem accepts the invitation identified by an opaque token.
func (s *Session) Redeem(ctx context.Context, token string) (*AcceptResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/invitations/redeem", RedeemRequest{Token: token})
	if err != nil {
		return nil, err
	}

	var out AcceptResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Accept(ctx context.Context, invitationID string) (*AcceptResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/invitations/"+url.PathEscape(invitationID)+"/accept", nil)
	if err != nil {
		return nil, err
	}

	var out AcceptResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Decline(ctx context.Context, invitationID string) error {
	return s.invitationAction(ctx, invitationID, "decline")
}

func (s *Session) Revoke(ctx context.Context, invitationID string) error {
	return s.invitationAction(ctx, invitationID, "revoke")
}

func (s *Session) invitationAction(ctx context.Context, invitationID, action string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/invitations/"+url.PathEscape(invitationID)+"/"+action, nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
