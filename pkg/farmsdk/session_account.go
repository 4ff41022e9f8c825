package farmsdk

import (
	"context"
	"net/http"
)

// Register creates the caller's account, or returns it if it exists.
func (s *Session) Register(ctx context.Context, req RegisterRequest) (*AccountResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/account", req)
	if err != nil {
		return nil, err
	}

	var out AccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Account returns the caller's resolved identity and capabilities.
func (s *Session) Account(ctx context.Context) (*AccountResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/account", nil)
	if err != nil {
		return nil, err
	}

	var out AccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DowngradeToFree moves the caller's subscription to the free plan.
func (s *Session) DowngradeToFree(ctx context.Context) (*AccountResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/account/plan/downgrade", nil)
	if err != nil {
		return nil, err
	}

	var out AccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
