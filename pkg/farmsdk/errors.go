package farmsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	ErrorCodeNotAuthenticated   = "not_authenticated"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodePermissionDenied   = "permission_denied"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeConflict           = "conflict"
	ErrorCodeExpired            = "expired"
	ErrorCodeIntegrityViolation = "integrity_violation"
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeRateLimited        = "rate_limited"
	ErrorCodeServerError        = "server_error"
)

// APIError is a decoded error response.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on Code, so errors.Is(err, farmsdk.ErrConflict) holds for any
// conflict regardless of description.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

var (
	ErrNotAuthenticated = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeNotAuthenticated}
	ErrPermissionDenied = &APIError{StatusCode: http.StatusForbidden, Code: ErrorCodePermissionDenied}
	ErrNotFound         = &APIError{StatusCode: http.StatusNotFound, Code: ErrorCodeNotFound}
	ErrConflict         = &APIError{StatusCode: http.StatusConflict, Code: ErrorCodeConflict}
	ErrExpired          = &APIError{StatusCode: http.StatusGone, Code: ErrorCodeExpired}
	ErrInvalidRequest   = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeInvalidRequest}
)

func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
