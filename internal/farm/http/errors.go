package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/pkg/farmsdk"
	"github.com/aussiebroadwan/farmstead/pkg/httpx"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrExpired):
		return http.StatusGone
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error onto the API error envelope. Messages of
// specific errors are safe to show; anything else is logged and masked.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := slogx.FromContext(r.Context())
	status := statusFor(err)

	desc := "internal server error"
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		desc = svcErr.Msg
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("op", op), slog.Any("error", err))
		desc = "internal server error"
		if id := slogx.RequestID(r.Context()); id != "" {
			desc += " (request " + id + ")"
		}
	}

	httpx.WriteJSON(w, status, farmsdk.ErrorResponse{
		Error:            service.Kind(err),
		ErrorDescription: desc,
	})
}

func badRequest(w http.ResponseWriter, desc string) {
	httpx.WriteJSON(w, http.StatusBadRequest, farmsdk.ErrorResponse{
		Error:            farmsdk.ErrorCodeInvalidRequest,
		ErrorDescription: desc,
	})
}

// principal is the authenticated caller as the services see it.
func principal(r *http.Request) domain.Principal {
	id, _ := httpx.IdentityFromContext(r.Context())
	return domain.Principal{
		UserID:        id.UserID,
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
	}
}
