package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrExpired            = errors.New("expired")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrStore              = errors.New("store error")
	ErrInvalidRequest     = errors.New("invalid request")
)

// Error is a specific failure with a human-readable message. It unwraps to
// its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrInvitationNotFound   = &Error{ErrNotFound, "invitation not found"}
	ErrInvitationNotPending = &Error{ErrConflict, "invitation is no longer pending"}
	ErrInvitationExpired    = &Error{ErrExpired, "invitation has expired"}
	ErrInviterFarmGone      = &Error{ErrNotFound, "the inviting farm no longer exists"}
	ErrAlreadyInvited       = &Error{ErrConflict, "an invitation for this email is already pending"}
	ErrAlreadyMember        = &Error{ErrConflict, "user is already a member of this farm"}
	ErrOwnerHasStaff        = &Error{ErrConflict, "owners with staff cannot join another farm; remove your staff first"}
	ErrOwnerAway            = &Error{ErrConflict, "the inviting farm's owner has joined another farm"}
	ErrEmailTaken           = &Error{ErrConflict, "email is already registered to another account"}
	ErrNotInvitee           = &Error{ErrPermissionDenied, "invitation is addressed to someone else"}
	ErrEmailNotVerified     = &Error{ErrPermissionDenied, "a verified email is required"}
	ErrNotOnFarm            = &Error{ErrPermissionDenied, "you are not a member of this farm"}
	ErrUserNotFound         = &Error{ErrNotFound, "user not found"}
	ErrNotStaff             = &Error{ErrNotFound, "user is not staff on this farm"}
	ErrCannotRemoveOwner    = &Error{ErrConflict, "the farm owner cannot be removed"}
	ErrMissingPrincipal     = &Error{ErrNotAuthenticated, "no authenticated principal"}
	ErrInvalidEmail         = &Error{ErrInvalidRequest, "invalid email address"}
	ErrInvalidRole          = &Error{ErrInvalidRequest, "role must be one of admin, editor, viewer"}
	ErrInvalidPlan          = &Error{ErrInvalidRequest, "plan must be one of free, pro, agribusiness"}
	ErrInvalidStatus        = &Error{ErrInvalidRequest, "unknown subscription status"}
	ErrInvalidFarmName      = &Error{ErrInvalidRequest, "farm name must not be empty"}
	ErrInvalidEvent         = &Error{ErrInvalidRequest, "plan change event requires an id and user"}
)

func denied(role domain.Role, c domain.Capability) error {
	name := role.String()
	if name == "" {
		name = "none"
	}
	return &Error{ErrPermissionDenied, fmt.Sprintf("role %q may not %s", name, c)}
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStore, err)
}

// Kind returns a stable label for err's kind, for logs, metrics and API
// error codes.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrIntegrityViolation):
		return "integrity_violation"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return "store_error"
	}
}

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}
