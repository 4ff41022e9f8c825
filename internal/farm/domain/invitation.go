package domain

import "time"

// InvitationStatus is the lifecycle state of an invitation. Every state but
// pending is terminal.
type InvitationStatus string

const (
	InvitationPending         InvitationStatus = "pending"
	InvitationAccepted        InvitationStatus = "accepted"
	InvitationDeclined        InvitationStatus = "declined"
	InvitationRevoked         InvitationStatus = "revoked"
	InvitationExpired         InvitationStatus = "expired"
	InvitationErrFarmNotFound InvitationStatus = "error_farm_not_found"
)

// IsTerminal reports whether no further transition is possible.
func (s InvitationStatus) IsTerminal() bool { return s != InvitationPending }

// Invitation is a time-boxed offer of a staff role on InviterFarmID.
type Invitation struct {
	ID            string
	InviterFarmID string
	InviterUserID string
	InvitedEmail  string // lowercased
	InvitedUserID string // empty until resolved
	InvitedRole   StaffRole
	Status        InvitationStatus
	TokenHash     string // fingerprint of the opaque token; the token itself is never stored
	ExpiresAt     time.Time
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}

// IsExpired is true once now has reached ExpiresAt, whatever the status.
func (i Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// IsActive is pending and not yet expired. Expired-but-pending records are inert.
func (i Invitation) IsActive(now time.Time) bool {
	return i.Status == InvitationPending && !i.IsExpired(now)
}

// AddressedTo reports whether p is the invitee: by resolved user id, or by
// verified email.
func (i Invitation) AddressedTo(p Principal) bool {
	if i.InvitedUserID != "" && i.InvitedUserID == p.UserID {
		return true
	}
	return p.EmailVerified && p.Email != "" && p.Email == i.InvitedEmail
}
