package domain

import "time"

// StaffEntry is one non-owner member of a farm.
type StaffEntry struct {
	UserID  string
	Role    StaffRole
	AddedAt time.Time
}

// Farm is a tenant. Staff never contains OwnerID and lists each user once.
type Farm struct {
	ID        string
	Name      string
	OwnerID   string // immutable
	Location  *string
	Staff     []StaffEntry // never contains OwnerID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StaffRoleOf returns userID's staff role on f.
func (f Farm) StaffRoleOf(userID string) (StaffRole, bool) {
	for _, s := range f.Staff {
		if s.UserID == userID {
			return s.Role, true
		}
	}
	return "", false
}

// DefaultFarmName is used for personal farms created on the user's behalf.
func DefaultFarmName(displayName string) string {
	if displayName == "" {
		return "My Farm"
	}
	return displayName + "'s Farm"
}
