package domain

// StaffMember is a display projection of a StaffEntry.
type StaffMember struct {
	UserID      string
	Email       string
	DisplayName string
	Role        StaffRole
}

// AccountView is a user's resolved identity: who they are, which farm they
// are on and what role they hold there. Role is re-derived from the farm on
// every resolution, never read back from User.Role.
type AccountView struct {
	User  User
	Farm  *Farm // nil when farm-less
	Role  Role
	Staff []StaffMember // populated for owners only

	// Anomaly names an integrity problem degraded during resolution.
	Anomaly string
}
