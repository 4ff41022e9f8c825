package domain

// Capability is a named permission checked before a mutation runs.
type Capability string

const (
	CapInviteStaff       Capability = "invite_staff"
	CapRemoveStaff       Capability = "remove_staff"
	CapRevokeInvitation  Capability = "revoke_invitation"
	CapChangeFarmDetails Capability = "change_farm_details"
	CapManageBilling     Capability = "manage_billing"
	CapEditFarmRecords   Capability = "edit_farm_records"
	CapViewFarmRecords   Capability = "view_farm_records"
)

// minimum rank required per capability; see Role.rank.
var capabilityRank = map[Capability]int{
	CapInviteStaff:       3,
	CapRemoveStaff:       3,
	CapRevokeInvitation:  3,
	CapChangeFarmDetails: 4,
	CapManageBilling:     4,
	CapEditFarmRecords:   2,
	CapViewFarmRecords:   1,
}

// AllCapabilities in a stable order.
var AllCapabilities = []Capability{
	CapInviteStaff,
	CapRemoveStaff,
	CapRevokeInvitation,
	CapChangeFarmDetails,
	CapManageBilling,
	CapEditFarmRecords,
	CapViewFarmRecords,
}

// Allows reports whether r grants c. Unknown capabilities are denied.
func (r Role) Allows(c Capability) bool {
	need, ok := capabilityRank[c]
	if !ok {
		return false
	}
	return r.rank() >= need
}

// Can is the authorization gate. A view without a farm or role grants nothing.
func Can(v AccountView, c Capability) bool {
	if v.Farm == nil {
		return false
	}
	return v.Role.Allows(c)
}

// Capabilities lists everything v is allowed to do.
func (v AccountView) Capabilities() []Capability {
	caps := make([]Capability, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if Can(v, c) {
			caps = append(caps, c)
		}
	}
	return caps
}
