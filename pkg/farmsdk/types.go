package farmsdk

import "time"

// ============================================================================
// Envelopes
// ============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Success          bool   `json:"success"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// MessageResponse acknowledges a mutation that returns nothing else.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ============================================================================
// Account
// ============================================================================

// RegisterRequest creates the caller's account and personal farm. FarmName
// defaults to "<DisplayName>'s Farm".
type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	FarmName    string `json:"farm_name,omitempty"`
}

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	DisplayName        string    `json:"display_name"`
	FarmID             string    `json:"farm_id,omitempty"`
	IsFarmOwner        bool      `json:"is_farm_owner"`
	SelectedPlan       string    `json:"selected_plan"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Farm struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	Location  *string   `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StaffMember struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// AccountResponse is the caller's resolved identity. Role is a plan tier
// for owners, a staff role for staff, and null when the account has no
// usable farm.
type AccountResponse struct {
	Success      bool          `json:"success"`
	User         User          `json:"user"`
	Farm         *Farm         `json:"farm,omitempty"`
	Role         *string       `json:"role"`
	Staff        []StaffMember `json:"staff,omitempty"`
	Capabilities []string      `json:"capabilities"`
	Anomaly      string        `json:"anomaly,omitempty"`
}

// ============================================================================
// Farms
// ============================================================================

// UpdateFarmRequest replaces the farm's name and location. A null or blank
// location clears it.
type UpdateFarmRequest struct {
	Name     string  `json:"name"`
	Location *string `json:"location"`
}

type FarmResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Farm    Farm   `json:"farm"`
}

type RemoveStaffResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	UserID      string `json:"user_id"`
	FarmID      string `json:"farm_id"`
	CreatedFarm bool   `json:"created_farm"`
}

// ============================================================================
// Invitations
// ============================================================================

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Invitation struct {
	ID            string     `json:"id"`
	FarmID        string     `json:"farm_id"`
	InviterUserID string     `json:"inviter_user_id"`
	InvitedEmail  string     `json:"invited_email"`
	InvitedUserID string     `json:"invited_user_id,omitempty"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	ExpiresAt     time.Time  `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

// InviteResponse carries the opaque invitation token. It is only ever
// returned here.
type InviteResponse struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	Invitation Invitation `json:"invitation"`
	Token      string     `json:"token"`
}

type InvitationsResponse struct {
	Success     bool         `json:"success"`
	Invitations []Invitation `json:"invitations"`
}

type RedeemRequest struct {
	Token string `json:"token"`
}

type AcceptResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	InvitationID string `json:"invitation_id"`
	FarmID       string `json:"farm_id"`
	Role         string `json:"role"`
}

// ============================================================================
// Billing
// ============================================================================

// BillingEvent is a plan-change notification from the billing provider.
type BillingEvent struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Plan   string `json:"plan"`
	Status string `json:"status,omitempty"`
}

// WebhookResponse reports whether the event changed anything. Replayed
// events are accepted with Applied false.
type WebhookResponse struct {
	Success bool `json:"success"`
	Applied bool `json:"applied"`
}

// ============================================================================
// Health
// ============================================================================

type HealthChecks struct {
	Database string `json:"database"`
	Keys     string `json:"keys"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
