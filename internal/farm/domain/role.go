package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownPlan = errors.New("domain: unknown plan tier")
	ErrUnknownRole = errors.New("domain: unknown role")
)

// PlanTier is a subscription plan. For a farm owner it is also their role.
type PlanTier string

const (
	PlanFree         PlanTier = "free"
	PlanPro          PlanTier = "pro"
	PlanAgribusiness PlanTier = "agribusiness"
)

func ParsePlanTier(s string) (PlanTier, error) {
	switch p := PlanTier(s); p {
	case PlanFree, PlanPro, PlanAgribusiness:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlan, s)
}

// StaffRole is the role held by a non-owner member. It is independent of
// any plan.
type StaffRole string

const (
	StaffAdmin  StaffRole = "admin"
	StaffEditor StaffRole = "editor"
	StaffViewer StaffRole = "viewer"
)

func ParseStaffRole(s string) (StaffRole, error) {
	switch r := StaffRole(s); r {
	case StaffAdmin, StaffEditor, StaffViewer:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

type roleKind uint8

const (
	roleNone roleKind = iota
	roleOwner
	roleStaff
)

// Role is either Owner(plan) or Staff(admin|editor|viewer). The zero value
// is "no role", which grants nothing.
type Role struct {
	kind  roleKind
	plan  PlanTier
	staff StaffRole
}

func OwnerRole(plan PlanTier) Role { return Role{kind: roleOwner, plan: plan} }
func StaffRoleOf(r StaffRole) Role { return Role{kind: roleStaff, staff: r} }

// ParseRole decodes the stored string form. Plan tiers and staff roles are
// disjoint sets so the encoding is unambiguous. "" decodes to no role.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return Role{}, nil
	}
	if p, err := ParsePlanTier(s); err == nil {
		return OwnerRole(p), nil
	}
	if r, err := ParseStaffRole(s); err == nil {
		return StaffRoleOf(r), nil
	}
	return Role{}, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) IsZero() bool  { return r.kind == roleNone }
func (r Role) IsOwner() bool { return r.kind == roleOwner }
func (r Role) IsStaff() bool { return r.kind == roleStaff }

// Plan returns the owner's plan tier, ok=false for staff or no role.
func (r Role) Plan() (PlanTier, bool) { return r.plan, r.kind == roleOwner }

// Staff returns the staff role, ok=false for owners or no role.
func (r Role) Staff() (StaffRole, bool) { return r.staff, r.kind == roleStaff }

func (r Role) String() string {
	switch r.kind {
	case roleOwner:
		return string(r.plan)
	case roleStaff:
		return string(r.staff)
	}
	return ""
}

// rank orders roles: owner > admin > editor > viewer > none.
func (r Role) rank() int {
	switch r.kind {
	case roleOwner:
		return 4
	case roleStaff:
		switch r.staff {
		case StaffAdmin:
			return 3
		case StaffEditor:
			return 2
		case StaffViewer:
			return 1
		}
	}
	return 0
}

func (r Role) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*r = Role{}
		return nil
	}
	parsed, err := ParseRole(*s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
