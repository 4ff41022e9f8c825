package http

import (
	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/pkg/farmsdk"
)

func toUser(u domain.User) farmsdk.User {
	return farmsdk.User{
		ID:                 u.ID,
		Email:              u.Email,
		DisplayName:        u.DisplayName,
		FarmID:             u.FarmID,
		IsFarmOwner:        u.IsFarmOwner,
		SelectedPlan:       string(u.SelectedPlan),
		SubscriptionStatus: string(u.SubscriptionStatus),
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func toFarm(f domain.Farm) farmsdk.Farm {
	return farmsdk.Farm{
		ID:        f.ID,
		Name:      f.Name,
		OwnerID:   f.OwnerID,
		Location:  f.Location,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func toAccount(v domain.AccountView) farmsdk.AccountResponse {
	out := farmsdk.AccountResponse{
		Success:      true,
		User:         toUser(v.User),
		Capabilities: []string{},
		Anomaly:      v.Anomaly,
	}
	if v.Farm != nil {
		f := toFarm(*v.Farm)
		out.Farm = &f
	}
	if !v.Role.IsZero() {
		role := v.Role.String()
		out.Role = &role
	}
	for _, s := range v.Staff {
		out.Staff = append(out.Staff, farmsdk.StaffMember{
			UserID:      s.UserID,
			Email:       s.Email,
			DisplayName: s.DisplayName,
			Role:        string(s.Role),
		})
	}
	for _, c := range v.Capabilities() {
		out.Capabilities = append(out.Capabilities, string(c))
	}
	return out
}

func toInvitation(inv domain.Invitation) farmsdk.Invitation {
	return farmsdk.Invitation{
		ID:            inv.ID,
		FarmID:        inv.InviterFarmID,
		InviterUserID: inv.InviterUserID,
		InvitedEmail:  inv.InvitedEmail,
		InvitedUserID: inv.InvitedUserID,
		Role:          string(inv.InvitedRole),
		Status:        string(inv.Status),
		ExpiresAt:     inv.ExpiresAt,
		CreatedAt:     inv.CreatedAt,
		ResolvedAt:    inv.ResolvedAt,
	}
}

func toInvitations(list []domain.Invitation) []farmsdk.Invitation {
	out := make([]farmsdk.Invitation, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvitation(inv))
	}
	return out
}
