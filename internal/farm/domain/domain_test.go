package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		owner   bool
		staff   bool
		wantErr bool
	}{
		{in: "free", owner: true},
		{in: "pro", owner: true},
		{in: "agribusiness", owner: true},
		{in: "admin", staff: true},
		{in: "editor", staff: true},
		{in: "viewer", staff: true},
		{in: ""},
		{in: "owner", wantErr: true},
		{in: "Admin", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			r, err := domain.ParseRole(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, domain.ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.owner, r.IsOwner())
			require.Equal(t, tc.staff, r.IsStaff())
			require.Equal(t, tc.in, r.String())
		})
	}
}

func TestRoleJSON(t *testing.T) {
	b, err := json.Marshal(domain.OwnerRole(domain.PlanPro))
	require.NoError(t, err)
	require.JSONEq(t, `"pro"`, string(b))

	b, err = json.Marshal(domain.Role{})
	require.NoError(t, err)
	require.Equal(t, "null", string(b))

	var r domain.Role
	require.NoError(t, json.Unmarshal([]byte(`"editor"`), &r))
	staff, ok := r.Staff()
	require.True(t, ok)
	require.Equal(t, domain.StaffEditor, staff)
}

func TestCapabilityTable(t *testing.T) {
	owner := domain.OwnerRole(domain.PlanFree)
	admin := domain.StaffRoleOf(domain.StaffAdmin)
	editor := domain.StaffRoleOf(domain.StaffEditor)
	viewer := domain.StaffRoleOf(domain.StaffViewer)

	want := map[domain.Capability][4]bool{
		domain.CapInviteStaff:       {true, true, false, false},
		domain.CapRemoveStaff:       {true, true, false, false},
		domain.CapRevokeInvitation:  {true, true, false, false},
		domain.CapChangeFarmDetails: {true, false, false, false},
		domain.CapManageBilling:     {true, false, false, false},
		domain.CapEditFarmRecords:   {true, true, true, false},
		domain.CapViewFarmRecords:   {true, true, true, true},
	}
	require.Len(t, want, len(domain.AllCapabilities))

	for c, row := range want {
		t.Run(string(c), func(t *testing.T) {
			for i, r := range []domain.Role{owner, admin, editor, viewer} {
				require.Equal(t, row[i], r.Allows(c), "role %s", r)
			}
			require.False(t, domain.Role{}.Allows(c))
		})
	}
}

func TestCanRequiresFarm(t *testing.T) {
	view := domain.AccountView{Role: domain.OwnerRole(domain.PlanPro)}
	require.False(t, domain.Can(view, domain.CapViewFarmRecords))
	require.Empty(t, view.Capabilities())

	view.Farm = &domain.Farm{ID: "f1"}
	require.True(t, domain.Can(view, domain.CapManageBilling))
	require.Len(t, view.Capabilities(), len(domain.AllCapabilities))

	require.False(t, domain.Can(view, domain.Capability("launch_rockets")))
}

func TestInvitationExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	inv := domain.Invitation{Status: domain.InvitationPending, ExpiresAt: now.Add(time.Hour)}

	require.True(t, inv.IsActive(now))
	require.False(t, inv.IsActive(now.Add(time.Hour)), "expiry instant is already expired")
	require.True(t, inv.IsExpired(now.Add(2*time.Hour)))

	inv.Status = domain.InvitationRevoked
	require.False(t, inv.IsActive(now))
	require.True(t, inv.Status.IsTerminal())
}

func TestInvitationAddressedTo(t *testing.T) {
	inv := domain.Invitation{InvitedEmail: "alice@example.com"}

	require.True(t, inv.AddressedTo(domain.Principal{UserID: "u1", Email: "alice@example.com", EmailVerified: true}))
	require.False(t, inv.AddressedTo(domain.Principal{UserID: "u1", Email: "alice@example.com"}), "unverified email")
	require.False(t, inv.AddressedTo(domain.Principal{UserID: "u2", Email: "bob@example.com", EmailVerified: true}))

	inv.InvitedUserID = "u3"
	require.True(t, inv.AddressedTo(domain.Principal{UserID: "u3"}))
}

func TestNormalizeEmail(t *testing.T) {
	got, err := domain.NormalizeEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got)

	for _, bad := range []string{"", "not-an-email", "Alice <alice@example.com>"} {
		_, err := domain.NormalizeEmail(bad)
		require.ErrorIs(t, err, domain.ErrInvalidEmail, bad)
	}
}
