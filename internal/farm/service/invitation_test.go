package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var (
	ownerP = principal("owner", "owner@example.com")
	aliceP = principal("alice", "alice@example.com")
	bobP   = principal("bob", "bob@example.com")
)

// Scenario A: an owner invites Alice as editor and she accepts.
func TestAcceptJoinsFarm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner", "owner@example.com")
	alicePersonal := h.register(t, "alice", "alice@example.com")

	created := h.invite(t, ownerP, owner.Farm.ID, "Alice@Example.com", domain.StaffEditor)
	require.NotEmpty(t, created.Token)
	require.NotEqual(t, created.Token, created.Invitation.TokenHash)
	require.Equal(t, "alice@example.com", created.Invitation.InvitedEmail)
	require.Equal(t, "alice", created.Invitation.InvitedUserID, "resolved eagerly")
	require.Equal(t, t0.Add(72*time.Hour), created.Invitation.ExpiresAt)

	accepted, err := h.invitations.Accept(ctx, aliceP, created.Invitation.ID)
	require.NoError(t, err)
	require.Equal(t, owner.Farm.ID, accepted.FarmID)
	require.Equal(t, domain.StaffEditor, accepted.Role)

	alice := h.resolve(t, "alice")
	require.Equal(t, owner.Farm.ID, alice.User.FarmID)
	require.False(t, alice.User.IsFarmOwner)
	staffRole, ok := alice.Role.Staff()
	require.True(t, ok)
	require.Equal(t, domain.StaffEditor, staffRole)
	require.Equal(t, "editor", alice.User.Role.String())
	require.True(t, domain.Can(alice, domain.CapEditFarmRecords))
	require.False(t, domain.Can(alice, domain.CapInviteStaff))

	f1 := h.farm(t, owner.Farm.ID)
	require.Equal(t, []domain.StaffEntry{{UserID: "alice", Role: domain.StaffEditor, AddedAt: t0}}, f1.Staff)

	ownerView := h.resolve(t, "owner")
	require.Equal(t, []domain.StaffMember{{
		UserID: "alice", Email: "alice@example.com", DisplayName: "alice", Role: domain.StaffEditor,
	}}, ownerView.Staff)

	// Alice's personal farm survives, just without her on it.
	personal := h.farm(t, alicePersonal.Farm.ID)
	require.Equal(t, "alice", personal.OwnerID)

	require.Equal(t, domain.InvitationAccepted, h.invitation(t, created.Invitation.ID).Status)
	requireConsistent(t, h, "alice")
	requireConsistent(t, h, "owner")
}

// Scenario C: a revoked invitation cannot be accepted.
func TestRevokedInvitationCannotBeAccepted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner", "owner@example.com")
	h.register(t, "bob", "bob@example.com")

	created := h.invite(t, ownerP, owner.Farm.ID, "bob@example.com", domain.StaffAdmin)
	require.NoError(t, h.invitations.Revoke(ctx, ownerP, created.Invitation.ID))

	_, err := h.invitations.Accept(ctx, bobP, created.Invitation.ID)
	require.ErrorIs(t, err, service.ErrConflict)

	bob := h.resolve(t, "bob")
	require.True(t, bob.User.IsFarmOwner)
	require.Empty(t, h.farm(t, owner.Farm.ID).Staff)
	require.Equal(t, domain.InvitationRevoked, h.invitation(t, created.Invitation.ID).Status)
}

func TestInviteSinglePending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner", "owner@example.com")

	first := h.invite(t, ownerP, owner.Farm.ID, "carol@example.com", domain.StaffViewer)

	_, err := h.invitations.Invite(ctx, ownerP, owner.Farm.ID, "CAROL@example.com", "editor")
	require.ErrorIs(t, err, service.ErrConflict)
	require.ErrorIs(t, err, service.ErrAlreadyInvited)

	active, err := h.invitations.ListForFarm(ctx, ownerP, owner.Farm.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	t.Run("expired pending frees the slot", func(t *testing.T) {
		h.advance(73 * time.Hour)

		second := h.invite(t, ownerP, owner.Farm.ID, "carol@example.com", domain.StaffEditor)
		require.NotEqual(t, first.Invitation.ID, second.Invitation.ID)
		require.Equal(t, domain.InvitationExpired, h.invitation(t, first.Invitation.ID).Status)
	})

	t.Run("existing member", func(t *testing.T) {
		_, err := h.invitations.Invite(ctx, ownerP, owner.Farm.ID, "owner@example.com", "admin")
		require.ErrorIs(t, err, service.ErrAlreadyMember)
	})
}

func TestConcurrentInviteCreatesOne(t *testing.T) {
	h := newHarness(t)
	owner := h.register(t, "owner", "owner@example.com")

	const n = 6
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.invitations.Invite(context.Background(), ownerP, owner.Farm.ID, "race@example.com", "viewer")
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, service.ErrAlreadyInvited)
	}
	require.Equal(t, 1, ok)
}

func TestInviteValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner", "owner@example.com")
	other := h.register(t, "other", "other@example.com")

	cases := []struct {
		name   string
		caller domain.Principal
		farmID string
		email  string
		role   string
		kind   error
	}{
		{"bad email", ownerP, owner.Farm.ID, "not-an-email", "viewer", service.ErrInvalidRequest},
		{"owner is not a staff role", ownerP, owner.Farm.ID, "x@example.com", "pro", service.ErrInvalidRequest},
		{"someone else's farm", ownerP, other.Farm.ID, "x@example.com", "viewer", service.ErrPermissionDenied},
		{"unregistered caller", principal("ghost", "ghost@example.com"), owner.Farm.ID, "x@example.com", "viewer", service.ErrNotFound},
		{"no principal", domain.Principal{}, owner.Farm.ID, "x@example.com", "viewer", service.ErrNotAuthenticated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.invitations.Invite(ctx, tc.caller, tc.farmID, tc.email, tc.role)
			require.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestStaffInvitePermissions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner", "owner@example.com")
	h.register(t, "alice", "alice@example.com")
	h.register(t, "bob", "bob@example.com")

	_, err := h.invitations.Accept(ctx, aliceP, h.invite(t, ownerP, owner.Farm.ID, "alice@example.com", domain.StaffAdmin).Invitation.ID)
	require.NoError(t, err)
	_, err = h.invitations.Accept(ctx, bobP, h.invite(t, ownerP, owner.Farm.ID, "bob@example.com", domain.StaffEditor).Invitation.ID)
	require.NoError(t, err)

	t.Run("admin may invite and revoke", func(t *testing.T) {
		created := h.invite(t, aliceP, owner.Farm.ID, "dave@example.com", domain.StaffViewer)
		require.NoError(t, h.invitations.Revoke(ctx, aliceP, created.Invitation.ID))
	})

	t.Run("editor may not invite", func(t *testing.T) {
		_, err := h.invitations.Invite(ctx, bobP, owner.Farm.ID, "erin@example.com", "viewer")
		require.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("editor may not revoke or list", func(t *testing.T) {
		created := h.invite(t, ownerP, owner.Farm.ID, "frank@example.com", domain.StaffViewer)
		require.ErrorIs(t, h.invitations.Revoke(ctx, bobP, created.Invitation.ID), service.ErrPermissionDenied)
		require.Equal(t, domain.InvitationPending, h.invitation(t, created.Invitation.ID).Status)

		_, err := h.invitations.ListForFarm(ctx, bobP, owner.Farm.ID)
		require.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestAcceptPreconditions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner", "owner@example.com")
	h.register(t, "alice", "alice@example.com")
	h.register(t, "bob", "bob@example.com")

	t.Run("unknown invitation", func(t *testing.T) {
		_, err := h.invitations.Accept(ctx, aliceP, "nope")
		require.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("addressed to someone else", func(t *testing.T) {
		created := h.invite(t, ownerP, owner.Farm.ID, "alice@example.com", domain.StaffViewer)
		_, err := h.invitations.Accept(ctx, bobP, created.Invitation.ID)
		require.ErrorIs(t, err, service.ErrPermissionDenied)
		require.NoError(t, h.invitations.Revoke(ctx, ownerP, created.Invitation.ID))
	})

	t.Run("unverified email", func(t *testing.T) {
		created := h.invite(t, ownerP, owner.Farm.ID, "nobody@example.com", domain.StaffViewer)
		h.register(t, "nobody", "other-address@example.com")
		unverified := domain.Principal{UserID: "nobody", Email: "nobody@example.com"}

		_, err := h.invitations.Accept(ctx, unverified, created.Invitation.ID)
		require.ErrorIs(t, err, service.ErrEmailNotVerified)
	})

	t.Run("expired but still pending", func(t *testing.T) {
		created := h.invite(t, ownerP, owner.Farm.ID, "bob@example.com", domain.StaffViewer)
		h.advance(72 * time.Hour)
		defer func() { h.now = t0 }()

		_, err := h.invitations.Accept(ctx, bobP, created.Invitation.ID)
		require.ErrorIs(t, err, service.ErrExpired)
		require.Equal(t, domain.InvitationPending, h.invitation(t, created.Invitation.ID).Status)

		require.ErrorIs(t, h.invitations.Decline(ctx, bobP, created.Invitation.ID), service.ErrExpired)
		require.ErrorIs(t, h.invitations.Revoke(ctx, ownerP, created.Invitation.ID), service.ErrExpired)

		mine, err := h.invitations.ListMine(ctx, bobP)
		require.NoError(t, err)
		require.Empty(t, mine)
	})

	t.Run("accept twice", func(t *testing.T) {
		created := h.invite(t, ownerP, owner.Farm.ID, "alice@example.com", domain.StaffViewer)
		_, err := h.invitations.Accept(ctx, aliceP, created.Invitation.ID)
		require.NoError(t, err)

		_, err = h.invitations.Accept(ctx, aliceP, created.Invitation.ID)
		require.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("unregistered caller", func(t *testing.T) {
		created := h.invite(t, ownerP, owner.Farm.ID, "new@example.com", domain.StaffViewer)
		_, err := h.invitations.Accept(ctx, principal("new", "new@example.com"), created.Invitation.ID)
		require.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestAcceptMovesStaffBetweenFarms(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f1 := h.register(t, "owner", "owner@example.com").Farm.ID
	f2 := h.register(t, "owner2", "owner2@example.com").Farm.ID
	h.register(t, "alice", "alice@example.com")

	_, err := h.invitations.Accept(ctx, aliceP, h.invite(t, ownerP, f1, "alice@example.com", domain.StaffAdmin).Invitation.ID)
	require.NoError(t, err)

	owner2P := principal("owner2", "owner2@example.com")
	_, err = h.invitations.Accept(ctx, aliceP, h.invite(t, owner2P, f2, "alice@example.com", domain.StaffViewer).Invitation.ID)
	require.NoError(t, err)

	require.Empty(t, h.farm(t, f1).Staff)
	require.Len(t, h.farm(t, f2).Staff, 1)
	requireNoDuplicateStaff(t, h.farm(t, f1), h.farm(t, f2))
	requireConsistent(t, h, "alice")

	view := h.resolve(t, "alice")
	role, _ := view.Role.Staff()
	require.Equal(t, domain.StaffViewer, role)
}

func TestAcceptRejectsOwnerWithStaff(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f1 := h.register(t, "owner", "owner@example.com").Farm.ID
	f2 := h.register(t, "owner2", "owner2@example.com").Farm.ID
	h.register(t, "alice", "alice@example.com")

	_, err := h.invitations.Accept(ctx, aliceP, h.invite(t, ownerP, f1, "alice@example.com", domain.StaffEditor).Invitation.ID)
	require.NoError(t, err)

	created := h.invite(t, principal("owner2", "owner2@example.com"), f2, "owner@example.com", domain.StaffAdmin)
	_, err = h.invitations.Accept(ctx, ownerP, created.Invitation.ID)
	require.ErrorIs(t, err, service.ErrOwnerHasStaff)

	require.Equal(t, domain.InvitationPending, h.invitation(t, created.Invitation.ID).Status)
	requireConsistent(t, h, "owner")
	requireConsistent(t, h, "alice")
}

func TestAcceptRejectsFarmWhoseOwnerLeft(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f1 := h.register(t, "owner", "owner@example.com").Farm.ID
	a1 := h.register(t, "alice", "alice@example.com").Farm.ID
	h.register(t, "dave", "dave@example.com")

	// Alice invites Dave while she still runs A1, then joins F1 herself.
	stale := h.invite(t, aliceP, a1, "dave@example.com", domain.StaffAdmin)
	_, err := h.invitations.Accept(ctx, aliceP, h.invite(t, ownerP, f1, "alice@example.com", domain.StaffEditor).Invitation.ID)
	require.NoError(t, err)

	_, err = h.invitations.Accept(ctx, principal("dave", "dave@example.com"), stale.Invitation.ID)
	require.ErrorIs(t, err, service.ErrConflict)
	require.ErrorIs(t, err, service.ErrOwnerAway)

	require.Empty(t, h.farm(t, a1).Staff)
	require.Equal(t, domain.InvitationPending, h.invitation(t, stale.Invitation.ID).Status)
	requireConsistent(t, h, "dave")
	requireConsistent(t, h, "alice")

	// Once Alice is back on A1 the invitation is good again.
	_, err = h.membership.RemoveStaff(ctx, ownerP, f1, "alice")
	require.NoError(t, err)
	_, err = h.invitations.Accept(ctx, principal("dave", "dave@example.com"), stale.Invitation.ID)
	require.NoError(t, err)
	require.Len(t, h.farm(t, a1).Staff, 1)
}

func TestAcceptWhenInvitingFarmIsGone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f1 := h.register(t, "owner", "owner@example.com").Farm.ID
	alice := h.register(t, "alice", "alice@example.com")

	created := h.invite(t, ownerP, f1, "alice@example.com", domain.StaffEditor)

	_, err := h.rawDB(t).Exec(`DELETE FROM farms WHERE id = ?`, f1)
	require.NoError(t, err)

	_, err = h.invitations.Accept(ctx, aliceP, created.Invitation.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.ErrorIs(t, err, service.ErrInviterFarmGone)

	require.Equal(t, domain.InvitationErrFarmNotFound, h.invitation(t, created.Invitation.ID).Status)
	require.Equal(t, alice.Farm.ID, h.resolve(t, "alice").User.FarmID)
}

// failingStore hands out transactions whose UpdateMembership always fails,
// which is the last write of an accept.
type failingStore struct {
	store.Store
	err error
}

func (s *failingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&failingTx{baseTx: tx, err: s.err})
	})
}

// baseTx lets failingTx embed store.Tx without a field named Tx shadowing
// the Tx method.
type baseTx = store.Tx

type failingTx struct {
	baseTx
	err error
}

func (t *failingTx) Users() store.Users { return &failingUsers{Users: t.baseTx.Users(), err: t.err} }

type failingUsers struct {
	store.Users
	err error
}

func (u *failingUsers) UpdateMembership(context.Context, string, string, bool, domain.Role, time.Time) error {
	return u.err
}

func TestAcceptIsAtomic(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f1 := h.register(t, "owner", "owner@example.com").Farm.ID
	alice := h.register(t, "alice", "alice@example.com")
	created := h.invite(t, ownerP, f1, "alice@example.com", domain.StaffEditor)

	h.wire(&failingStore{Store: h.store, err: errors.New("disk on fire")})

	_, err := h.invitations.Accept(ctx, aliceP, created.Invitation.ID)
	require.ErrorIs(t, err, service.ErrStore)

	// Neither the staff entry nor the invitation claim survived.
	require.Empty(t, h.farm(t, f1).Staff)
	require.Equal(t, domain.InvitationPending, h.invitation(t, created.Invitation.ID).Status)
	after := h.resolve(t, "alice")
	require.Equal(t, alice.Farm.ID, after.User.FarmID)
	require.True(t, after.User.IsFarmOwner)
}

func TestConcurrentAcceptHasOneWinner(t *testing.T) {
	h := newHarness(t)
	f1 := h.register(t, "owner", "owner@example.com").Farm.ID
	h.register(t, "alice", "alice@example.com")
	created := h.invite(t, ownerP, f1, "alice@example.com", domain.StaffEditor)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.invitations.Accept(context.Background(), aliceP, created.Invitation.ID)
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, service.ErrConflict)
	}
	require.Equal(t, 1, wins)
	require.Len(t, h.farm(t, f1).Staff, 1)
}

func TestDeclineAndRevokeAreSingleShot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f1 := h.register(t, "owner", "owner@example.com").Farm.ID
	h.register(t, "alice", "alice@example.com")

	created := h.invite(t, ownerP, f1, "alice@example.com", domain.StaffViewer)
	require.NoError(t, h.invitations.Decline(ctx, aliceP, created.Invitation.ID))

	before := h.invitation(t, created.Invitation.ID)
	require.Equal(t, domain.InvitationDeclined, before.Status)

	require.ErrorIs(t, h.invitations.Decline(ctx, aliceP, created.Invitation.ID), service.ErrConflict)
	require.ErrorIs(t, h.invitations.Revoke(ctx, ownerP, created.Invitation.ID), service.ErrConflict)
	require.ErrorIs(t, h.invitations.Revoke(ctx, ownerP, "missing"), service.ErrNotFound)
	require.Equal(t, before, h.invitation(t, created.Invitation.ID))

	t.Run("only the invitee may decline", func(t *testing.T) {
		created := h.invite(t, ownerP, f1, "alice@example.com", domain.StaffViewer)
		require.ErrorIs(t, h.invitations.Decline(ctx, bobP, created.Invitation.ID), service.ErrPermissionDenied)
	})

	t.Run("only the inviting farm may revoke", func(t *testing.T) {
		h.register(t, "bob", "bob@example.com")
		pending, err := h.store.Invitations().GetPendingInvitation(ctx, f1, "alice@example.com")
		require.NoError(t, err)
		require.ErrorIs(t, h.invitations.Revoke(ctx, bobP, pending.ID), service.ErrPermissionDenied)
	})
}

func TestRedeemByToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f1 := h.register(t, "owner", "owner@example.com").Farm.ID
	h.register(t, "alice", "alice@example.com")
	created := h.invite(t, ownerP, f1, "alice@example.com", domain.StaffEditor)

	_, err := h.invitations.Redeem(ctx, aliceP, "not-the-token")
	require.ErrorIs(t, err, service.ErrNotFound)
	_, err = h.invitations.Redeem(ctx, aliceP, "")
	require.ErrorIs(t, err, service.ErrNotFound)

	accepted, err := h.invitations.Redeem(ctx, aliceP, created.Token)
	require.NoError(t, err)
	require.Equal(t, f1, accepted.FarmID)
	require.Equal(t, created.Invitation.ID, accepted.InvitationID)
}

func TestListings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f1 := h.register(t, "owner", "owner@example.com").Farm.ID
	f2 := h.register(t, "owner2", "owner2@example.com").Farm.ID

	h.invite(t, ownerP, f1, "alice@example.com", domain.StaffViewer)
	h.advance(time.Hour)
	h.invite(t, principal("owner2", "owner2@example.com"), f2, "alice@example.com", domain.StaffAdmin)

	mine, err := h.invitations.ListMine(ctx, aliceP)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, f2, mine[0].InviterFarmID, "newest first")

	_, err = h.invitations.ListMine(ctx, domain.Principal{UserID: "alice", Email: "alice@example.com"})
	require.ErrorIs(t, err, service.ErrEmailNotVerified)

	// The first invitation expires an hour before the second.
	h.advance(71 * time.Hour)
	mine, err = h.invitations.ListMine(ctx, aliceP)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	farmList, err := h.invitations.ListForFarm(ctx, ownerP, f1)
	require.NoError(t, err)
	require.Empty(t, farmList)
}

func TestSweepExpired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f1 := h.register(t, "owner", "owner@example.com").Farm.ID

	created := h.invite(t, ownerP, f1, "alice@example.com", domain.StaffViewer)
	h.invite(t, ownerP, f1, "bob@example.com", domain.StaffViewer)

	n, err := h.invitations.SweepExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	h.advance(72 * time.Hour)
	sweeper := service.NewHousekeepingService(h.invitations, slogx.Discard(), time.Minute)
	require.EqualValues(t, 2, sweeper.Sweep(ctx))

	inv := h.invitation(t, created.Invitation.ID)
	require.Equal(t, domain.InvitationExpired, inv.Status)
	require.NotNil(t, inv.ResolvedAt)
}
