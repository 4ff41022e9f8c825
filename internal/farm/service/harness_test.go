package service_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/domain"
	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/aussiebroadwan/farmstead/internal/farm/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

type harness struct {
	store  store.Store
	dbPath string
	now    time.Time

	identity    *service.IdentityService
	invitations *service.InvitationService
	membership  *service.MembershipService
	accounts    *service.AccountService
	plans       *service.PlanService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	path := filepath.Join(t.TempDir(), "farm.db")
	st, err := sqlite.NewStore(sqlite.DSN(path))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	h := &harness{dbPath: path, now: t0}
	h.wire(st)
	return h
}

// wire (re)builds the services on top of st, so tests can swap in a
// fault-injecting store.
func (h *harness) wire(st store.Store) {
	clock := func() time.Time { return h.now }

	h.store = st
	h.identity = &service.IdentityService{Store: st}
	h.invitations = &service.InvitationService{Store: st, Identity: h.identity, TTL: 72 * time.Hour, Now: clock}
	h.membership = &service.MembershipService{Store: st, Identity: h.identity, Now: clock}
	h.accounts = &service.AccountService{Store: st, Identity: h.identity, Now: clock}
	h.plans = &service.PlanService{Store: st, Identity: h.identity, Now: clock}
}

func (h *harness) advance(d time.Duration) { h.now = h.now.Add(d) }

// rawDB opens a second handle on the database for out-of-band tampering.
func (h *harness) rawDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", sqlite.DSN(h.dbPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func principal(userID, email string) domain.Principal {
	return domain.Principal{UserID: userID, Email: email, EmailVerified: true}
}

func (h *harness) register(t *testing.T, userID, email string) domain.AccountView {
	t.Helper()
	view, err := h.accounts.Register(context.Background(), principal(userID, email), userID, "")
	require.NoError(t, err)
	return view
}

func (h *harness) invite(t *testing.T, inviter domain.Principal, farmID, email string, role domain.StaffRole) service.Created {
	t.Helper()
	created, err := h.invitations.Invite(context.Background(), inviter, farmID, email, string(role))
	require.NoError(t, err)
	return created
}

func (h *harness) resolve(t *testing.T, userID string) domain.AccountView {
	t.Helper()
	view, err := h.identity.Resolve(context.Background(), userID)
	require.NoError(t, err)
	return view
}

func (h *harness) farm(t *testing.T, farmID string) domain.Farm {
	t.Helper()
	f, err := h.store.Farms().GetFarmByID(context.Background(), farmID)
	require.NoError(t, err)
	return f
}

func (h *harness) invitation(t *testing.T, id string) domain.Invitation {
	t.Helper()
	inv, err := h.store.Invitations().GetInvitationByID(context.Background(), id)
	require.NoError(t, err)
	return inv
}

// requireNoDuplicateStaff checks that every farm lists each user at most once.
func requireNoDuplicateStaff(t *testing.T, farms ...domain.Farm) {
	t.Helper()
	for _, f := range farms {
		seen := map[string]bool{}
		for _, s := range f.Staff {
			require.False(t, seen[s.UserID], "farm %s lists %s twice", f.ID, s.UserID)
			require.NotEqual(t, f.OwnerID, s.UserID, "owner listed as staff on %s", f.ID)
			seen[s.UserID] = true
		}
	}
}

// requireConsistent checks that the user's farm pointer agrees with the farm.
func requireConsistent(t *testing.T, h *harness, userID string) {
	t.Helper()
	view := h.resolve(t, userID)
	require.Empty(t, view.Anomaly)
	require.NotNil(t, view.Farm)
	if view.User.IsFarmOwner {
		require.Equal(t, userID, view.Farm.OwnerID)
		return
	}
	_, ok := view.Farm.StaffRoleOf(userID)
	require.True(t, ok, "user %s not listed on farm %s", userID, view.Farm.ID)
}
