package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	farmhttp "github.com/aussiebroadwan/farmstead/internal/farm/http"
	"github.com/aussiebroadwan/farmstead/internal/farm/metrics"
	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/internal/farm/store/drivers/sqlite"
	"github.com/aussiebroadwan/farmstead/pkg/cryptox"
	"github.com/aussiebroadwan/farmstead/pkg/farmsdk"
	"github.com/aussiebroadwan/farmstead/pkg/idx"
	"github.com/aussiebroadwan/farmstead/pkg/jwtx"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	issuer        = "https://id.example.test"
	billingSecret = "whsec_test"
)

type testServer struct {
	srv    *httptest.Server
	client *farmsdk.Client
	signer *jwtx.EdDSASigner
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "farm.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	identity := &service.IdentityService{Store: st, Metrics: m}
	router := farmhttp.NewRouter(keys, jwtx.NewVerifier(keys, issuer, nil), "test", st, slogx.Discard())
	router.IdentityService = identity
	router.AccountService = &service.AccountService{Store: st, Identity: identity}
	router.InvitationService = &service.InvitationService{Store: st, Identity: identity, Metrics: m}
	router.MembershipService = &service.MembershipService{Store: st, Identity: identity, Metrics: m}
	router.PlanService = &service.PlanService{Store: st, Identity: identity, Metrics: m}
	router.BillingSecret = billingSecret
	router.Gatherer = reg
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, client: farmsdk.NewClient(srv.URL), signer: signer}
}

func (ts *testServer) session(t *testing.T, userID, email string, verified bool) *farmsdk.Session {
	t.Helper()
	claims := jwtx.NewPrincipalClaims(userID, email, verified, time.Hour, issuer, nil, time.Now().UTC())
	token, err := ts.signer.Sign(claims)
	require.NoError(t, err)
	return ts.client.WithToken(token)
}

func (ts *testServer) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := ts.srv.Client().Get(ts.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestInvitationRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	owner := ts.session(t, "owner-1", "Dana@Example.com", true)
	sam := ts.session(t, "sam-1", "sam@example.com", true)

	acct, err := owner.Register(ctx, farmsdk.RegisterRequest{DisplayName: "Dana"})
	require.NoError(t, err)
	require.NotNil(t, acct.Farm)
	require.Equal(t, "Dana's Farm", acct.Farm.Name)
	require.Equal(t, "dana@example.com", acct.User.Email)
	require.NotNil(t, acct.Role)
	require.Equal(t, "free", *acct.Role)
	require.Contains(t, acct.Capabilities, "invite_staff")
	farmID := acct.Farm.ID

	_, err = sam.Register(ctx, farmsdk.RegisterRequest{DisplayName: "Sam"})
	require.NoError(t, err)

	created, err := owner.Invite(ctx, farmID, farmsdk.InviteRequest{Email: "SAM@example.com", Role: "editor"})
	require.NoError(t, err)
	require.Equal(t, "pending", created.Invitation.Status)
	require.Equal(t, "sam@example.com", created.Invitation.InvitedEmail)
	require.NotEmpty(t, created.Token)

	listed, err := owner.ListFarmInvitations(ctx, farmID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	mine, err := sam.MyInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, created.Invitation.ID, mine[0].ID)

	accepted, err := sam.Accept(ctx, created.Invitation.ID)
	require.NoError(t, err)
	require.Equal(t, farmID, accepted.FarmID)
	require.Equal(t, "editor", accepted.Role)

	samAcct, err := sam.Account(ctx)
	require.NoError(t, err)
	require.Equal(t, farmID, samAcct.Farm.ID)
	require.Equal(t, "editor", *samAcct.Role)
	require.Contains(t, samAcct.Capabilities, "edit_farm_records")
	require.NotContains(t, samAcct.Capabilities, "invite_staff")

	ownerAcct, err := owner.Account(ctx)
	require.NoError(t, err)
	require.Len(t, ownerAcct.Staff, 1)
	require.Equal(t, "sam-1", ownerAcct.Staff[0].UserID)

	_, err = sam.Accept(ctx, created.Invitation.ID)
	require.ErrorIs(t, err, farmsdk.ErrConflict)

	removed, err := owner.RemoveStaff(ctx, farmID, "sam-1")
	require.NoError(t, err)
	require.False(t, removed.CreatedFarm)

	samAcct, err = sam.Account(ctx)
	require.NoError(t, err)
	require.Equal(t, removed.FarmID, samAcct.Farm.ID)
	require.Equal(t, "free", *samAcct.Role)
}

func TestRedeemAndDeclineAndRevoke(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	owner := ts.session(t, "owner-1", "dana@example.com", true)
	lee := ts.session(t, "lee-1", "lee@example.com", true)

	acct, err := owner.Register(ctx, farmsdk.RegisterRequest{DisplayName: "Dana", FarmName: "Ridgeview"})
	require.NoError(t, err)
	require.Equal(t, "Ridgeview", acct.Farm.Name)
	farmID := acct.Farm.ID

	first, err := owner.Invite(ctx, farmID, farmsdk.InviteRequest{Email: "lee@example.com", Role: "viewer"})
	require.NoError(t, err)

	_, err = owner.Invite(ctx, farmID, farmsdk.InviteRequest{Email: "lee@example.com", Role: "admin"})
	require.ErrorIs(t, err, farmsdk.ErrConflict)

	require.NoError(t, lee.Decline(ctx, first.Invitation.ID))
	require.ErrorIs(t, lee.Decline(ctx, first.Invitation.ID), farmsdk.ErrConflict)

	second, err := owner.Invite(ctx, farmID, farmsdk.InviteRequest{Email: "lee@example.com", Role: "viewer"})
	require.NoError(t, err)
	require.NoError(t, owner.Revoke(ctx, second.Invitation.ID))
	_, err = lee.Redeem(ctx, second.Token)
	require.ErrorIs(t, err, farmsdk.ErrConflict)

	third, err := owner.Invite(ctx, farmID, farmsdk.InviteRequest{Email: "lee@example.com", Role: "viewer"})
	require.NoError(t, err)

	// Declining never needed an account; joining does.
	_, err = lee.Redeem(ctx, third.Token)
	require.ErrorIs(t, err, farmsdk.ErrNotFound)
	_, err = lee.Register(ctx, farmsdk.RegisterRequest{DisplayName: "Lee"})
	require.NoError(t, err)

	accepted, err := lee.Redeem(ctx, third.Token)
	require.NoError(t, err)
	require.Equal(t, "viewer", accepted.Role)

	_, err = lee.Redeem(ctx, "not-a-token")
	require.ErrorIs(t, err, farmsdk.ErrNotFound)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	owner := ts.session(t, "owner-1", "dana@example.com", true)
	acct, err := owner.Register(ctx, farmsdk.RegisterRequest{DisplayName: "Dana"})
	require.NoError(t, err)
	farmID := acct.Farm.ID

	created, err := owner.Invite(ctx, farmID, farmsdk.InviteRequest{Email: "sam@example.com", Role: "editor"})
	require.NoError(t, err)

	t.Run("no token", func(t *testing.T) {
		_, err := ts.client.WithToken("").Account(ctx)
		var apiErr *farmsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("unregistered", func(t *testing.T) {
		_, err := ts.session(t, "ghost", "ghost@example.com", true).Account(ctx)
		require.ErrorIs(t, err, farmsdk.ErrNotFound)
	})

	t.Run("wrong invitee", func(t *testing.T) {
		_, err := ts.session(t, "eve-1", "eve@example.com", true).Accept(ctx, created.Invitation.ID)
		require.ErrorIs(t, err, farmsdk.ErrPermissionDenied)
	})

	t.Run("unverified email", func(t *testing.T) {
		_, err := ts.session(t, "sam-1", "sam@example.com", false).MyInvitations(ctx)
		require.ErrorIs(t, err, farmsdk.ErrPermissionDenied)
	})

	t.Run("unverified registration", func(t *testing.T) {
		_, err := ts.session(t, "mal-1", "sam@example.com", false).Register(ctx, farmsdk.RegisterRequest{DisplayName: "Mal"})
		require.ErrorIs(t, err, farmsdk.ErrPermissionDenied)
	})

	t.Run("unknown invitation", func(t *testing.T) {
		_, err := owner.Accept(ctx, "01JNOPE")
		require.ErrorIs(t, err, farmsdk.ErrNotFound)

		_, err = owner.Accept(ctx, idx.New().String())
		require.ErrorIs(t, err, farmsdk.ErrNotFound)

		require.ErrorIs(t, owner.Decline(ctx, "not-an-id"), farmsdk.ErrNotFound)
		require.ErrorIs(t, owner.Revoke(ctx, "not-an-id"), farmsdk.ErrNotFound)
	})

	t.Run("bad role", func(t *testing.T) {
		_, err := owner.Invite(ctx, farmID, farmsdk.InviteRequest{Email: "x@example.com", Role: "owner"})
		require.ErrorIs(t, err, farmsdk.ErrInvalidRequest)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := owner.Invite(ctx, farmID, farmsdk.InviteRequest{Role: "viewer"})
		require.ErrorIs(t, err, farmsdk.ErrInvalidRequest)
	})

	t.Run("remove owner", func(t *testing.T) {
		_, err := owner.RemoveStaff(ctx, farmID, "owner-1")
		require.Error(t, err)
	})

	t.Run("outsider updates farm", func(t *testing.T) {
		other := ts.session(t, "other-1", "other@example.com", true)
		_, err := other.Register(ctx, farmsdk.RegisterRequest{DisplayName: "Other"})
		require.NoError(t, err)
		_, err = other.UpdateFarm(ctx, farmID, farmsdk.UpdateFarmRequest{Name: "Mine now"})
		require.ErrorIs(t, err, farmsdk.ErrPermissionDenied)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPatch, ts.srv.URL+"/v1/farms/"+farmID, strings.NewReader(`{"name":"x","acres":40}`))
		require.NoError(t, err)
		token, err := ts.signer.Sign(jwtx.NewPrincipalClaims("owner-1", "dana@example.com", true, time.Hour, issuer, nil, time.Now().UTC()))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := ts.srv.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateFarm(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	owner := ts.session(t, "owner-1", "dana@example.com", true)
	acct, err := owner.Register(ctx, farmsdk.RegisterRequest{DisplayName: "Dana"})
	require.NoError(t, err)

	loc := "Wagga Wagga"
	out, err := owner.UpdateFarm(ctx, acct.Farm.ID, farmsdk.UpdateFarmRequest{Name: "Ridgeview", Location: &loc})
	require.NoError(t, err)
	require.Equal(t, "Ridgeview", out.Farm.Name)
	require.NotNil(t, out.Farm.Location)
	require.Equal(t, loc, *out.Farm.Location)

	_, err = owner.UpdateFarm(ctx, acct.Farm.ID, farmsdk.UpdateFarmRequest{Name: "  "})
	require.ErrorIs(t, err, farmsdk.ErrInvalidRequest)
}

func TestBillingWebhook(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	owner := ts.session(t, "owner-1", "dana@example.com", true)
	_, err := owner.Register(ctx, farmsdk.RegisterRequest{DisplayName: "Dana"})
	require.NoError(t, err)

	ev := farmsdk.BillingEvent{ID: "evt_1", Type: "plan.changed", UserID: "owner-1", Plan: "agribusiness", Status: "active"}

	_, err = ts.client.SendBillingEvent(ctx, "wrong", ev)
	require.ErrorIs(t, err, farmsdk.ErrNotAuthenticated)

	out, err := ts.client.SendBillingEvent(ctx, billingSecret, ev)
	require.NoError(t, err)
	require.True(t, out.Applied)

	acct, err := owner.Account(ctx)
	require.NoError(t, err)
	require.Equal(t, "agribusiness", *acct.Role)
	require.Equal(t, "active", acct.User.SubscriptionStatus)

	out, err = ts.client.SendBillingEvent(ctx, billingSecret, ev)
	require.NoError(t, err)
	require.False(t, out.Applied)

	_, err = ts.client.SendBillingEvent(ctx, billingSecret, farmsdk.BillingEvent{ID: "evt_2", Type: "plan.changed", UserID: "owner-1", Plan: "gold"})
	require.ErrorIs(t, err, farmsdk.ErrInvalidRequest)

	_, err = ts.client.SendBillingEvent(ctx, billingSecret, farmsdk.BillingEvent{ID: "evt_3", Type: "plan.changed", UserID: "nobody", Plan: "pro"})
	require.ErrorIs(t, err, farmsdk.ErrNotFound)

	out, err = ts.client.SendBillingEvent(ctx, billingSecret, farmsdk.BillingEvent{ID: "evt_4", Type: "invoice.paid"})
	require.NoError(t, err)
	require.False(t, out.Applied)

	acct, err = owner.DowngradeToFree(ctx)
	require.NoError(t, err)
	require.Equal(t, "free", *acct.Role)
	require.Equal(t, "canceled", acct.User.SubscriptionStatus)
}

func TestSystemEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	live, err := ts.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := ts.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Keys)

	owner := ts.session(t, "owner-1", "dana@example.com", true)
	acct, err := owner.Register(ctx, farmsdk.RegisterRequest{DisplayName: "Dana"})
	require.NoError(t, err)
	_, err = owner.Invite(ctx, acct.Farm.ID, farmsdk.InviteRequest{Email: "sam@example.com", Role: "viewer"})
	require.NoError(t, err)

	code, body := ts.get(t, "/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `farmstead_invitation_transitions_total{status="pending"} 1`)

	code, body = ts.get(t, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Farmstead API")
}
