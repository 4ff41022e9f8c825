package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/aussiebroadwan/farmstead/pkg/httpx"
	"github.com/aussiebroadwan/farmstead/pkg/jwtx"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/aussiebroadwan/farmstead/api/farm" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	IdentityService   *service.IdentityService
	AccountService    *service.AccountService
	InvitationService *service.InvitationService
	MembershipService *service.MembershipService
	PlanService       *service.PlanService

	// BillingSecret enables the billing webhook when non-empty.
	BillingSecret string

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccount()
	r.registerFarms()
	r.registerInvitations()
	r.registerBilling()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Farmstead API
//	@version		0.1.0
//	@description	Farm membership, staff invitations and plan-derived roles.
//	@description
//	@description				Callers authenticate with a bearer JWT from the identity provider. Roles and farms are never read from the token.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/farmstead
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
//
//	@securityDefinitions.apikey	BillingSecret
//	@in							header
//	@name						X-Billing-Secret
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{
		AccountService:  r.AccountService,
		IdentityService: r.IdentityService,
		PlanService:     r.PlanService,
	}

	// Registration creates rows, keep it tight
	r.Mux.Handle("POST /v1/account", r.secured(h.HandleRegister, httpx.StrictLimit))
	r.Mux.Handle("GET /v1/account", r.secured(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/account/plan/downgrade", r.secured(h.HandleDowngrade, httpx.StrictLimit))
}

func (r *Router) registerFarms() {
	h := &FarmsHandler{MembershipService: r.MembershipService}
	inv := &InvitationsHandler{InvitationService: r.InvitationService}

	r.Mux.Handle("PATCH /v1/farms/{farmID}", r.secured(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/farms/{farmID}/staff/{userID}", r.secured(h.HandleRemoveStaff, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/farms/{farmID}/invitations", r.secured(inv.HandleInvite, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/farms/{farmID}/invitations", r.secured(inv.HandleListFarm, httpx.LenientLimit))
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{InvitationService: r.InvitationService}

	r.Mux.Handle("GET /v1/invitations", r.secured(h.HandleListMine, httpx.LenientLimit))

	// Token guessing is the obvious attack here
	r.Mux.Handle("POST /v1/invitations/redeem", r.secured(h.HandleRedeem, httpx.StrictLimit))

	r.Mux.Handle("POST /v1/invitations/{id}/accept", r.secured(h.HandleAccept, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/invitations/{id}/decline", r.secured(h.HandleDecline, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/invitations/{id}/revoke", r.secured(h.HandleRevoke, httpx.ModerateLimit))
}

func (r *Router) registerBilling() {
	if r.BillingSecret == "" {
		r.logger.Info("billing webhook disabled: no secret configured")
		return
	}

	h := &BillingWebhookHandler{Plans: r.PlanService, Secret: r.BillingSecret}
	r.Mux.Handle("POST /v1/billing/webhook",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics", MetricsHandler(r.Gatherer))
	}
}
