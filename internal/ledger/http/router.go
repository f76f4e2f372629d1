package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/pkg/httpx"
	"github.com/aussiebroadwan/quoteledger/pkg/jwtx"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"

	_ "github.com/aussiebroadwan/quoteledger/api/ledger" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	keys         *jwtx.KeySet // nil for HS256
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	gatherer     prometheus.Gatherer

	store           store.Store
	UserService     *service.UserService
	CreditService   *service.CreditService
	ProposalService *service.ProposalService
	BillingService  *service.BillingService
	TeamService     *service.TeamService
	AdminService    *service.AdminService

	// Now is used for balance reads. Nil means time.Now.
	Now func() time.Time
}

func NewRouter(
	verifier jwtx.Verifier,
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		gatherer:     gatherer,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerMe()
	r.registerProposals()
	r.registerPublic()
	r.registerBilling()
	r.registerTeams()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Quote Ledger API
//	@version		0.1.0
//	@description	Proposal credits, paywalled unlocks, client acceptance, deposits and team seats.
//	@description
//	@description				Authenticated routes take an access token from the identity provider.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/quoteledger
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
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with bearer auth, a per-user limit and user provisioning.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
		provisionUser(r.UserService),
	)
}

func (r *Router) registerMe() {
	h := &MeHandler{Users: r.UserService, Credits: r.CreditService, Now: r.Now}

	r.Mux.Handle("GET /v1/me", r.secured(h.HandleMe, httpx.LenientLimit))
}

func (r *Router) registerProposals() {
	h := &ProposalsHandler{
		Proposals: r.ProposalService,
		Billing:   r.BillingService,
	}

	r.Mux.Handle("POST /v1/proposals", r.secured(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/proposals", r.secured(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/proposals/{id}", r.secured(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/proposals/{id}", r.secured(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/proposals/{id}", r.secured(h.HandleDelete, httpx.ModerateLimit))

	// Unlock spends credit - strict so a retry storm cannot hammer the ledger
	r.Mux.Handle("POST /v1/proposals/{id}/unlock", r.secured(h.HandleUnlock, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/proposals/{id}/share", r.secured(h.HandleShare, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/proposals/{id}/send", r.secured(h.HandleSend, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/proposals/{id}/countersign", r.secured(h.HandleCountersign, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/proposals/{id}/outcome", r.secured(h.HandleOutcome, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/proposals/{id}/deposit-link", r.secured(h.HandleDepositLink, httpx.StrictLimit))
}

func (r *Router) registerPublic() {
	h := &PublicHandler{Proposals: r.ProposalService}

	// Public share links - limited by IP and token so one link cannot be scraped
	r.Mux.Handle("GET /v1/public/proposals/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleView),
			httpx.RateLimitByIPAndPathValue(httpx.PublicLimit, "token"),
		),
	)
	r.Mux.Handle("POST /v1/public/proposals/{token}/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.RateLimitByIPAndPathValue(httpx.StrictLimit, "token"),
		),
	)
}

func (r *Router) registerBilling() {
	h := &BillingHandler{Billing: r.BillingService, Now: r.Now}

	r.Mux.Handle("POST /v1/billing/checkout", r.secured(h.HandleCheckout, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/billing/sessions/{id}/reconcile", r.secured(h.HandleReconcile, httpx.ModerateLimit))

	// Webhook is authenticated by its signature, not a bearer token
	r.Mux.Handle("POST /v1/billing/webhook",
		httpx.Chain(http.HandlerFunc(h.HandleWebhook),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerTeams() {
	h := &TeamHandler{Teams: r.TeamService}

	r.Mux.Handle("POST /v1/companies", r.secured(h.HandleCreateCompany, httpx.StrictLimit))
	r.Mux.Handle("GET /v1/companies/mine", r.secured(h.HandleMyCompany, httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/companies/{id}", r.secured(h.HandleUpdateCompany, httpx.ModerateLimit))

	r.Mux.Handle("GET /v1/companies/{id}/members", r.secured(h.HandleListMembers, httpx.LenientLimit))
	r.Mux.Handle("DELETE /v1/companies/{id}/members/{userID}", r.secured(h.HandleRemoveMember, httpx.ModerateLimit))
	r.Mux.Handle("PUT /v1/companies/{id}/members/{userID}/role", r.secured(h.HandleMemberRole, httpx.ModerateLimit))

	r.Mux.Handle("POST /v1/companies/{id}/invites", r.secured(h.HandleCreateInvite, httpx.StrictLimit))
	r.Mux.Handle("GET /v1/companies/{id}/invites", r.secured(h.HandleListInvites, httpx.LenientLimit))
	r.Mux.Handle("DELETE /v1/companies/{id}/invites/{inviteID}", r.secured(h.HandleRevokeInvite, httpx.ModerateLimit))

	// Accepting is a token guess surface - strict
	r.Mux.Handle("POST /v1/invites/accept", r.secured(h.HandleAcceptInvite, httpx.StrictLimit))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Admin: r.AdminService, Now: r.Now}

	r.Mux.Handle("POST /v1/admin/users/{id}/entitlements", r.secured(h.HandleGrantEntitlement, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/admin/users/{id}/entitlements/{name}", r.secured(h.HandleRevokeEntitlement, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/admin/users/{id}/credits", r.secured(h.HandleGrantCredits, httpx.ModerateLimit))
	r.Mux.Handle("PUT /v1/admin/users/{id}/role", r.secured(h.HandleSetRole, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/admin/audit-logs", r.secured(h.HandleListAuditLogs, httpx.LenientLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
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

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}
}
