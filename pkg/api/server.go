package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oncallchat/portal/pkg/apikeys"
	"github.com/oncallchat/portal/pkg/auth"
	"github.com/oncallchat/portal/pkg/billing"
	"github.com/oncallchat/portal/pkg/chatbots"
	"github.com/oncallchat/portal/pkg/middleware"
	"github.com/oncallchat/portal/pkg/notify"
	"github.com/oncallchat/portal/pkg/observability"
	"github.com/oncallchat/portal/pkg/orgs"
)

// Server wires the portal's handlers onto a router
type Server struct {
	authHandlers    *AuthHandlers
	chatbotHandlers *ChatbotHandlers
	keyHandlers     *KeyHandlers
	billingHandlers *BillingHandlers
	leadHandlers    *LeadHandlers
	webhook         http.Handler
}

// Deps are the services the HTTP layer depends on. Billing, webhook,
// slack, metrics, and provisioner are optional.
type Deps struct {
	Auth        auth.Service
	Orgs        orgs.Service
	Chatbots    chatbots.Service
	Keys        apikeys.Service
	Billing     *billing.Manager
	Webhook     http.Handler
	Slack       *notify.SlackNotifier
	Provisioner *notify.Provisioner
	Leads       *notify.LeadForwarder
	Metrics     *observability.Metrics
	Logger      *observability.Logger
}

// NewServer creates the API server
func NewServer(deps Deps) *Server {
	return &Server{
		authHandlers:    NewAuthHandlers(deps.Auth, deps.Slack, deps.Metrics, deps.Logger),
		chatbotHandlers: NewChatbotHandlers(deps.Chatbots, deps.Orgs, deps.Provisioner),
		keyHandlers:     NewKeyHandlers(deps.Keys, deps.Metrics),
		billingHandlers: NewBillingHandlers(deps.Billing),
		leadHandlers:    NewLeadHandlers(deps.Chatbots, deps.Leads, deps.Logger),
		webhook:         deps.Webhook,
	}
}

// RegisterRoutes mounts everything under /api on the given router.
// The session middleware guards the protected subrouter; the rate
// limiter covers both public and protected routes but not the Stripe
// webhook, which authenticates by signature and must never be dropped.
func (s *Server) RegisterRoutes(router *mux.Router, session *middleware.SessionMiddleware, rateLimit *middleware.OrgRateLimitMiddleware) {
	api := router.PathPrefix("/api").Subrouter()

	if s.webhook != nil {
		api.Handle("/webhooks/stripe", s.webhook).Methods("POST")
	}

	public := api.NewRoute().Subrouter()
	public.Use(rateLimit.Handler)
	s.authHandlers.RegisterPublicRoutes(public)
	s.leadHandlers.RegisterRoutes(public)

	protected := api.NewRoute().Subrouter()
	protected.Use(session.Handler, rateLimit.Handler)
	s.authHandlers.RegisterProtectedRoutes(protected)
	s.chatbotHandlers.RegisterRoutes(protected)
	s.keyHandlers.RegisterRoutes(protected)
	s.billingHandlers.RegisterRoutes(protected)
}
