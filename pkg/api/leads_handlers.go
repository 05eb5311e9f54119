package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/oncallchat/portal/pkg/chatbots"
	"github.com/oncallchat/portal/pkg/httputil"
	"github.com/oncallchat/portal/pkg/leads"
	"github.com/oncallchat/portal/pkg/notify"
	"github.com/oncallchat/portal/pkg/observability"
)

// LeadHandlers accepts leads captured by deployed chatbot widgets. The
// endpoint is public; the tenant id is the only credential, matching
// what the widget embeds.
type LeadHandlers struct {
	chatbots  chatbots.Service
	forwarder *notify.LeadForwarder
	logger    *observability.Logger
}

// NewLeadHandlers creates lead intake handlers
func NewLeadHandlers(chatbotService chatbots.Service, forwarder *notify.LeadForwarder, logger *observability.Logger) *LeadHandlers {
	return &LeadHandlers{
		chatbots:  chatbotService,
		forwarder: forwarder,
		logger:    logger,
	}
}

// RegisterRoutes registers lead intake routes
func (h *LeadHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/leads", h.CaptureLead).Methods("POST")
}

type captureLeadRequest struct {
	TenantID            string `json:"tenant_id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Company             string `json:"company"`
	Message             string `json:"message"`
	ConversationSummary string `json:"conversation_summary"`
}

// CaptureLead handles POST /api/leads
func (h *LeadHandlers) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var req captureLeadRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.TenantID) == "" {
		httputil.WriteValidationError(w, "tenant_id is required")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httputil.WriteValidationError(w, "name is required")
		return
	}
	if req.Email == "" && req.Phone == "" {
		httputil.WriteValidationError(w, "email or phone is required")
		return
	}

	bot, err := h.chatbots.GetByTenantID(req.TenantID)
	if errors.Is(err, chatbots.ErrNotFound) {
		httputil.WriteNotFoundError(w, "unknown tenant")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if err := h.chatbots.RecordLead(bot.ID); err != nil {
		// The lead still gets forwarded; the counter is best effort
		h.logger.WithError(err).WithField("chatbot_id", bot.ID).Warn("failed to record lead")
	}

	if h.forwarder != nil {
		h.forwarder.Forward(bot.Name, &leads.Lead{
			Name:                req.Name,
			Email:               req.Email,
			Phone:               req.Phone,
			Company:             req.Company,
			Message:             req.Message,
			ConversationSummary: req.ConversationSummary,
			ChatbotID:           bot.TenantID,
		})
	}

	httputil.WriteCreated(w, map[string]bool{"received": true})
}
