package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oncallchat/portal/pkg/chatbots"
	"github.com/oncallchat/portal/pkg/httputil"
	"github.com/oncallchat/portal/pkg/middleware"
	"github.com/oncallchat/portal/pkg/notify"
	"github.com/oncallchat/portal/pkg/orgs"
)

// ChatbotHandlers handles chatbot CRUD and dashboard stats
type ChatbotHandlers struct {
	chatbots    chatbots.Service
	orgs        orgs.Service
	provisioner *notify.Provisioner
}

// NewChatbotHandlers creates a new ChatbotHandlers. The provisioner may
// be nil when no backend is configured.
func NewChatbotHandlers(chatbotService chatbots.Service, orgService orgs.Service, provisioner *notify.Provisioner) *ChatbotHandlers {
	return &ChatbotHandlers{
		chatbots:    chatbotService,
		orgs:        orgService,
		provisioner: provisioner,
	}
}

// RegisterRoutes registers chatbot routes
func (h *ChatbotHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chatbots", h.ListChatbots).Methods("GET")
	router.HandleFunc("/chatbots", h.CreateChatbot).Methods("POST")
	router.HandleFunc("/chatbots/{id:[0-9]+}", h.GetChatbot).Methods("GET")
	router.HandleFunc("/chatbots/{id:[0-9]+}", h.UpdateChatbot).Methods("PATCH")
	router.HandleFunc("/chatbots/{id:[0-9]+}", h.DeleteChatbot).Methods("DELETE")
	router.HandleFunc("/stats", h.Stats).Methods("GET")
}

// writeChatbotError maps chatbot service errors onto status codes
func writeChatbotError(w http.ResponseWriter, err error) {
	var channelErr *chatbots.ChannelNotAllowedError
	switch {
	case chatbots.IsValidation(err):
		httputil.WriteValidationError(w, err.Error())
	case errors.Is(err, chatbots.ErrChatbotLimit):
		httputil.WriteForbidden(w, err.Error())
	case errors.As(err, &channelErr):
		httputil.WriteForbidden(w, err.Error())
	case errors.Is(err, chatbots.ErrNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	default:
		httputil.WriteInternalError(w, err)
	}
}

// ListChatbots returns the organization's chatbots
func (h *ChatbotHandlers) ListChatbots(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)

	bots, err := h.chatbots.List(authCtx.OrganizationID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"chatbots": bots})
}

// CreateChatbot creates a chatbot within the plan's limits and kicks
// off backend tenant provisioning.
func (h *ChatbotHandlers) CreateChatbot(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)

	var req chatbots.CreateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	bot, err := h.chatbots.Create(authCtx.OrganizationID, &req)
	if err != nil {
		writeChatbotError(w, err)
		return
	}

	if h.provisioner != nil {
		org, err := h.orgs.GetOrganization(authCtx.OrganizationID)
		if err == nil {
			h.provisioner.Provision(bot, org)
		}
	}

	httputil.WriteCreated(w, bot)
}

// GetChatbot returns one chatbot
func (h *ChatbotHandlers) GetChatbot(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)

	chatbotID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	bot, err := h.chatbots.Get(authCtx.OrganizationID, chatbotID)
	if err != nil {
		writeChatbotError(w, err)
		return
	}

	httputil.WriteSuccess(w, bot)
}

// UpdateChatbot applies a partial update
func (h *ChatbotHandlers) UpdateChatbot(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)

	chatbotID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req chatbots.UpdateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	bot, err := h.chatbots.Update(authCtx.OrganizationID, chatbotID, &req)
	if err != nil {
		writeChatbotError(w, err)
		return
	}

	httputil.WriteSuccess(w, bot)
}

// DeleteChatbot removes a chatbot
func (h *ChatbotHandlers) DeleteChatbot(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)

	chatbotID, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.chatbots.Delete(authCtx.OrganizationID, chatbotID); err != nil {
		writeChatbotError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]bool{"deleted": true})
}

// Stats returns the dashboard summary for the organization
func (h *ChatbotHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)

	stats, err := h.chatbots.Stats(authCtx.OrganizationID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, stats)
}
