package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/oncallchat/portal/pkg/auth"
	"github.com/oncallchat/portal/pkg/httputil"
	"github.com/oncallchat/portal/pkg/middleware"
	"github.com/oncallchat/portal/pkg/notify"
	"github.com/oncallchat/portal/pkg/observability"
)

// AuthHandlers handles signup, login, and logout
type AuthHandlers struct {
	auth    auth.Service
	slack   *notify.SlackNotifier
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewAuthHandlers creates a new AuthHandlers. The notifier and metrics
// may be nil.
func NewAuthHandlers(authService auth.Service, slack *notify.SlackNotifier, metrics *observability.Metrics, logger *observability.Logger) *AuthHandlers {
	return &AuthHandlers{
		auth:    authService,
		slack:   slack,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterPublicRoutes registers the unauthenticated auth routes
func (h *AuthHandlers) RegisterPublicRoutes(router *mux.Router) {
	router.HandleFunc("/auth/signup", h.Signup).Methods("POST")
	router.HandleFunc("/auth/login", h.Login).Methods("POST")
}

// RegisterProtectedRoutes registers the session-bound auth routes
func (h *AuthHandlers) RegisterProtectedRoutes(router *mux.Router) {
	router.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	router.HandleFunc("/auth/me", h.Me).Methods("GET")
}

// Signup creates an account with its workspace organization
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	result, err := h.auth.Signup(&req)
	if auth.IsValidation(err) {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if errors.Is(err, auth.ErrEmailTaken) {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"user_id":         result.User.ID,
		"organization_id": result.OrganizationID,
	}).Info("new signup")

	if h.metrics != nil {
		h.metrics.SignupsTotal.Inc()
	}
	if h.slack != nil {
		h.slack.NotifySignup(result.User.Name, result.User.Email)
	}

	httputil.WriteCreated(w, result)
}

// Login verifies credentials and issues a session token
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	token, user, err := h.auth.Login(&req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		httputil.WriteUnauthorized(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the caller's session token
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		httputil.WriteUnauthorized(w, "missing authorization header")
		return
	}

	if err := h.auth.Logout(token); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]bool{"logged_out": true})
}

// Me returns the authenticated user and their organization context
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil {
		httputil.WriteUnauthorized(w, "not authenticated")
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"user":            authCtx.User,
		"organization_id": authCtx.OrganizationID,
		"role":            authCtx.Role,
	})
}
