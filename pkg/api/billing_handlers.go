package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oncallchat/portal/pkg/auth"
	"github.com/oncallchat/portal/pkg/billing"
	"github.com/oncallchat/portal/pkg/httputil"
	"github.com/oncallchat/portal/pkg/middleware"
	"github.com/oncallchat/portal/pkg/orgs"
)

// BillingHandlers handles checkout and billing portal flows
type BillingHandlers struct {
	billing *billing.Manager
}

// NewBillingHandlers creates a new BillingHandlers
func NewBillingHandlers(manager *billing.Manager) *BillingHandlers {
	return &BillingHandlers{billing: manager}
}

// RegisterRoutes registers billing routes
func (h *BillingHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/billing/checkout", h.StartCheckout).Methods("POST")
	router.HandleFunc("/billing/portal", h.OpenPortal).Methods("POST")
}

func memberFromContext(r *http.Request) (*auth.AuthContext, *orgs.OrgMember) {
	authCtx := middleware.GetAuthContext(r)
	return authCtx, &orgs.OrgMember{
		OrganizationID: authCtx.OrganizationID,
		UserID:         authCtx.User.ID,
		Role:           authCtx.Role,
	}
}

// StartCheckout creates a Stripe checkout session for a paid plan
func (h *BillingHandlers) StartCheckout(w http.ResponseWriter, r *http.Request) {
	if h.billing == nil {
		httputil.WriteServiceUnavailable(w, "billing is not configured")
		return
	}

	authCtx, member := memberFromContext(r)

	var req struct {
		Plan orgs.PlanTier `json:"plan"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !req.Plan.Valid() || req.Plan == orgs.PlanFree {
		httputil.WriteBadRequest(w, "invalid plan")
		return
	}

	url, err := h.billing.StartCheckout(authCtx.User, member, req.Plan)
	if errors.Is(err, billing.ErrForbidden) {
		httputil.WriteForbidden(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]string{"url": url})
}

// OpenPortal creates a Stripe billing portal session
func (h *BillingHandlers) OpenPortal(w http.ResponseWriter, r *http.Request) {
	if h.billing == nil {
		httputil.WriteServiceUnavailable(w, "billing is not configured")
		return
	}

	_, member := memberFromContext(r)

	url, err := h.billing.OpenPortal(member)
	if errors.Is(err, billing.ErrForbidden) {
		httputil.WriteForbidden(w, err.Error())
		return
	}
	if errors.Is(err, billing.ErrNoBillingAccount) {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]string{"url": url})
}
