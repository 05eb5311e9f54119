package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/oncallchat/portal/pkg/apikeys"
	"github.com/oncallchat/portal/pkg/httputil"
	"github.com/oncallchat/portal/pkg/middleware"
	"github.com/oncallchat/portal/pkg/observability"
)

// KeyHandlers handles API key management
type KeyHandlers struct {
	keys    apikeys.Service
	metrics *observability.Metrics
}

// NewKeyHandlers creates a new KeyHandlers. Metrics are optional.
func NewKeyHandlers(keyService apikeys.Service, metrics *observability.Metrics) *KeyHandlers {
	return &KeyHandlers{keys: keyService, metrics: metrics}
}

// RegisterRoutes registers API key routes
func (h *KeyHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/keys", h.ListKeys).Methods("GET")
	router.HandleFunc("/keys", h.CreateKey).Methods("POST")
	router.HandleFunc("/keys", h.DeleteKey).Methods("DELETE")
}

// ListKeys returns the organization's API keys without secrets
func (h *KeyHandlers) ListKeys(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)

	keys, err := h.keys.List(authCtx.OrganizationID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"keys": keys})
}

// CreateKey mints a new API key. The plaintext key appears in this
// response only.
func (h *KeyHandlers) CreateKey(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)

	var req struct {
		Name string `json:"name"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	created, err := h.keys.Create(authCtx.OrganizationID, req.Name)
	if errors.Is(err, apikeys.ErrNameRequired) {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.APIKeysIssuedTotal.Inc()
	}

	httputil.WriteCreated(w, created)
}

// DeleteKey revokes an API key by id. Revoking a key that does not
// exist or belongs to another organization succeeds silently.
func (h *KeyHandlers) DeleteKey(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)

	keyID, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid key id")
		return
	}

	if err := h.keys.Delete(authCtx.OrganizationID, keyID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]bool{"deleted": true})
}
