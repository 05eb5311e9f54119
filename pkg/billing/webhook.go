package billing

import (
	"io"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/oncallchat/portal/pkg/httputil"
	"github.com/oncallchat/portal/pkg/observability"
)

// webhookBodyLimit caps the payload Stripe may send us
const webhookBodyLimit = 1 << 20 // 1MiB

// WebhookHandler verifies and dispatches Stripe webhook deliveries.
// Signature verification is the authentication mechanism for this
// endpoint; it must be mounted outside the session middleware.
type WebhookHandler struct {
	secret     string
	reconciler *Reconciler
	metrics    *observability.Metrics
	logger     *observability.Logger
}

// NewWebhookHandler creates the webhook endpoint handler. Metrics are
// optional.
func NewWebhookHandler(secret string, reconciler *Reconciler, metrics *observability.Metrics, logger *observability.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:     secret,
		reconciler: reconciler,
		metrics:    metrics,
		logger:     logger,
	}
}

func (h *WebhookHandler) countEvent(eventType, status string) {
	if h.metrics != nil {
		h.metrics.WebhookEventsTotal.WithLabelValues(eventType, status).Inc()
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteBadRequest(w, "failed to read request body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(signature) == "" {
		httputil.WriteBadRequest(w, "invalid stripe signature")
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, h.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		h.logger.WithError(err).Warn("stripe signature verification failed")
		httputil.WriteBadRequest(w, "invalid stripe signature")
		return
	}

	if err := h.reconciler.HandleEvent(&event); err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"event_id": event.ID,
			"type":     string(event.Type),
		}).Error("stripe webhook processing failed")
		h.countEvent(string(event.Type), "error")
		httputil.WriteInternalError(w, err)
		return
	}

	h.countEvent(string(event.Type), "ok")
	httputil.WriteSuccess(w, map[string]bool{"received": true})
}
