package notify

import (
	"context"

	"github.com/oncallchat/portal/pkg/backend"
	"github.com/oncallchat/portal/pkg/chatbots"
	"github.com/oncallchat/portal/pkg/observability"
	"github.com/oncallchat/portal/pkg/orgs"
)

// Provisioner registers freshly created chatbots as tenants on the
// external backend. Registration rides the queue: chatbot creation
// succeeds locally first, and the backend catches up with retries.
type Provisioner struct {
	queue   *Queue
	backend *backend.Client
	logger  *observability.Logger
}

// NewProvisioner creates a tenant provisioner. A nil backend client
// disables provisioning (no backend URL configured).
func NewProvisioner(queue *Queue, backendClient *backend.Client, logger *observability.Logger) *Provisioner {
	return &Provisioner{
		queue:   queue,
		backend: backendClient,
		logger:  logger,
	}
}

// tenantConfig builds the backend provisioning payload from a chatbot.
// The portal collects FAQs as free text; it rides along as a single
// entry until the form collects structured pairs.
func tenantConfig(bot *chatbots.Chatbot, org *orgs.Organization) *backend.TenantConfig {
	var faqs []backend.FAQ
	if bot.KnowledgeBase.FAQs != "" {
		faqs = []backend.FAQ{{Question: "FAQs", Answer: bot.KnowledgeBase.FAQs}}
	}
	return &backend.TenantConfig{
		Name:           bot.Name,
		Slug:           bot.TenantID,
		CompanyName:    bot.KnowledgeBase.CompanyName,
		ChatbotName:    bot.Name,
		WelcomeMessage: bot.WelcomeMessage,
		PrimaryColor:   bot.PrimaryColor,
		WidgetPosition: bot.WidgetPosition,
		KnowledgeBase: backend.KnowledgeBase{
			Services: bot.KnowledgeBase.Services,
			FAQs:     faqs,
		},
		Integrations: &backend.Integrations{
			IntakeTenantID: org.Slug,
		},
	}
}

// Provision queues tenant registration for a new chatbot
func (p *Provisioner) Provision(bot *chatbots.Chatbot, org *orgs.Organization) {
	if p.backend == nil {
		p.logger.WithField("tenant_id", bot.TenantID).Debug("backend not configured, skipping provisioning")
		return
	}

	config := tenantConfig(bot, org)
	err := p.queue.Enqueue(Task{
		Name: "tenant_provision",
		Run: func(ctx context.Context) error {
			_, err := p.backend.CreateTenant(ctx, config)
			return err
		},
	})
	if err != nil {
		p.logger.WithError(err).WithField("tenant_id", bot.TenantID).Warn("failed to queue tenant provisioning")
	}
}
