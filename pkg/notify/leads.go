package notify

import (
	"context"
	"errors"

	"github.com/oncallchat/portal/pkg/leads"
	"github.com/oncallchat/portal/pkg/observability"
)

// LeadForwarder hands captured leads to the external intake system and
// announces them on Slack. Both ride the queue; the capturing request
// returns as soon as the lead is recorded locally.
type LeadForwarder struct {
	queue  *Queue
	intake *leads.Client
	slack  *SlackNotifier
	logger *observability.Logger
}

// NewLeadForwarder creates a lead forwarder. A nil intake client
// disables forwarding (no intake URL configured); Slack announcements
// still go out.
func NewLeadForwarder(queue *Queue, intake *leads.Client, slack *SlackNotifier, logger *observability.Logger) *LeadForwarder {
	return &LeadForwarder{
		queue:  queue,
		intake: intake,
		slack:  slack,
		logger: logger,
	}
}

// Forward queues intake submission and the Slack announcement for a
// captured lead.
func (f *LeadForwarder) Forward(chatbotName string, lead *leads.Lead) {
	contact := lead.Email
	if contact == "" {
		contact = lead.Phone
	}
	f.slack.NotifyLead(chatbotName, lead.Name, contact)

	if f.intake == nil {
		f.logger.WithField("chatbot_id", lead.ChatbotID).Debug("lead intake not configured, skipping forwarding")
		return
	}

	err := f.queue.Enqueue(Task{
		Name: "lead_intake",
		Run: func(ctx context.Context) error {
			result := f.intake.SubmitLead(ctx, lead)
			if !result.Success {
				return errors.New(result.Error)
			}
			f.logger.WithFields(map[string]interface{}{
				"lead_id":    result.LeadID,
				"chatbot_id": lead.ChatbotID,
			}).Info("lead forwarded to intake")
			return nil
		},
	})
	if err != nil {
		f.logger.WithError(err).WithField("chatbot_id", lead.ChatbotID).Warn("failed to queue lead forwarding")
	}
}
