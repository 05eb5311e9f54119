package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oncallchat/portal/pkg/observability"
)

// SlackNotifier posts portal announcements to incoming webhook URLs via
// the background queue. Signups and captured leads go to separate
// channels; either URL may be empty, which silently disables that
// notification.
type SlackNotifier struct {
	signupURL  string
	leadsURL   string
	httpClient *http.Client
	queue      *Queue
	logger     *observability.Logger
}

// NewSlackNotifier creates a notifier for the given webhook URLs
func NewSlackNotifier(signupURL, leadsURL string, queue *Queue, logger *observability.Logger) *SlackNotifier {
	return &SlackNotifier{
		signupURL:  signupURL,
		leadsURL:   leadsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		queue:      queue,
		logger:     logger,
	}
}

// NotifySignup queues a signup announcement. Enqueue failures are
// logged; the signup itself already succeeded and must not be affected.
func (n *SlackNotifier) NotifySignup(name, email string) {
	text := fmt.Sprintf("🚀 New OnCall Chat signup: *%s* (%s)", name, email)
	n.notify("slack_signup", n.signupURL, text)
}

// NotifyLead queues a captured-lead announcement
func (n *SlackNotifier) NotifyLead(chatbotName, leadName, contact string) {
	text := fmt.Sprintf("🎯 New lead from *%s*: %s (%s)", chatbotName, leadName, contact)
	n.notify("slack_lead", n.leadsURL, text)
}

func (n *SlackNotifier) notify(taskName, url, text string) {
	if url == "" {
		return
	}
	err := n.queue.Enqueue(Task{
		Name: taskName,
		Run: func(ctx context.Context) error {
			return n.post(ctx, url, text)
		},
	})
	if err != nil {
		n.logger.WithError(err).Warn("failed to queue slack notification")
	}
}

func (n *SlackNotifier) post(ctx context.Context, url, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}
