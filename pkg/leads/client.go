package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oncallchat/portal/pkg/observability"
)

// leadSource tags submissions so the intake system routes them to the
// right sales pipeline.
const leadSource = "chatbot_saas"

// Lead is a prospective customer captured during a chatbot conversation
type Lead struct {
	Name                string
	Email               string
	Phone               string
	Company             string
	Message             string
	ConversationSummary string
	ChatbotID           string
}

// SubmitResult reports what happened to a submission. Error is a
// human-readable description, not a Go error; failed submissions are
// logged and swallowed.
type SubmitResult struct {
	Success bool   `json:"success"`
	LeadID  string `json:"lead_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// intakePayload is the wire format the intake system expects
type intakePayload struct {
	FullName   string            `json:"full_name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Company    string            `json:"company,omitempty"`
	Message    string            `json:"message,omitempty"`
	Source     string            `json:"source"`
	RawPayload map[string]string `json:"raw_payload"`
}

// Client submits leads to the intake system
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *observability.Logger
}

// NewClient creates a lead intake client
func NewClient(baseURL string, logger *observability.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// SubmitLead posts a lead to the intake system. The message falls back
// to the conversation summary when the visitor typed nothing.
func (c *Client) SubmitLead(ctx context.Context, lead *Lead) SubmitResult {
	message := lead.Message
	if message == "" {
		message = lead.ConversationSummary
	}

	payload := intakePayload{
		FullName: lead.Name,
		Email:    lead.Email,
		Phone:    lead.Phone,
		Company:  lead.Company,
		Message:  message,
		Source:   leadSource,
		RawPayload: map[string]string{
			"chatbotId":           lead.ChatbotID,
			"conversationSummary": lead.ConversationSummary,
		},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return c.failure(lead, "failed to encode lead: "+err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/public/leads", bytes.NewReader(encoded))
	if err != nil {
		return c.failure(lead, "failed to build request: "+err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.failure(lead, "lead submission failed: "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return c.failure(lead, strings.TrimSpace(string(body)))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return c.failure(lead, "failed to decode response: "+err.Error())
	}

	return SubmitResult{Success: true, LeadID: created.ID}
}

func (c *Client) failure(lead *Lead, reason string) SubmitResult {
	c.logger.WithFields(map[string]interface{}{
		"chatbot_id": lead.ChatbotID,
		"reason":     reason,
	}).Warn("lead submission failed")
	return SubmitResult{Success: false, Error: reason}
}
