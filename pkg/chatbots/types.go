package chatbots

import (
	"errors"
	"fmt"
	"time"

	"github.com/oncallchat/portal/pkg/orgs"
)

// Status is the lifecycle state of a chatbot
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusDraft    Status = "DRAFT"
)

// Valid reports whether the status is one of the known states
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDraft:
		return true
	}
	return false
}

// DefaultWelcomeMessage greets visitors when the operator leaves the
// field blank.
const DefaultWelcomeMessage = "Hi! 👋 I'm here to help. How can I assist you today?"

// KnowledgeBase is the free-text company context handed to the
// external backend at provisioning time.
type KnowledgeBase struct {
	CompanyName string `json:"companyName"`
	Services    string `json:"services"`
	FAQs        string `json:"faqs"`
}

// Chatbot represents a configured chatbot
type Chatbot struct {
	ID                int64          `json:"id"`
	OrganizationID    int64          `json:"organization_id"`
	TenantID          string         `json:"tenant_id"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	WelcomeMessage    string         `json:"welcome_message"`
	PrimaryColor      string         `json:"primary_color,omitempty"`
	WidgetPosition    string         `json:"widget_position,omitempty"`
	Status            Status         `json:"status"`
	Channels          []orgs.Channel `json:"channels"`
	KnowledgeBase     KnowledgeBase  `json:"knowledge_base"`
	MessagesThisMonth int            `json:"messages_this_month"`
	LeadsThisMonth    int            `json:"leads_this_month"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// CreateRequest carries the fields accepted at creation time
type CreateRequest struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	WelcomeMessage string         `json:"welcome_message"`
	Channels       []orgs.Channel `json:"channels"`
	CompanyName    string         `json:"company_name"`
	Services       string         `json:"services"`
	FAQs           string         `json:"faqs"`
}

// UpdateRequest carries a partial update; nil fields are left as-is
type UpdateRequest struct {
	Name           *string         `json:"name,omitempty"`
	Description    *string         `json:"description,omitempty"`
	WelcomeMessage *string         `json:"welcome_message,omitempty"`
	PrimaryColor   *string         `json:"primary_color,omitempty"`
	WidgetPosition *string         `json:"widget_position,omitempty"`
	Status         *Status         `json:"status,omitempty"`
	Channels       []orgs.Channel  `json:"channels,omitempty"`
	KnowledgeBase  *KnowledgeBase  `json:"knowledge_base,omitempty"`
}

// Stats summarizes an organization's chatbot activity for the dashboard
type Stats struct {
	TotalChatbots      int           `json:"total_chatbots"`
	TotalConversations int           `json:"total_conversations"`
	TotalLeads         int           `json:"total_leads"`
	ConversionRate     int           `json:"conversion_rate"`
	Plan               orgs.PlanTier `json:"plan"`
}

// ValidationError describes a rejected field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a field validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Sentinel errors for the service layer
var (
	ErrNotFound     = errors.New("chatbot not found")
	ErrChatbotLimit = errors.New("chatbot limit reached for current plan")
)

// ChannelNotAllowedError reports a channel outside the plan's gate
type ChannelNotAllowedError struct {
	Channel orgs.Channel
	Plan    orgs.PlanTier
}

func (e *ChannelNotAllowedError) Error() string {
	return fmt.Sprintf("channel %q is not available on the %s plan", e.Channel, e.Plan)
}

// Service defines the interface for chatbot management
type Service interface {
	Create(orgID int64, req *CreateRequest) (*Chatbot, error)
	Get(orgID, chatbotID int64) (*Chatbot, error)
	List(orgID int64) ([]*Chatbot, error)
	Update(orgID, chatbotID int64, req *UpdateRequest) (*Chatbot, error)
	Delete(orgID, chatbotID int64) error
	Stats(orgID int64) (*Stats, error)

	// GetByTenantID resolves a chatbot from its external tenant id.
	// Used by the public lead intake endpoint, which authenticates by
	// tenant id instead of a session.
	GetByTenantID(tenantID string) (*Chatbot, error)

	// RecordLead increments the chatbot's monthly lead counter
	RecordLead(chatbotID int64) error

	// ResetMonthlyUsage zeroes every chatbot's monthly counters and
	// returns how many rows it touched.
	ResetMonthlyUsage() (int64, error)
}
