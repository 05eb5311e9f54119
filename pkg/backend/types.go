package backend

import "fmt"

// FAQ is a single question/answer pair in a tenant's knowledge base
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// KnowledgeBase is the free-text context the backend answers from
type KnowledgeBase struct {
	Services    string `json:"services,omitempty"`
	ServiceArea string `json:"serviceArea,omitempty"`
	PricingInfo string `json:"pricingInfo,omitempty"`
	FAQs        []FAQ  `json:"faqs,omitempty"`
}

// Behavior tunes the assistant's tone
type Behavior struct {
	Tone               string `json:"tone,omitempty"`
	CustomInstructions string `json:"customInstructions,omitempty"`
}

// Booking configures appointment booking links
type Booking struct {
	Enabled    bool   `json:"enabled"`
	BookingURL string `json:"bookingUrl,omitempty"`
}

// Integrations wires a tenant to downstream systems
type Integrations struct {
	IntakeTenantID  string `json:"intakeTenantId,omitempty"`
	IntakeAPIKey    string `json:"intakeApiKey,omitempty"`
	SlackWebhookURL string `json:"slackWebhookUrl,omitempty"`
}

// SMSChannelConfig holds Twilio credentials for SMS or WhatsApp
type SMSChannelConfig struct {
	Enabled          bool   `json:"enabled"`
	TwilioAccountSID string `json:"twilioAccountSid,omitempty"`
	TwilioAuthToken  string `json:"twilioAuthToken,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
}

// MessengerChannelConfig holds Facebook page credentials
type MessengerChannelConfig struct {
	Enabled         bool   `json:"enabled"`
	PageID          string `json:"pageId,omitempty"`
	PageAccessToken string `json:"pageAccessToken,omitempty"`
}

// ChannelConfigs groups per-channel credentials
type ChannelConfigs struct {
	SMS       *SMSChannelConfig       `json:"sms,omitempty"`
	WhatsApp  *SMSChannelConfig       `json:"whatsapp,omitempty"`
	Messenger *MessengerChannelConfig `json:"messenger,omitempty"`
}

// TenantConfig is the full provisioning payload for a tenant
type TenantConfig struct {
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	CompanyName    string          `json:"companyName"`
	ChatbotName    string          `json:"chatbotName"`
	WelcomeMessage string          `json:"welcomeMessage"`
	PrimaryColor   string          `json:"primaryColor,omitempty"`
	WidgetPosition string          `json:"widgetPosition,omitempty"`
	KnowledgeBase  KnowledgeBase   `json:"knowledgeBase"`
	Behavior       *Behavior       `json:"behavior,omitempty"`
	Booking        *Booking        `json:"booking,omitempty"`
	Integrations   *Integrations   `json:"integrations,omitempty"`
	ChannelConfigs *ChannelConfigs `json:"channelConfigs,omitempty"`
}

// Tenant is the backend's view of a provisioned tenant
type Tenant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ConversationSummary is one row in the conversation list
type ConversationSummary struct {
	ID           string `json:"id"`
	SessionID    string `json:"sessionId"`
	Channel      string `json:"channel"`
	LeadName     string `json:"leadName,omitempty"`
	LeadEmail    string `json:"leadEmail,omitempty"`
	LeadPhone    string `json:"leadPhone,omitempty"`
	LeadScore    string `json:"leadScore,omitempty"`
	MessageCount int    `json:"messageCount"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// Message is a single turn in a conversation
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// ConversationDetail is a conversation with its full transcript
type ConversationDetail struct {
	ConversationSummary
	Messages []Message `json:"messages"`
}

// ConversationList pages through a tenant's conversations
type ConversationList struct {
	Conversations []ConversationSummary `json:"conversations"`
	Total         int                   `json:"total"`
}

// ConversationFilter narrows a conversation listing
type ConversationFilter struct {
	Limit     int
	Offset    int
	Channel   string
	LeadScore string
}

// DailyStat is one day's activity in the analytics series
type DailyStat struct {
	Date          string `json:"date"`
	Conversations int    `json:"conversations"`
	Leads         int    `json:"leads"`
}

// Analytics is the backend's aggregate view of a tenant
type Analytics struct {
	TotalConversations     int            `json:"totalConversations"`
	TotalLeads             int            `json:"totalLeads"`
	ConversionRate         float64        `json:"conversionRate"`
	AvgResponseTime        float64        `json:"avgResponseTime"`
	ConversationsByChannel map[string]int `json:"conversationsByChannel"`
	LeadsByScore           map[string]int `json:"leadsByScore"`
	DailyStats             []DailyStat    `json:"dailyStats"`
}

// DateRange bounds an analytics query; zero values mean unbounded
type DateRange struct {
	StartDate string
	EndDate   string
}

// ChannelResult is the backend's answer to a channel configuration call
type ChannelResult struct {
	Success     bool   `json:"success"`
	WebhookURL  string `json:"webhookUrl,omitempty"`
	VerifyToken string `json:"verifyToken,omitempty"`
	Message     string `json:"message,omitempty"`
}

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error: %d", e.StatusCode)
}
