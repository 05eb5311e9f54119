package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the external chatbot backend
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithAPIKey sets the bearer key sent on every request
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a backend client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues a request and decodes the JSON response into out. Non-2xx
// responses become an *APIError carrying the backend's message field.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Health checks the backend's health endpoint
func (c *Client) Health(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodGet, "/health", nil, &status)
}

// CreateTenant provisions a new tenant
func (c *Client) CreateTenant(ctx context.Context, config *TenantConfig) (*Tenant, error) {
	tenant := &Tenant{}
	if err := c.do(ctx, http.MethodPost, "/api/v1/tenants", config, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetTenant fetches a tenant by id
func (c *Client) GetTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	tenant := &Tenant{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/tenants/"+tenantID, nil, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// UpdateTenant applies a partial tenant configuration update
func (c *Client) UpdateTenant(ctx context.Context, tenantID string, config *TenantConfig) (*Tenant, error) {
	tenant := &Tenant{}
	if err := c.do(ctx, http.MethodPut, "/api/v1/tenants/"+tenantID, config, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// DeleteTenant removes a tenant
func (c *Client) DeleteTenant(ctx context.Context, tenantID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/tenants/"+tenantID, nil, nil)
}

// GetWidgetConfig fetches the public widget configuration
func (c *Client) GetWidgetConfig(ctx context.Context, tenantID string) (map[string]interface{}, error) {
	config := map[string]interface{}{}
	if err := c.do(ctx, http.MethodGet, "/widget/"+tenantID+"/config", nil, &config); err != nil {
		return nil, err
	}
	return config, nil
}

// ListConversations pages through a tenant's conversations
func (c *Client) ListConversations(ctx context.Context, tenantID string, filter ConversationFilter) (*ConversationList, error) {
	params := url.Values{}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		params.Set("offset", strconv.Itoa(filter.Offset))
	}
	if filter.Channel != "" {
		params.Set("channel", filter.Channel)
	}
	if filter.LeadScore != "" {
		params.Set("lead_score", filter.LeadScore)
	}

	path := "/api/v1/tenants/" + tenantID + "/conversations"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	list := &ConversationList{}
	if err := c.do(ctx, http.MethodGet, path, nil, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetConversation fetches a conversation with its full transcript
func (c *Client) GetConversation(ctx context.Context, tenantID, conversationID string) (*ConversationDetail, error) {
	detail := &ConversationDetail{}
	path := "/api/v1/tenants/" + tenantID + "/conversations/" + conversationID
	if err := c.do(ctx, http.MethodGet, path, nil, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// GetAnalytics fetches aggregate tenant analytics
func (c *Client) GetAnalytics(ctx context.Context, tenantID string, dateRange DateRange) (*Analytics, error) {
	params := url.Values{}
	if dateRange.StartDate != "" {
		params.Set("start_date", dateRange.StartDate)
	}
	if dateRange.EndDate != "" {
		params.Set("end_date", dateRange.EndDate)
	}

	path := "/api/v1/tenants/" + tenantID + "/analytics"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	analytics := &Analytics{}
	if err := c.do(ctx, http.MethodGet, path, nil, analytics); err != nil {
		return nil, err
	}
	return analytics, nil
}

// ConfigureSMSChannel sets Twilio credentials for the SMS channel
func (c *Client) ConfigureSMSChannel(ctx context.Context, tenantID string, config *SMSChannelConfig) (*ChannelResult, error) {
	return c.configureChannel(ctx, tenantID, "sms", config)
}

// ConfigureWhatsAppChannel sets Twilio credentials for WhatsApp
func (c *Client) ConfigureWhatsAppChannel(ctx context.Context, tenantID string, config *SMSChannelConfig) (*ChannelResult, error) {
	return c.configureChannel(ctx, tenantID, "whatsapp", config)
}

// ConfigureMessengerChannel sets Facebook page credentials
func (c *Client) ConfigureMessengerChannel(ctx context.Context, tenantID string, config *MessengerChannelConfig) (*ChannelResult, error) {
	return c.configureChannel(ctx, tenantID, "messenger", config)
}

func (c *Client) configureChannel(ctx context.Context, tenantID, channel string, config interface{}) (*ChannelResult, error) {
	result := &ChannelResult{}
	path := "/api/v1/tenants/" + tenantID + "/channels/" + channel
	if err := c.do(ctx, http.MethodPost, path, config, result); err != nil {
		return nil, err
	}
	return result, nil
}

// TestSMSConnection sends a test message through the SMS channel
func (c *Client) TestSMSConnection(ctx context.Context, tenantID, phoneNumber string) (*ChannelResult, error) {
	result := &ChannelResult{}
	path := "/api/v1/tenants/" + tenantID + "/channels/sms/test"
	body := map[string]string{"phoneNumber": phoneNumber}
	if err := c.do(ctx, http.MethodPost, path, body, result); err != nil {
		return nil, err
	}
	return result, nil
}
