package chatbots

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/oncallchat/portal/pkg/orgs"
)

const chatbotColumns = `id, organization_id, tenant_id, name, description,
	welcome_message, primary_color, widget_position, status, channels,
	knowledge_base, messages_this_month, leads_this_month, created_at, updated_at`

// PostgresService implements the Service interface using PostgreSQL
type PostgresService struct {
	db   *sql.DB
	orgs orgs.Service
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB, orgService orgs.Service) *PostgresService {
	return &PostgresService{db: db, orgs: orgService}
}

func validateCreate(req *CreateRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	if len(req.Channels) == 0 {
		return &ValidationError{Field: "channels", Message: "At least one channel is required"}
	}
	return nil
}

// Create validates the request against the organization's plan limits,
// mints a tenant id, and inserts the chatbot.
func (s *PostgresService) Create(orgID int64, req *CreateRequest) (*Chatbot, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	org, err := s.orgs.GetOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}
	limits := orgs.LimitsFor(org.Plan)
	for _, channel := range req.Channels {
		if !limits.ChannelAllowed(channel) {
			return nil, &ChannelNotAllowedError{Channel: channel, Plan: org.Plan}
		}
	}

	var count int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM chatbots WHERE organization_id = $1`, orgID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to count chatbots: %w", err)
	}
	if !limits.AllowsChatbots(count) {
		return nil, ErrChatbotLimit
	}

	bot := &Chatbot{
		OrganizationID: orgID,
		TenantID:       MintTenantID(),
		Name:           req.Name,
		Description:    req.Description,
		WelcomeMessage: req.WelcomeMessage,
		Status:         StatusActive,
		Channels:       req.Channels,
		KnowledgeBase: KnowledgeBase{
			CompanyName: req.CompanyName,
			Services:    req.Services,
			FAQs:        req.FAQs,
		},
	}
	if bot.WelcomeMessage == "" {
		bot.WelcomeMessage = DefaultWelcomeMessage
	}

	channelsJSON, err := json.Marshal(bot.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to encode channels: %w", err)
	}
	kbJSON, err := json.Marshal(bot.KnowledgeBase)
	if err != nil {
		return nil, fmt.Errorf("failed to encode knowledge base: %w", err)
	}

	err = s.db.QueryRow(
		`INSERT INTO chatbots (organization_id, tenant_id, name, description,
		   welcome_message, status, channels, knowledge_base)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		bot.OrganizationID, bot.TenantID, bot.Name, bot.Description,
		bot.WelcomeMessage, bot.Status, channelsJSON, kbJSON,
	).Scan(&bot.ID, &bot.CreatedAt, &bot.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create chatbot: %w", err)
	}

	return bot, nil
}

func scanChatbot(row interface{ Scan(...interface{}) error }) (*Chatbot, error) {
	bot := &Chatbot{}
	var channelsJSON, kbJSON []byte
	err := row.Scan(
		&bot.ID, &bot.OrganizationID, &bot.TenantID, &bot.Name, &bot.Description,
		&bot.WelcomeMessage, &bot.PrimaryColor, &bot.WidgetPosition, &bot.Status,
		&channelsJSON, &kbJSON, &bot.MessagesThisMonth, &bot.LeadsThisMonth,
		&bot.CreatedAt, &bot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(channelsJSON, &bot.Channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels: %w", err)
	}
	if err := json.Unmarshal(kbJSON, &bot.KnowledgeBase); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge base: %w", err)
	}
	return bot, nil
}

// Get fetches a chatbot scoped to the owning organization
func (s *PostgresService) Get(orgID, chatbotID int64) (*Chatbot, error) {
	row := s.db.QueryRow(
		`SELECT `+chatbotColumns+` FROM chatbots
		 WHERE id = $1 AND organization_id = $2`,
		chatbotID, orgID,
	)
	bot, err := scanChatbot(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chatbot: %w", err)
	}
	return bot, nil
}

// GetByTenantID resolves a chatbot from its external tenant id
func (s *PostgresService) GetByTenantID(tenantID string) (*Chatbot, error) {
	row := s.db.QueryRow(
		`SELECT `+chatbotColumns+` FROM chatbots WHERE tenant_id = $1`,
		tenantID,
	)
	bot, err := scanChatbot(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chatbot by tenant id: %w", err)
	}
	return bot, nil
}

// RecordLead increments the chatbot's monthly lead counter
func (s *PostgresService) RecordLead(chatbotID int64) error {
	result, err := s.db.Exec(
		`UPDATE chatbots SET leads_this_month = leads_this_month + 1 WHERE id = $1`,
		chatbotID,
	)
	if err != nil {
		return fmt.Errorf("failed to record lead: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check lead update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns an organization's chatbots, newest first
func (s *PostgresService) List(orgID int64) ([]*Chatbot, error) {
	rows, err := s.db.Query(
		`SELECT `+chatbotColumns+` FROM chatbots
		 WHERE organization_id = $1
		 ORDER BY created_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chatbots: %w", err)
	}
	defer rows.Close()

	var bots []*Chatbot
	for rows.Next() {
		bot, err := scanChatbot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chatbot: %w", err)
		}
		bots = append(bots, bot)
	}
	return bots, rows.Err()
}

// Update applies a partial update. Channel changes re-check the plan
// gate; the chatbot count does not, so downgraded organizations keep
// what they already built.
func (s *PostgresService) Update(orgID, chatbotID int64, req *UpdateRequest) (*Chatbot, error) {
	bot, err := s.Get(orgID, chatbotID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, &ValidationError{Field: "name", Message: "Name is required"}
		}
		bot.Name = *req.Name
	}
	if req.Description != nil {
		bot.Description = *req.Description
	}
	if req.WelcomeMessage != nil {
		bot.WelcomeMessage = *req.WelcomeMessage
	}
	if req.PrimaryColor != nil {
		bot.PrimaryColor = *req.PrimaryColor
	}
	if req.WidgetPosition != nil {
		bot.WidgetPosition = *req.WidgetPosition
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, &ValidationError{Field: "status", Message: "Status must be ACTIVE, INACTIVE or DRAFT"}
		}
		bot.Status = *req.Status
	}
	if req.Channels != nil {
		if len(req.Channels) == 0 {
			return nil, &ValidationError{Field: "channels", Message: "At least one channel is required"}
		}
		org, err := s.orgs.GetOrganization(orgID)
		if err != nil {
			return nil, fmt.Errorf("failed to load organization: %w", err)
		}
		limits := orgs.LimitsFor(org.Plan)
		for _, channel := range req.Channels {
			if !limits.ChannelAllowed(channel) {
				return nil, &ChannelNotAllowedError{Channel: channel, Plan: org.Plan}
			}
		}
		bot.Channels = req.Channels
	}
	if req.KnowledgeBase != nil {
		bot.KnowledgeBase = *req.KnowledgeBase
	}

	channelsJSON, err := json.Marshal(bot.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to encode channels: %w", err)
	}
	kbJSON, err := json.Marshal(bot.KnowledgeBase)
	if err != nil {
		return nil, fmt.Errorf("failed to encode knowledge base: %w", err)
	}

	err = s.db.QueryRow(
		`UPDATE chatbots SET name = $1, description = $2, welcome_message = $3,
		   primary_color = $4, widget_position = $5, status = $6, channels = $7,
		   knowledge_base = $8, updated_at = NOW()
		 WHERE id = $9 AND organization_id = $10
		 RETURNING updated_at`,
		bot.Name, bot.Description, bot.WelcomeMessage, bot.PrimaryColor,
		bot.WidgetPosition, bot.Status, channelsJSON, kbJSON,
		chatbotID, orgID,
	).Scan(&bot.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update chatbot: %w", err)
	}

	return bot, nil
}

// Delete removes a chatbot scoped to the owning organization
func (s *PostgresService) Delete(orgID, chatbotID int64) error {
	result, err := s.db.Exec(
		`DELETE FROM chatbots WHERE id = $1 AND organization_id = $2`,
		chatbotID, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete chatbot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the dashboard numbers for an organization
func (s *PostgresService) Stats(orgID int64) (*Stats, error) {
	org, err := s.orgs.GetOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}

	stats := &Stats{Plan: org.Plan}
	err = s.db.QueryRow(
		`SELECT COUNT(*),
		   COALESCE(SUM(messages_this_month), 0),
		   COALESCE(SUM(leads_this_month), 0)
		 FROM chatbots WHERE organization_id = $1`,
		orgID,
	).Scan(&stats.TotalChatbots, &stats.TotalConversations, &stats.TotalLeads)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	if stats.TotalConversations > 0 {
		rate := float64(stats.TotalLeads) / float64(stats.TotalConversations) * 100
		stats.ConversionRate = int(math.Round(rate))
	}
	return stats, nil
}

// ResetMonthlyUsage zeroes every chatbot's monthly counters
func (s *PostgresService) ResetMonthlyUsage() (int64, error) {
	result, err := s.db.Exec(
		`UPDATE chatbots SET messages_this_month = 0, leads_this_month = 0
		 WHERE messages_this_month <> 0 OR leads_this_month <> 0`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset usage counters: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check reset result: %w", err)
	}
	return affected, nil
}
