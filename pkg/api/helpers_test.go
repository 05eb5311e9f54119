package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/oncallchat/portal/pkg/apikeys"
	"github.com/oncallchat/portal/pkg/auth"
	"github.com/oncallchat/portal/pkg/chatbots"
	"github.com/oncallchat/portal/pkg/middleware"
	"github.com/oncallchat/portal/pkg/observability"
	"github.com/oncallchat/portal/pkg/orgs"
)

const testToken = "ocs_valid"

var (
	testUser   = &auth.User{ID: 1, Name: "Jane Doe", Email: "jane@example.com", CreatedAt: time.Now()}
	testMember = &orgs.OrgMember{OrganizationID: 7, UserID: 1, Role: auth.RoleOwner}
	testOrg    = &orgs.Organization{ID: 7, Name: "Jane's Workspace", Slug: "jane-1", Plan: orgs.PlanFree}
)

// stubAuthService cans every auth.Service call
type stubAuthService struct {
	signupResult *auth.SignupResult
	signupErr    error
	loginToken   string
	loginUser    *auth.User
	loginErr     error
	loggedOut    []string
}

func (s *stubAuthService) Signup(req *auth.SignupRequest) (*auth.SignupResult, error) {
	return s.signupResult, s.signupErr
}

func (s *stubAuthService) Login(req *auth.LoginRequest) (string, *auth.User, error) {
	return s.loginToken, s.loginUser, s.loginErr
}

func (s *stubAuthService) ValidateSession(token string) (*auth.User, error) {
	if token != testToken {
		return nil, auth.ErrInvalidSession
	}
	return testUser, nil
}

func (s *stubAuthService) Logout(token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func (s *stubAuthService) GetUserByEmail(string) (*auth.User, error) { return nil, nil }

// stubOrgService serves the single test organization
type stubOrgService struct {
	org    *orgs.Organization
	member *orgs.OrgMember

	setPlanCalls []orgs.PlanTier
	customerIDs  []string
}

func (s *stubOrgService) GetOrganization(id int64) (*orgs.Organization, error) {
	if s.org == nil || s.org.ID != id {
		return nil, orgs.ErrNotFound
	}
	copied := *s.org
	return &copied, nil
}

func (s *stubOrgService) GetOrganizationBySlug(string) (*orgs.Organization, error) {
	return nil, orgs.ErrNotFound
}

func (s *stubOrgService) GetOrganizationByStripeCustomer(string) (*orgs.Organization, error) {
	return nil, orgs.ErrNotFound
}

func (s *stubOrgService) HomeMembership(userID int64) (*orgs.OrgMember, error) {
	if s.member == nil || s.member.UserID != userID {
		return nil, orgs.ErrNoMembership
	}
	return s.member, nil
}

func (s *stubOrgService) GetMember(int64, int64) (*orgs.OrgMember, error) {
	return s.member, nil
}

func (s *stubOrgService) ListMembers(int64) ([]*orgs.OrgMember, error) {
	return []*orgs.OrgMember{s.member}, nil
}

func (s *stubOrgService) AddMember(int64, int64, auth.Role) error { return nil }

func (s *stubOrgService) SetPlan(orgID int64, plan orgs.PlanTier, subscriptionID string) error {
	s.setPlanCalls = append(s.setPlanCalls, plan)
	return nil
}

func (s *stubOrgService) SetStripeCustomerID(orgID int64, customerID string) error {
	s.customerIDs = append(s.customerIDs, customerID)
	if s.org != nil {
		s.org.StripeCustomerID = customerID
	}
	return nil
}

// stubChatbotService cans chatbot service calls and records requests
type stubChatbotService struct {
	bots      []*chatbots.Chatbot
	bot       *chatbots.Chatbot
	stats     *chatbots.Stats
	err       error
	created       []*chatbots.CreateRequest
	deletedID     int64
	recordedLeads []int64
}

func (s *stubChatbotService) Create(orgID int64, req *chatbots.CreateRequest) (*chatbots.Chatbot, error) {
	s.created = append(s.created, req)
	return s.bot, s.err
}

func (s *stubChatbotService) Get(orgID, chatbotID int64) (*chatbots.Chatbot, error) {
	return s.bot, s.err
}

func (s *stubChatbotService) List(orgID int64) ([]*chatbots.Chatbot, error) {
	return s.bots, s.err
}

func (s *stubChatbotService) Update(orgID, chatbotID int64, req *chatbots.UpdateRequest) (*chatbots.Chatbot, error) {
	return s.bot, s.err
}

func (s *stubChatbotService) Delete(orgID, chatbotID int64) error {
	s.deletedID = chatbotID
	return s.err
}

func (s *stubChatbotService) Stats(orgID int64) (*chatbots.Stats, error) {
	return s.stats, s.err
}

func (s *stubChatbotService) ResetMonthlyUsage() (int64, error) { return 0, nil }

func (s *stubChatbotService) GetByTenantID(tenantID string) (*chatbots.Chatbot, error) {
	if s.bot == nil || s.bot.TenantID != tenantID {
		return nil, chatbots.ErrNotFound
	}
	return s.bot, s.err
}

func (s *stubChatbotService) RecordLead(chatbotID int64) error {
	s.recordedLeads = append(s.recordedLeads, chatbotID)
	return s.err
}

// stubKeyService cans API key service calls
type stubKeyService struct {
	createdKey *apikeys.CreatedKey
	keys       []*apikeys.APIKey
	err        error
	deleted    []int64
}

func (s *stubKeyService) Create(orgID int64, name string) (*apikeys.CreatedKey, error) {
	return s.createdKey, s.err
}

func (s *stubKeyService) List(orgID int64) ([]*apikeys.APIKey, error) {
	return s.keys, s.err
}

func (s *stubKeyService) Delete(orgID, keyID int64) error {
	s.deleted = append(s.deleted, keyID)
	return s.err
}

func (s *stubKeyService) Verify(string) (*apikeys.APIKey, error) {
	return nil, apikeys.ErrKeyNotFound
}

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

// newTestRouter builds a router with real middleware over stub services
func newTestRouter(t *testing.T, deps Deps, orgService *stubOrgService) *mux.Router {
	t.Helper()

	if deps.Logger == nil {
		deps.Logger = testLogger()
	}
	if deps.Auth == nil {
		deps.Auth = &stubAuthService{}
	}
	if deps.Orgs == nil {
		deps.Orgs = orgService
	}

	router := mux.NewRouter()
	session := middleware.NewSessionMiddleware(deps.Auth, orgService)
	rateLimit := middleware.NewOrgRateLimitMiddleware(nil, nil, deps.Logger)
	NewServer(deps).RegisterRoutes(router, session, rateLimit)
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}
