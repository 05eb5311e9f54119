package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallchat/portal/pkg/auth"
)

func TestSignup(t *testing.T) {
	t.Run("creates account", func(t *testing.T) {
		authService := &stubAuthService{
			signupResult: &auth.SignupResult{User: testUser, OrganizationID: 7, OrgSlug: "jane-1"},
		}
		router := newTestRouter(t, Deps{Auth: authService}, &stubOrgService{org: testOrg, member: testMember})

		recorder := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
			"name":     "Jane Doe",
			"email":    "jane@example.com",
			"password": "hunter2hunter2",
		}, "")

		require.Equal(t, http.StatusCreated, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Equal(t, float64(7), body["organization_id"])
		assert.Equal(t, "jane-1", body["org_slug"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		authService := &stubAuthService{signupErr: auth.ErrEmailTaken}
		router := newTestRouter(t, Deps{Auth: authService}, &stubOrgService{})

		recorder := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
			"name": "Jane", "email": "jane@example.com", "password": "hunter2hunter2",
		}, "")

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, auth.ErrEmailTaken.Error(), decodeBody(t, recorder)["error"])
	})

	t.Run("validation failure", func(t *testing.T) {
		authService := &stubAuthService{
			signupErr: &auth.ValidationError{Field: "password", Message: "Password must be at least 8 characters"},
		}
		router := newTestRouter(t, Deps{Auth: authService}, &stubOrgService{})

		recorder := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
			"name": "Jane", "email": "jane@example.com", "password": "short",
		}, "")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(t, Deps{Auth: &stubAuthService{}}, &stubOrgService{})

		recorder := doJSON(t, router, http.MethodPost, "/api/auth/signup", "not an object", "")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("issues session token", func(t *testing.T) {
		authService := &stubAuthService{loginToken: "ocs_fresh", loginUser: testUser}
		router := newTestRouter(t, Deps{Auth: authService}, &stubOrgService{})

		recorder := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "jane@example.com", "password": "hunter2hunter2",
		}, "")

		require.Equal(t, http.StatusOK, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Equal(t, "ocs_fresh", body["token"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		authService := &stubAuthService{loginErr: auth.ErrInvalidCredentials}
		router := newTestRouter(t, Deps{Auth: authService}, &stubOrgService{})

		recorder := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "jane@example.com", "password": "wrong",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestLogout(t *testing.T) {
	t.Run("revokes the session", func(t *testing.T) {
		authService := &stubAuthService{}
		router := newTestRouter(t, Deps{Auth: authService}, &stubOrgService{org: testOrg, member: testMember})

		recorder := doJSON(t, router, http.MethodPost, "/api/auth/logout", nil, testToken)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, []string{testToken}, authService.loggedOut)
	})

	t.Run("requires a session", func(t *testing.T) {
		router := newTestRouter(t, Deps{Auth: &stubAuthService{}}, &stubOrgService{})

		recorder := doJSON(t, router, http.MethodPost, "/api/auth/logout", nil, "")

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestMe(t *testing.T) {
	router := newTestRouter(t, Deps{Auth: &stubAuthService{}}, &stubOrgService{org: testOrg, member: testMember})

	recorder := doJSON(t, router, http.MethodGet, "/api/auth/me", nil, testToken)

	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, float64(7), body["organization_id"])
	assert.Equal(t, string(auth.RoleOwner), body["role"])
}
