package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/oncallchat/portal/pkg/auth"
	"github.com/oncallchat/portal/pkg/contextkeys"
	"github.com/oncallchat/portal/pkg/httputil"
	"github.com/oncallchat/portal/pkg/orgs"
)

// SessionMiddleware authenticates requests with a bearer session token
type SessionMiddleware struct {
	auth auth.Service
	orgs orgs.Service
}

// NewSessionMiddleware creates the session auth middleware
func NewSessionMiddleware(authService auth.Service, orgService orgs.Service) *SessionMiddleware {
	return &SessionMiddleware{
		auth: authService,
		orgs: orgService,
	}
}

// Handler validates the session token and attaches an AuthContext with
// the caller's home organization membership.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		user, err := m.auth.ValidateSession(token)
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired session")
			return
		}

		member, err := m.orgs.HomeMembership(user.ID)
		if errors.Is(err, orgs.ErrNoMembership) {
			httputil.WriteUnauthorized(w, "no organization found")
			return
		}
		if err != nil {
			httputil.WriteInternalError(w, err)
			return
		}

		authCtx := &auth.AuthContext{
			User:           user,
			OrganizationID: member.OrganizationID,
			Role:           member.Role,
		}

		ctx := contextkeys.WithAuth(r.Context(), authCtx)
		ctx = contextkeys.WithUserID(ctx, strconv.FormatInt(user.ID, 10))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// GetAuthContext extracts the auth context from a request
func GetAuthContext(r *http.Request) *auth.AuthContext {
	value := r.Context().Value(contextkeys.AuthKey)
	if value == nil {
		return nil
	}
	authCtx, ok := value.(*auth.AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}
