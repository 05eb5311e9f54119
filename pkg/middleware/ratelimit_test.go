package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallchat/portal/pkg/auth"
	"github.com/oncallchat/portal/pkg/contextkeys"
	"github.com/oncallchat/portal/pkg/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func newLimitedHandler(t *testing.T, requests int) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	config := &RateLimitConfig{RequestsPerWindow: requests, WindowDuration: time.Minute}
	mw := NewOrgRateLimitMiddleware(client, config, testLogger())
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return handler, server
}

func orgRequest(orgID int64) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/chatbots", nil)
	authCtx := &auth.AuthContext{OrganizationID: orgID, Role: auth.RoleOwner}
	return req.WithContext(contextkeys.WithAuth(req.Context(), authCtx))
}

func TestOrgRateLimit(t *testing.T) {
	t.Run("limits per organization", func(t *testing.T) {
		handler, _ := newLimitedHandler(t, 2)

		for i := 0; i < 2; i++ {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, orgRequest(7))
			require.Equal(t, http.StatusOK, recorder.Code)
		}

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, orgRequest(7))
		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
		assert.NotEmpty(t, recorder.Header().Get("Retry-After"))
	})

	t.Run("organizations have independent budgets", func(t *testing.T) {
		handler, _ := newLimitedHandler(t, 1)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, orgRequest(7))
		require.Equal(t, http.StatusOK, recorder.Code)

		recorder = httptest.NewRecorder()
		handler.ServeHTTP(recorder, orgRequest(8))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("window reset admits again", func(t *testing.T) {
		handler, server := newLimitedHandler(t, 1)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, orgRequest(7))
		require.Equal(t, http.StatusOK, recorder.Code)

		recorder = httptest.NewRecorder()
		handler.ServeHTTP(recorder, orgRequest(7))
		require.Equal(t, http.StatusTooManyRequests, recorder.Code)

		server.FastForward(2 * time.Minute)

		recorder = httptest.NewRecorder()
		handler.ServeHTTP(recorder, orgRequest(7))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("fails open when redis is down", func(t *testing.T) {
		handler, server := newLimitedHandler(t, 1)
		server.Close()

		for i := 0; i < 5; i++ {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, orgRequest(7))
			assert.Equal(t, http.StatusOK, recorder.Code)
		}
	})

	t.Run("anonymous requests keyed by ip", func(t *testing.T) {
		handler, _ := newLimitedHandler(t, 1)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.9:4411"

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		require.Equal(t, http.StatusOK, recorder.Code)

		recorder = httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	})

	t.Run("nil redis disables limiting", func(t *testing.T) {
		mw := NewOrgRateLimitMiddleware(nil, nil, testLogger())
		handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < 10; i++ {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, orgRequest(7))
			assert.Equal(t, http.StatusOK, recorder.Code)
		}
	})
}
