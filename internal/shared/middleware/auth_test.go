package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/shared/middleware"
	"library-api/pkg/jwt"
)

type revocations struct {
	ids map[string]bool
	err error
}

func (r *revocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return r.ids[tokenID], r.err
}

func newAuthRouter(manager *jwt.Manager, rev *revocations) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/me", middleware.AuthMiddleware(manager, rev), func(c *gin.Context) {
		id, ok := middleware.CurrentUserID(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		claims, _ := middleware.CurrentClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String(), "token_id": claims.ID})
	})
	return r
}

func get(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour)
	userID := uuid.New()
	token, claims, err := manager.GenerateAccessToken(userID, "u@example.com")
	require.NoError(t, err)

	other := jwt.NewManager("other-secret", time.Hour)
	forged, _, err := other.GenerateAccessToken(userID, "u@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		rev    *revocations
		status int
	}{
		{name: "valid token", header: "Bearer " + token, rev: &revocations{}, status: http.StatusOK},
		{name: "missing header", header: "", rev: &revocations{}, status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", rev: &revocations{}, status: http.StatusUnauthorized},
		{name: "bad signature", header: "Bearer " + forged, rev: &revocations{}, status: http.StatusUnauthorized},
		{name: "revoked", header: "Bearer " + token, rev: &revocations{ids: map[string]bool{claims.ID: true}}, status: http.StatusUnauthorized},
		{name: "revocation store down", header: "Bearer " + token, rev: &revocations{err: errors.New("redis down")}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newAuthRouter(manager, tt.rev), tt.header)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), userID.String())
			}
		})
	}
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.ContextRequestID))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(middleware.HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}
