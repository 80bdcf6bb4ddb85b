package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	userID := uuid.New()

	token, claims, err := m.GenerateAccessToken(userID, "reader@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, claims.ID)

	parsed, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", parsed.Email)
	assert.Equal(t, claims.ID, parsed.ID)

	got, err := parsed.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestManager_TokenIDsAreUnique(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	_, a, err := m.GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)
	_, b, err := m.GenerateAccessToken(uuid.New(), "b@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestManager_ValidateToken_Rejects(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, _, err := m.GenerateAccessToken(uuid.New(), "reader@example.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		manager *Manager
		token   string
	}{
		{name: "wrong secret", manager: NewManager("other-secret", time.Hour), token: token},
		{name: "garbage", manager: m, token: "not-a-jwt"},
		{name: "empty", manager: m, token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manager.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestManager_ValidateToken_Expired(t *testing.T) {
	m := NewManager("test-secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.GenerateAccessToken(uuid.New(), "reader@example.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
