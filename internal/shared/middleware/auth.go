package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-api/internal/shared/response"
	"library-api/pkg/jwt"
)

const (
	ContextUserID = "user_id"
	ContextClaims = "claims"
)

// RevocationChecker báo token id đã bị thu hồi (logout/refresh) hay chưa
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware - Middleware xác thực JWT bearer token
func AuthMiddleware(manager *jwt.Manager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract token từ "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Unauthenticated.")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		// 2. Verify và parse JWT
		claims, err := manager.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid token.")
			c.Abort()
			return
		}

		userID, err := claims.UserUUID()
		if err != nil {
			response.Unauthorized(c, "Invalid token.")
			c.Abort()
			return
		}

		// 3. Token đã logout
		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("check token revocation failed")
			response.InternalServerError(c, "Internal server error")
			c.Abort()
			return
		}
		if isRevoked {
			response.Unauthorized(c, "Token has been revoked.")
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// CurrentUserID lấy user ID đã được AuthMiddleware set
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// CurrentClaims lấy JWT claims của request hiện tại
func CurrentClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}
