package handler

import (
	"net/http"
	"slices"
	"strings"

	"ecommerce/catalog-service/internal/app/catalog/entity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ctxUserID   = "user_id"
	ctxEmail    = "email"
	ctxRoleName = "role_name"
)

// JWTClaims are the claims issued by the identity provider.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	RoleName string `json:"role_name"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies HS256 bearer tokens.
type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Authenticate rejects the request with 401 unless it carries a valid
// token, and stores the identity in the gin context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(m.jwtSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abortUnauthorized(c, "Invalid user ID in token")
			return
		}
		if claims.RoleName == "" {
			abortUnauthorized(c, "Token has no role")
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRoleName, claims.RoleName)

		c.Next()
	}
}

// RequireRole must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleName, ok := c.Get(ctxRoleName)
		if !ok {
			abortUnauthorized(c, "Unauthorized")
			return
		}

		role, ok := roleName.(string)
		if !ok || !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.ErrorResponse{
				Error:   "forbidden",
				Code:    http.StatusForbidden,
				Message: "Insufficient permissions",
			})
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{
		Error:   "unauthorized",
		Code:    http.StatusUnauthorized,
		Message: message,
	})
}

// callerFrom reads the identity stored by Authenticate.
func callerFrom(c *gin.Context) (entity.Caller, bool) {
	rawID, ok := c.Get(ctxUserID)
	if !ok {
		return entity.Caller{}, false
	}
	userID, ok := rawID.(uuid.UUID)
	if !ok {
		return entity.Caller{}, false
	}
	role := c.GetString(ctxRoleName)
	return entity.Caller{UserID: userID, Role: role}, true
}
