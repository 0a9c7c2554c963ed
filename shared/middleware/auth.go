package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ss-lucnguyen/seller-inventory/shared/config"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

// Claims are the token claims issued at login
type Claims struct {
	StoreID string `json:"store_id,omitempty"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for an authenticated user and primes the
// session cache when Redis is available.
func IssueToken(user *models.User) (string, error) {
	cfg := config.GetJWTConfig()
	now := time.Now()

	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Lifetime)),
		},
	}
	if user.StoreID != nil {
		claims.StoreID = user.StoreID.String()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", err
	}

	if utils.RedisClient != nil {
		session := utils.TokenSession{
			UserID:  claims.Subject,
			StoreID: claims.StoreID,
			Role:    claims.Role,
		}
		// cache failures are not fatal, the token still validates on its own
		_ = utils.CreateTokenSession(token, session, cfg.Lifetime)
	}

	return token, nil
}

// ParseToken validates a token string and returns its claims
func ParseToken(tokenString string) (*Claims, error) {
	cfg := config.GetJWTConfig()

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAuth validates the bearer token and binds the caller's tenant
// identity to the request context. The Redis session cache is consulted
// first; a cache miss falls back to full signature validation.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			utils.UnauthorizedResponse(c, "authorization token required")
			c.Abort()
			return
		}

		var userID, storeID, role string
		if session, err := utils.GetTokenSession(tokenString); err == nil {
			userID = session.UserID
			storeID = session.StoreID
			role = session.Role
		} else {
			claims, err := ParseToken(tokenString)
			if err != nil {
				utils.UnauthorizedResponse(c, "invalid token")
				c.Abort()
				return
			}
			userID = claims.Subject
			storeID = claims.StoreID
			role = claims.Role
		}

		uid, err := uuid.Parse(userID)
		if err != nil {
			utils.UnauthorizedResponse(c, "invalid token")
			c.Abort()
			return
		}

		parsedRole, err := models.ParseUserRole(role)
		if err != nil {
			utils.UnauthorizedResponse(c, "invalid token")
			c.Abort()
			return
		}

		tenant := tenancy.Tenant{UserID: uid, Role: parsedRole}
		if storeID != "" {
			sid, err := uuid.Parse(storeID)
			if err != nil {
				utils.UnauthorizedResponse(c, "invalid token")
				c.Abort()
				return
			}
			tenant.StoreID = &sid
		}

		c.Request = c.Request.WithContext(tenancy.NewContext(c.Request.Context(), tenant))
		c.Next()
	}
}

// RequireManager allows store managers and system admins through
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := tenancy.FromContext(c.Request.Context())
		if !ok {
			utils.UnauthorizedResponse(c, "authentication required")
			c.Abort()
			return
		}
		if !t.Role.IsManager() && !t.IsSystemAdmin() {
			utils.ForbiddenResponse(c, "manager role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSystemAdmin restricts a route to platform administrators
func RequireSystemAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := tenancy.FromContext(c.Request.Context())
		if !ok {
			utils.UnauthorizedResponse(c, "authentication required")
			c.Abort()
			return
		}
		if !t.IsSystemAdmin() {
			utils.ForbiddenResponse(c, "system admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractToken extracts the JWT token from the Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
