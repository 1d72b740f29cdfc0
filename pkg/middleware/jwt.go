package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/event-storefront/pkg/response"
)

var ErrInvalidToken = errors.New("invalid token")

// Context keys for user information
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
	ContextKeyToken  = "access_token"
)

// Roles allowed to edit event schedules
const (
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	// Secret key for validating HMAC-signed tokens
	Secret string
	// Issuer, when set, must match the iss claim
	Issuer string
	// SkipPaths is a list of paths that should skip JWT validation
	SkipPaths []string
	// Optional lets requests through unauthenticated when the token is
	// missing, malformed or expired
	Optional bool
}

// JWTMiddleware validates the bearer token and injects the user claims
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if config.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(config.Issuer))
	}

	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		reject := func(code, message string) {
			if config.Optional {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(code, message))
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			reject("MISSING_TOKEN", "Authorization header is required")
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			reject("INVALID_TOKEN", "Invalid authorization header format")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(config.Secret), nil
		}, parserOpts...)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				reject("TOKEN_EXPIRED", "Access token has expired")
				return
			}
			reject("INVALID_TOKEN", "Invalid access token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			reject("INVALID_TOKEN", "Invalid token claims")
			return
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			reject("INVALID_TOKEN", "Missing user_id in token")
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyRole, role)
		c.Set(ContextKeyToken, tokenString)

		c.Next()
	}
}

// RequireRole rejects requests whose authenticated role is not in roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("User not authenticated"))
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Forbidden("Insufficient permissions"))
	}
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyUserID)
}

// GetRole extracts role from gin context
func GetRole(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyRole)
}

// GetAccessToken returns the raw bearer token so it can be forwarded to the
// remote API
func GetAccessToken(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyToken)
}
