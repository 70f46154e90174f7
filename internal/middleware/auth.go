package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"anoa.com/akademia/internal/entity"
	userRepo "anoa.com/akademia/internal/modules/user/repository"
	"anoa.com/akademia/pkg/authz"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	secret   string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository) *AuthMiddleware {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   secret,
	}
}

// RequireAuth resolves the actor's identity: it validates the bearer token,
// loads the profile and role assignments, and puts profile_id and the typed
// role set on the context. Scoped queries downstream only ever fire once
// this has succeeded.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil || user.Profile == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		assignments, err := m.userRepo.RolesForUser(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to resolve roles"})
			c.Abort()
			return
		}

		c.Set("user_id", user.ID.String())
		c.Set("profile_id", user.Profile.ID.String())
		c.Set("roles", entity.RoleSetOf(assignments))
		c.Next()
	}
}

// RequireRoles gates a route behind an allow-list. The actor passes iff
// their role set intersects the list; holding any one of the allowed roles
// is enough.
func (m *AuthMiddleware) RequireRoles(allowed ...authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("roles")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		roles, ok := v.(authz.RoleSet)
		if !ok || !authz.IsAuthorized(roles, allowed) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied for your role"})
			c.Abort()
			return
		}

		c.Next()
	}
}
