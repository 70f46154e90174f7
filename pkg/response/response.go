package response

import (
	"log"
	"net/http"

	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/authz"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetProfileID retrieves the authenticated actor's profile id from the context
func GetProfileID(c *gin.Context) (uuid.UUID, error) {
	idStr, exists := c.Get("profile_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	profileID, err := uuid.Parse(idStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return profileID, nil
}

// GetRoles retrieves the actor's role set placed on the context by the auth
// middleware. Absent roles yield an empty set, which authorizes nothing.
func GetRoles(c *gin.Context) authz.RoleSet {
	v, exists := c.Get("roles")
	if !exists {
		return authz.RoleSet{}
	}
	roles, ok := v.(authz.RoleSet)
	if !ok {
		return authz.RoleSet{}
	}
	return roles
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
