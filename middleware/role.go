package middleware

import (
	"context"

	"tenor/apperr"
	"tenor/model"

	"github.com/gin-gonic/gin"
)

const RoleKey = "role"

type RoleResolver interface {
	ResolveRole(ctx context.Context, projectID, userID string) (model.Role, error)
}

// RoleRequired resolves the caller's role in :projectId and rejects the
// request when the role grants less than level over the required flags.
func RoleRequired(resolver RoleResolver, required model.FlagsRequired, level model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("projectId")
		if projectID == "" {
			apperr.Respond(c, apperr.BadRequest("Project id is required"))
			return
		}

		role, err := resolver.ResolveRole(c.Request.Context(), projectID, UserID(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if model.CheckPermissions(required, role) < level {
			apperr.Respond(c, apperr.Forbidden("You don't have permission to perform this action"))
			return
		}

		c.Set(RoleKey, role)
		c.Next()
	}
}

func Role(c *gin.Context) (model.Role, bool) {
	v, ok := c.Get(RoleKey)
	if !ok {
		return model.Role{}, false
	}
	role, ok := v.(model.Role)
	return role, ok
}
