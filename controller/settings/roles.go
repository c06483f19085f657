package settings

import (
	"net/http"

	"tenor/apperr"
	"tenor/dto"
	"tenor/middleware"
	"tenor/model"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func ListRoles(c *gin.Context, fb *firestore.Client) {
	roles, err := services.ListRoles(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

func AddRole(c *gin.Context, fb *firestore.Client) {
	var req dto.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, err := services.AddRole(c.Request.Context(), fb, c.Param("projectId"), req.Label)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

func RemoveRole(c *gin.Context, fb *firestore.Client) {
	if err := services.RemoveRole(c.Request.Context(), fb, c.Param("projectId"), c.Param("roleId")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role removed"})
}

func UpdateRolePermission(c *gin.Context, fb *firestore.Client) {
	var req dto.RolePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !model.IsFlag(req.Flag) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown permission flag " + req.Flag})
		return
	}

	err := services.UpdateRolePermission(c.Request.Context(), fb, c.Param("projectId"), c.Param("roleId"),
		model.Flag(req.Flag), model.Permission(*req.Level))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roleId": c.Param("roleId"), "flag": req.Flag, "level": *req.Level})
}

// MyRole returns the role resolved by the role middleware.
func MyRole(c *gin.Context) {
	role, ok := middleware.Role(c)
	if !ok {
		apperr.Respond(c, apperr.Forbidden("User is not a member of this project"))
		return
	}
	c.JSON(http.StatusOK, role)
}
