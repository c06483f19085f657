package requirement

import (
	"net/http"

	"tenor/apperr"
	"tenor/controller/settings"
	"tenor/dto"
	"tenor/middleware"
	"tenor/model"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func RequirementController(router *gin.Engine, fb *firestore.Client, ai *services.AIClient, roles middleware.RoleResolver) {
	tagRead := middleware.RoleRequired(roles, model.TagPermissions, model.PermissionRead)
	tagWrite := middleware.RoleRequired(roles, model.TagPermissions, model.PermissionWrite)
	read := middleware.RoleRequired(roles, model.BacklogPermissions, model.PermissionRead)
	write := middleware.RoleRequired(roles, model.BacklogPermissions, model.PermissionWrite)

	project := router.Group("/projects/:projectId", middleware.SessionMiddleware()...)

	types := project.Group("/requirement-types")
	types.GET("/default", tagRead, func(c *gin.Context) {
		DefaultRequirementType(c, fb)
	})
	settings.TagRoutes(types, fb, services.RequirementTypes, tagRead, tagWrite)
	settings.TagRoutes(project.Group("/requirement-focus"), fb, services.RequirementFocus, tagRead, tagWrite)

	routes := project.Group("/requirements")
	{
		routes.GET("", read, func(c *gin.Context) {
			RequirementTable(c, fb)
		})
		routes.GET("/count", read, func(c *gin.Context) {
			CountRequirements(c, fb)
		})
		routes.GET("/:requirementId", read, func(c *gin.Context) {
			GetRequirement(c, fb)
		})
		routes.POST("", write, func(c *gin.Context) {
			SaveRequirement(c, fb, "")
		})
		routes.PUT("/:requirementId", write, func(c *gin.Context) {
			SaveRequirement(c, fb, c.Param("requirementId"))
		})
		routes.DELETE("/:requirementId", write, func(c *gin.Context) {
			DeleteRequirement(c, fb)
		})
		routes.POST("/generate", write, func(c *gin.Context) {
			GenerateRequirements(c, fb, ai)
		})
	}
}

func DefaultRequirementType(c *gin.Context, fb *firestore.Client) {
	types, err := services.ListTags(c.Request.Context(), fb, c.Param("projectId"), services.RequirementTypes)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	tag, ok := services.DefaultRequirementType(types)
	if !ok {
		apperr.Respond(c, apperr.NotFound("No requirement types defined"))
		return
	}
	c.JSON(http.StatusOK, tag)
}

func RequirementTable(c *gin.Context, fb *firestore.Client) {
	rows, err := services.RequirementTable(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func CountRequirements(c *gin.Context, fb *firestore.Client) {
	n, err := services.CountItems(c.Request.Context(), fb, c.Param("projectId"), model.ItemRequirement)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func GetRequirement(c *gin.Context, fb *firestore.Client) {
	r, err := services.GetRequirement(c.Request.Context(), fb, c.Param("projectId"), c.Param("requirementId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// SaveRequirement creates when id is empty and modifies otherwise.
func SaveRequirement(c *gin.Context, fb *firestore.Client, id string) {
	var req dto.RequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := services.CreateOrModifyRequirement(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), id, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	c.JSON(status, r)
}

func DeleteRequirement(c *gin.Context, fb *firestore.Client) {
	if err := services.DeleteRequirement(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("requirementId")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Requirement deleted"})
}

func GenerateRequirements(c *gin.Context, fb *firestore.Client, ai *services.AIClient) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := services.GenerateRequirements(c.Request.Context(), fb, ai, c.Param("projectId"), req.Amount, req.Prompt)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
