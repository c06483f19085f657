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

func SettingsController(router *gin.Engine, fb *firestore.Client, client *http.Client, roles middleware.RoleResolver) {
	generalRead := middleware.RoleRequired(roles, model.GeneralPermissions, model.PermissionRead)
	member := middleware.RoleRequired(roles, model.GeneralPermissions, model.PermissionNone)
	tagRead := middleware.RoleRequired(roles, model.TagPermissions, model.PermissionRead)
	tagWrite := middleware.RoleRequired(roles, model.TagPermissions, model.PermissionWrite)
	settingsRead := middleware.RoleRequired(roles, model.SettingsPermissions, model.PermissionRead)
	settingsWrite := middleware.RoleRequired(roles, model.SettingsPermissions, model.PermissionWrite)

	routes := router.Group("/projects/:projectId/settings", middleware.SessionMiddleware()...)

	TagRoutes(routes.Group("/priorities"), fb, services.PriorityTypes, generalRead, nil)
	TagRoutes(routes.Group("/backlog-tags"), fb, services.BacklogTags, tagRead, tagWrite)

	statuses := routes.Group("/statuses")
	{
		statuses.GET("", generalRead, func(c *gin.Context) {
			ListStatusTypes(c, fb)
		})
		statuses.GET("/:statusId", generalRead, func(c *gin.Context) {
			GetStatusType(c, fb)
		})
		statuses.POST("", tagWrite, func(c *gin.Context) {
			CreateStatusType(c, fb)
		})
		statuses.PUT("/order", tagWrite, func(c *gin.Context) {
			ReorderStatusTypes(c, fb)
		})
		statuses.PUT("/:statusId", tagWrite, func(c *gin.Context) {
			ModifyStatusType(c, fb)
		})
		statuses.DELETE("/:statusId", tagWrite, func(c *gin.Context) {
			DeleteStatusType(c, fb)
		})
	}

	routes.GET("/sizes", tagRead, func(c *gin.Context) {
		GetStoryPointSizes(c, fb)
	})
	routes.PUT("/sizes", tagWrite, func(c *gin.Context) {
		UpdateStoryPointSizes(c, fb)
	})

	roleRoutes := routes.Group("/roles")
	{
		roleRoutes.GET("", settingsRead, func(c *gin.Context) {
			ListRoles(c, fb)
		})
		roleRoutes.POST("", settingsWrite, func(c *gin.Context) {
			AddRole(c, fb)
		})
		roleRoutes.DELETE("/:roleId", settingsWrite, func(c *gin.Context) {
			RemoveRole(c, fb)
		})
		roleRoutes.PUT("/:roleId/permissions", settingsWrite, func(c *gin.Context) {
			UpdateRolePermission(c, fb)
		})
	}
	routes.GET("/my-role", member, MyRole)

	routes.GET("/scrum", settingsRead, func(c *gin.Context) {
		GetScrumSettings(c, fb)
	})
	routes.PUT("/scrum", settingsWrite, func(c *gin.Context) {
		UpdateScrumSettings(c, fb)
	})

	ai := routes.Group("/ai-context")
	{
		ai.GET("", settingsRead, func(c *gin.Context) {
			GetAIContext(c, fb)
		})
		ai.PUT("/text", settingsWrite, func(c *gin.Context) {
			UpdateAIContextText(c, fb)
		})
		ai.POST("/links", settingsWrite, func(c *gin.Context) {
			AddAIContextLinks(c, fb, client)
		})
		ai.DELETE("/links", settingsWrite, func(c *gin.Context) {
			RemoveAIContextLink(c, fb)
		})
		ai.POST("/files", settingsWrite, func(c *gin.Context) {
			AddAIContextFiles(c, fb)
		})
		ai.DELETE("/files", settingsWrite, func(c *gin.Context) {
			RemoveAIContextFile(c, fb)
		})
	}
}

func GetStoryPointSizes(c *gin.Context, fb *firestore.Client) {
	settings, err := services.GetSettings(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, settings.StoryPointSizes)
}

func UpdateStoryPointSizes(c *gin.Context, fb *firestore.Client) {
	var req dto.StoryPointSizesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := services.UpdateStoryPointSizes(c.Request.Context(), fb, c.Param("projectId"), req.Sizes); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, req.Sizes)
}

func GetScrumSettings(c *gin.Context, fb *firestore.Client) {
	settings, err := services.GetSettings(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sprintDuration":           settings.SprintDuration,
		"maximumSprintStoryPoints": settings.MaximumSprintStoryPoints,
	})
}

func UpdateScrumSettings(c *gin.Context, fb *firestore.Client) {
	var req dto.ScrumSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := services.UpdateScrumSettings(c.Request.Context(), fb, c.Param("projectId"), req); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func GetAIContext(c *gin.Context, fb *firestore.Client) {
	settings, err := services.GetSettings(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, settings.AIContext)
}

func UpdateAIContextText(c *gin.Context, fb *firestore.Client) {
	var req dto.AIContextTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := services.UpdateAIContextText(c.Request.Context(), fb, c.Param("projectId"), req.Text); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": req.Text})
}

func AddAIContextLinks(c *gin.Context, fb *firestore.Client, client *http.Client) {
	var req dto.AIContextLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	links, err := services.AddAIContextLinks(c.Request.Context(), fb, client, c.Param("projectId"), req.Links)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

func RemoveAIContextLink(c *gin.Context, fb *firestore.Client) {
	var req dto.RemoveLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := services.RemoveAIContextLink(c.Request.Context(), fb, c.Param("projectId"), req.Link); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Link removed"})
}

func AddAIContextFiles(c *gin.Context, fb *firestore.Client) {
	var req dto.AIContextFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files, err := services.AddAIContextFiles(c.Request.Context(), fb, c.Param("projectId"), req.Files)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func RemoveAIContextFile(c *gin.Context, fb *firestore.Client) {
	var req dto.RemoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := services.RemoveAIContextFile(c.Request.Context(), fb, c.Param("projectId"), req.Name); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File removed"})
}
