package project

import (
	"net/http"

	"tenor/apperr"
	"tenor/dto"
	"tenor/middleware"
	"tenor/model"
	"tenor/services"

	"github.com/gin-gonic/gin"
)

func ProjectController(router *gin.Engine, ps *services.ProjectServices, roles middleware.RoleResolver) {
	routes := router.Group("/projects", middleware.SessionMiddleware()...)
	{
		routes.GET("", func(c *gin.Context) {
			ListProjects(c, ps)
		})
		routes.POST("", func(c *gin.Context) {
			CreateProject(c, ps)
		})
		routes.GET("/top", func(c *gin.Context) {
			TopProjects(c, ps, false)
		})
		routes.POST("/top/recompute", func(c *gin.Context) {
			TopProjects(c, ps, true)
		})
	}

	read := middleware.RoleRequired(roles, model.GeneralPermissions, model.PermissionRead)
	settingsRead := middleware.RoleRequired(roles, model.SettingsPermissions, model.PermissionRead)
	settingsWrite := middleware.RoleRequired(roles, model.SettingsPermissions, model.PermissionWrite)

	project := router.Group("/projects/:projectId", middleware.SessionMiddleware()...)
	{
		project.GET("", read, func(c *gin.Context) {
			GetProject(c, ps)
		})
		project.GET("/name", read, func(c *gin.Context) {
			GetProjectName(c, ps)
		})
		project.PUT("", settingsWrite, func(c *gin.Context) {
			ModifyProject(c, ps)
		})
		project.DELETE("", settingsWrite, func(c *gin.Context) {
			DeleteProject(c, ps)
		})
		project.GET("/roles", settingsRead, func(c *gin.Context) {
			ListRoles(c, ps)
		})
		project.GET("/status", read, func(c *gin.Context) {
			ProjectStatus(c, ps)
		})
		project.GET("/activities", read, func(c *gin.Context) {
			RecentActivities(c, ps)
		})
	}
}

func ListProjects(c *gin.Context, ps *services.ProjectServices) {
	projects, err := services.ListProjects(c.Request.Context(), ps.FB, middleware.UserID(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func CreateProject(c *gin.Context, ps *services.ProjectServices) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projectID, err := ps.CreateProject(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"projectId": projectID})
}

func GetProject(c *gin.Context, ps *services.ProjectServices) {
	project, err := services.GetProject(c.Request.Context(), ps.FB, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func GetProjectName(c *gin.Context, ps *services.ProjectServices) {
	project, err := services.GetProject(c.Request.Context(), ps.FB, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projectName": project.Name})
}

func ModifyProject(c *gin.Context, ps *services.ProjectServices) {
	var req dto.ModifyProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := ps.ModifyProject(c.Request.Context(), middleware.UserID(c), c.Param("projectId"), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func DeleteProject(c *gin.Context, ps *services.ProjectServices) {
	if err := services.DeleteProject(c.Request.Context(), ps.FB, middleware.UserID(c), c.Param("projectId")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

func ListRoles(c *gin.Context, ps *services.ProjectServices) {
	roles, err := services.ListRoles(c.Request.Context(), ps.FB, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

func ProjectStatus(c *gin.Context, ps *services.ProjectServices) {
	status, err := services.GetProjectStatus(c.Request.Context(), ps.FB, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func TopProjects(c *gin.Context, ps *services.ProjectServices, recompute bool) {
	var query dto.TopProjectsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if query.Count == 0 {
		query.Count = services.DefaultTopProjects
	}

	projects, err := services.TopProjects(c.Request.Context(), ps.FB, middleware.UserID(c), query.Count, recompute)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func RecentActivities(c *gin.Context, ps *services.ProjectServices) {
	activities, err := services.RecentActivities(c.Request.Context(), ps.FB, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}
