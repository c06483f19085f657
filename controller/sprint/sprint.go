package sprint

import (
	"net/http"
	"strconv"

	"tenor/apperr"
	"tenor/dto"
	"tenor/middleware"
	"tenor/model"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func SprintController(router *gin.Engine, fb *firestore.Client, roles middleware.RoleResolver) {
	read := middleware.RoleRequired(roles, model.SprintPermissions, model.PermissionRead)
	write := middleware.RoleRequired(roles, model.SprintPermissions, model.PermissionWrite)

	routes := router.Group("/projects/:projectId/sprints", middleware.SessionMiddleware()...)
	{
		routes.GET("", read, func(c *gin.Context) {
			ListSprints(c, fb)
		})
		routes.GET("/current", read, func(c *gin.Context) {
			CurrentSprint(c, fb)
		})
		routes.GET("/number/:number", read, func(c *gin.Context) {
			GetSprintByNumber(c, fb)
		})
		routes.GET("/backlog-previews", read, func(c *gin.Context) {
			BacklogPreviews(c, fb)
		})
		routes.POST("", write, func(c *gin.Context) {
			SaveSprint(c, fb)
		})
		routes.PUT("/assign", write, func(c *gin.Context) {
			AssignItems(c, fb)
		})
		routes.DELETE("/:sprintId", write, func(c *gin.Context) {
			DeleteSprint(c, fb)
		})
	}
}

func ListSprints(c *gin.Context, fb *firestore.Client) {
	sprints, err := services.ListSprints(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, sprints)
}

// CurrentSprint replies with null when no sprint is running.
func CurrentSprint(c *gin.Context, fb *firestore.Client) {
	sprint, err := services.CurrentSprint(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}

func GetSprintByNumber(c *gin.Context, fb *firestore.Client) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sprint number must be an integer"})
		return
	}
	sprint, err := services.GetSprintByNumber(c.Request.Context(), fb, c.Param("projectId"), number)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}

func BacklogPreviews(c *gin.Context, fb *firestore.Client) {
	previews, err := services.BacklogPreviewsBySprint(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, previews)
}

// SaveSprint creates a sprint when the body's number is -1.
func SaveSprint(c *gin.Context, fb *firestore.Client) {
	var req dto.SprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprint, err := services.CreateOrModifySprint(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	status := http.StatusOK
	if req.Number == -1 {
		status = http.StatusCreated
	}
	c.JSON(status, sprint)
}

func AssignItems(c *gin.Context, fb *firestore.Client) {
	var req dto.AssignItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := services.AssignItemsToSprint(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), req); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sprintId": req.SprintID, "items": req.Items})
}

func DeleteSprint(c *gin.Context, fb *firestore.Client) {
	if err := services.DeleteSprint(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("sprintId")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sprint deleted"})
}
