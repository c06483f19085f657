package kanban

import (
	"net/http"

	"tenor/apperr"
	"tenor/middleware"
	"tenor/model"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func KanbanController(router *gin.Engine, fb *firestore.Client, roles middleware.RoleResolver) {
	read := middleware.RoleRequired(roles, model.ScrumboardPermissions, model.PermissionRead)

	routes := router.Group("/projects/:projectId/kanban", middleware.SessionMiddleware()...)
	{
		routes.GET("/tasks", read, func(c *gin.Context) {
			board, err := services.KanbanTasks(c.Request.Context(), fb, c.Param("projectId"))
			respond(c, board, err)
		})
		routes.GET("/items", read, func(c *gin.Context) {
			board, err := services.KanbanItems(c.Request.Context(), fb, c.Param("projectId"))
			respond(c, board, err)
		})
		routes.GET("/items/:itemType/:itemId/status", read, func(c *gin.Context) {
			AutomaticStatus(c, fb)
		})
	}
}

func respond(c *gin.Context, v any, err error) {
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// AutomaticStatus is the status an item takes from its tasks. Issues may
// land in "Awaits Review".
func AutomaticStatus(c *gin.Context, fb *firestore.Client) {
	t := model.ItemType(c.Param("itemType"))
	if !t.Parent() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item type must be US, IS or IT"})
		return
	}
	status, err := services.ItemAutomaticStatus(c.Request.Context(), fb, c.Param("projectId"), c.Param("itemId"), t == model.ItemIssue)
	respond(c, status, err)
}
