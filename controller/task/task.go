package task

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

func TaskController(router *gin.Engine, fb *firestore.Client, ai *services.AIClient, roles middleware.RoleResolver) {
	read := middleware.RoleRequired(roles, model.TaskPermissions, model.PermissionRead)
	write := middleware.RoleRequired(roles, model.TaskPermissions, model.PermissionWrite)

	project := router.Group("/projects/:projectId", middleware.SessionMiddleware()...)

	items := project.Group("/items/:itemType/:itemId/tasks")
	{
		items.GET("", read, func(c *gin.Context) {
			TaskTable(c, fb)
		})
		items.POST("", write, func(c *gin.Context) {
			CreateTask(c, fb)
		})
		items.POST("/generate", write, func(c *gin.Context) {
			GenerateTasks(c, fb, ai)
		})
	}

	routes := project.Group("/tasks")
	{
		routes.GET("/todo-status", read, func(c *gin.Context) {
			TodoStatus(c, fb)
		})
		routes.GET("/dependencies", read, func(c *gin.Context) {
			graph, err := services.GetDependencyGraph(c.Request.Context(), fb, c.Param("projectId"), model.ItemTask)
			if err != nil {
				apperr.Respond(c, err)
				return
			}
			c.JSON(http.StatusOK, graph)
		})
		routes.GET("/:taskId", read, func(c *gin.Context) {
			GetTaskDetail(c, fb)
		})
		routes.PUT("/:taskId", write, func(c *gin.Context) {
			ModifyTask(c, fb)
		})
		routes.PUT("/:taskId/status", write, func(c *gin.Context) {
			ChangeTaskStatus(c, fb)
		})
		routes.DELETE("/:taskId", write, func(c *gin.Context) {
			DeleteTask(c, fb)
		})
		routes.DELETE("", write, func(c *gin.Context) {
			DeleteTasks(c, fb)
		})
		routes.POST("/:taskId/dependencies", write, func(c *gin.Context) {
			AddDependency(c, fb)
		})
		routes.DELETE("/:taskId/dependencies/:dependencyId", write, func(c *gin.Context) {
			RemoveDependency(c, fb)
		})
	}
}

func TaskTable(c *gin.Context, fb *firestore.Client) {
	rows, err := services.TaskTable(c.Request.Context(), fb, c.Param("projectId"), c.Param("itemId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func CreateTask(c *gin.Context, fb *firestore.Client) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := services.CreateTask(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c),
		model.ItemType(c.Param("itemType")), c.Param("itemId"), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func GetTaskDetail(c *gin.Context, fb *firestore.Client) {
	detail, err := services.GetTaskDetail(c.Request.Context(), fb, c.Param("projectId"), c.Param("taskId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func ModifyTask(c *gin.Context, fb *firestore.Client) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := services.ModifyTask(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("taskId"), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func ChangeTaskStatus(c *gin.Context, fb *firestore.Client) {
	var req dto.TaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := services.ChangeTaskStatus(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("taskId"), req.StatusID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func DeleteTask(c *gin.Context, fb *firestore.Client) {
	if err := services.DeleteTask(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("taskId")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func DeleteTasks(c *gin.Context, fb *firestore.Client) {
	var req dto.DeleteTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := services.DeleteTasks(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), req.TaskIDs); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(req.TaskIDs)})
}

func TodoStatus(c *gin.Context, fb *firestore.Client) {
	status, err := services.TodoStatus(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func AddDependency(c *gin.Context, fb *firestore.Client) {
	var req dto.DependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := services.AddDependency(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), model.ItemTask, c.Param("taskId"), req.DependencyID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dependencyId": req.DependencyID})
}

func RemoveDependency(c *gin.Context, fb *firestore.Client) {
	err := services.RemoveDependency(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), model.ItemTask, c.Param("taskId"), c.Param("dependencyId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dependency removed"})
}

func GenerateTasks(c *gin.Context, fb *firestore.Client, ai *services.AIClient) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := services.GenerateTasks(c.Request.Context(), fb, ai, c.Param("projectId"),
		model.ItemType(c.Param("itemType")), c.Param("itemId"), req.Amount, req.Prompt)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}
