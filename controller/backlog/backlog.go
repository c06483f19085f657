package backlog

import (
	"context"
	"net/http"

	"tenor/apperr"
	"tenor/dto"
	"tenor/middleware"
	"tenor/model"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func BacklogController(router *gin.Engine, fb *firestore.Client, ai *services.AIClient, roles middleware.RoleResolver) {
	read := middleware.RoleRequired(roles, model.BacklogPermissions, model.PermissionRead)
	write := middleware.RoleRequired(roles, model.BacklogPermissions, model.PermissionWrite)
	issueRead := middleware.RoleRequired(roles, model.IssuePermissions, model.PermissionRead)
	issueWrite := middleware.RoleRequired(roles, model.IssuePermissions, model.PermissionWrite)

	project := router.Group("/projects/:projectId", middleware.SessionMiddleware()...)

	project.GET("/backlog", read, func(c *gin.Context) {
		rows, err := services.BacklogTable(c.Request.Context(), fb, c.Param("projectId"))
		reply(c, http.StatusOK, rows, err)
	})

	epics := project.Group("/epics")
	{
		epics.GET("", read, func(c *gin.Context) {
			ListEpics(c, fb)
		})
		epics.GET("/count", read, func(c *gin.Context) {
			countItems(c, fb, model.ItemEpic)
		})
		epics.GET("/:epicId", read, func(c *gin.Context) {
			GetEpic(c, fb)
		})
		epics.POST("", write, func(c *gin.Context) {
			SaveEpic(c, fb, "")
		})
		epics.PUT("/:epicId", write, func(c *gin.Context) {
			SaveEpic(c, fb, c.Param("epicId"))
		})
		epics.DELETE("/:epicId", write, func(c *gin.Context) {
			DeleteEpic(c, fb)
		})
	}

	stories := project.Group("/user-stories")
	{
		stories.GET("", read, func(c *gin.Context) {
			ListUserStories(c, fb)
		})
		stories.GET("/table", read, func(c *gin.Context) {
			UserStoryTable(c, fb)
		})
		stories.GET("/count", read, func(c *gin.Context) {
			countItems(c, fb, model.ItemUserStory)
		})
		stories.GET("/dependencies", read, func(c *gin.Context) {
			dependencyGraph(c, fb, model.ItemUserStory)
		})
		stories.GET("/:userStoryId", read, func(c *gin.Context) {
			GetUserStoryDetail(c, fb)
		})
		stories.POST("", write, func(c *gin.Context) {
			CreateUserStory(c, fb)
		})
		stories.PUT("/:userStoryId", write, func(c *gin.Context) {
			ModifyUserStory(c, fb)
		})
		stories.DELETE("/:userStoryId", write, func(c *gin.Context) {
			DeleteUserStory(c, fb)
		})
		stories.PUT("/:userStoryId/tags", write, func(c *gin.Context) {
			setTags(c, services.SetUserStoryTags, fb, "userStoryId")
		})
		stories.POST("/:userStoryId/dependencies", write, func(c *gin.Context) {
			addDependency(c, fb, model.ItemUserStory, "userStoryId")
		})
		stories.DELETE("/:userStoryId/dependencies/:dependencyId", write, func(c *gin.Context) {
			removeDependency(c, fb, model.ItemUserStory, "userStoryId")
		})
		stories.POST("/generate", write, func(c *gin.Context) {
			GenerateUserStories(c, fb, ai)
		})
	}

	issues := project.Group("/issues")
	{
		issues.GET("", issueRead, func(c *gin.Context) {
			IssueTable(c, fb)
		})
		issues.GET("/count", issueRead, func(c *gin.Context) {
			countItems(c, fb, model.ItemIssue)
		})
		issues.GET("/:issueId", issueRead, func(c *gin.Context) {
			GetIssueDetail(c, fb)
		})
		issues.POST("", issueWrite, func(c *gin.Context) {
			CreateIssue(c, fb)
		})
		issues.PUT("/:issueId", issueWrite, func(c *gin.Context) {
			ModifyIssue(c, fb)
		})
		issues.DELETE("/:issueId", issueWrite, func(c *gin.Context) {
			DeleteIssue(c, fb)
		})
		issues.PUT("/:issueId/tags", issueWrite, func(c *gin.Context) {
			setTags(c, services.SetIssueTags, fb, "issueId")
		})
		issues.PUT("/:issueId/related-user-story", issueWrite, func(c *gin.Context) {
			SetRelatedUserStory(c, fb)
		})
	}

	items := project.Group("/backlog-items")
	{
		items.GET("", read, func(c *gin.Context) {
			ListBacklogItems(c, fb)
		})
		items.GET("/table", read, func(c *gin.Context) {
			BacklogItemTable(c, fb)
		})
		items.GET("/count", read, func(c *gin.Context) {
			countItems(c, fb, model.ItemBacklogItem)
		})
		items.GET("/:itemId", read, func(c *gin.Context) {
			GetBacklogItemDetail(c, fb)
		})
		items.POST("", write, func(c *gin.Context) {
			CreateBacklogItem(c, fb)
		})
		items.PUT("/:itemId", write, func(c *gin.Context) {
			ModifyBacklogItem(c, fb)
		})
		items.DELETE("/:itemId", write, func(c *gin.Context) {
			DeleteBacklogItem(c, fb)
		})
		items.PUT("/:itemId/tags", write, func(c *gin.Context) {
			setTags(c, services.SetBacklogItemTags, fb, "itemId")
		})
	}
}

func reply(c *gin.Context, status int, v any, err error) {
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(status, v)
}

func countItems(c *gin.Context, fb *firestore.Client, t model.ItemType) {
	n, err := services.CountItems(c.Request.Context(), fb, c.Param("projectId"), t)
	reply(c, http.StatusOK, gin.H{"count": n}, err)
}

func dependencyGraph(c *gin.Context, fb *firestore.Client, t model.ItemType) {
	graph, err := services.GetDependencyGraph(c.Request.Context(), fb, c.Param("projectId"), t)
	reply(c, http.StatusOK, graph, err)
}

func addDependency(c *gin.Context, fb *firestore.Client, t model.ItemType, param string) {
	var req dto.DependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := services.AddDependency(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), t, c.Param(param), req.DependencyID)
	reply(c, http.StatusOK, gin.H{"dependencyId": req.DependencyID}, err)
}

func removeDependency(c *gin.Context, fb *firestore.Client, t model.ItemType, param string) {
	err := services.RemoveDependency(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), t, c.Param(param), c.Param("dependencyId"))
	reply(c, http.StatusOK, gin.H{"message": "Dependency removed"}, err)
}

type tagSetter func(ctx context.Context, fb *firestore.Client, projectID, userID, id string, tagIDs []string) error

func setTags(c *gin.Context, set tagSetter, fb *firestore.Client, param string) {
	var req dto.TagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := set(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param(param), req.TagIDs)
	reply(c, http.StatusOK, gin.H{"tagIds": req.TagIDs}, err)
}
