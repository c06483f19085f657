package backlog

import (
	"net/http"

	"tenor/dto"
	"tenor/middleware"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func ListUserStories(c *gin.Context, fb *firestore.Client) {
	stories, err := services.ListUserStories(c.Request.Context(), fb, c.Param("projectId"))
	reply(c, http.StatusOK, stories, err)
}

func UserStoryTable(c *gin.Context, fb *firestore.Client) {
	rows, err := services.UserStoryTable(c.Request.Context(), fb, c.Param("projectId"))
	reply(c, http.StatusOK, rows, err)
}

func GetUserStoryDetail(c *gin.Context, fb *firestore.Client) {
	detail, err := services.GetUserStoryDetail(c.Request.Context(), fb, c.Param("projectId"), c.Param("userStoryId"))
	reply(c, http.StatusOK, detail, err)
}

func CreateUserStory(c *gin.Context, fb *firestore.Client) {
	var req dto.UserStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	story, err := services.CreateUserStory(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), req)
	reply(c, http.StatusCreated, story, err)
}

func ModifyUserStory(c *gin.Context, fb *firestore.Client) {
	var req dto.UserStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	story, err := services.ModifyUserStory(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("userStoryId"), req)
	reply(c, http.StatusOK, story, err)
}

func DeleteUserStory(c *gin.Context, fb *firestore.Client) {
	err := services.DeleteUserStory(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("userStoryId"))
	reply(c, http.StatusOK, gin.H{"message": "User story deleted"}, err)
}

func GenerateUserStories(c *gin.Context, fb *firestore.Client, ai *services.AIClient) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stories, err := services.GenerateUserStories(c.Request.Context(), fb, ai, c.Param("projectId"), req.Amount, req.Prompt)
	reply(c, http.StatusOK, stories, err)
}
