package backlog

import (
	"net/http"

	"tenor/dto"
	"tenor/middleware"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func IssueTable(c *gin.Context, fb *firestore.Client) {
	rows, err := services.IssueTable(c.Request.Context(), fb, c.Param("projectId"))
	reply(c, http.StatusOK, rows, err)
}

func GetIssueDetail(c *gin.Context, fb *firestore.Client) {
	detail, err := services.GetIssueDetail(c.Request.Context(), fb, c.Param("projectId"), c.Param("issueId"))
	reply(c, http.StatusOK, detail, err)
}

func CreateIssue(c *gin.Context, fb *firestore.Client) {
	var req dto.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	issue, err := services.CreateIssue(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), req)
	reply(c, http.StatusCreated, issue, err)
}

func ModifyIssue(c *gin.Context, fb *firestore.Client) {
	var req dto.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	issue, err := services.ModifyIssue(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("issueId"), req)
	reply(c, http.StatusOK, issue, err)
}

func DeleteIssue(c *gin.Context, fb *firestore.Client) {
	err := services.DeleteIssue(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("issueId"))
	reply(c, http.StatusOK, gin.H{"message": "Issue deleted"}, err)
}

// SetRelatedUserStory links the issue to a user story. An empty id unlinks.
func SetRelatedUserStory(c *gin.Context, fb *firestore.Client) {
	var req dto.RelatedUserStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := services.SetRelatedUserStory(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("issueId"), req.UserStoryID)
	reply(c, http.StatusOK, gin.H{"relatedUserStoryId": req.UserStoryID}, err)
}
