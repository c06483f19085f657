package backlog

import (
	"net/http"

	"tenor/dto"
	"tenor/middleware"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func ListEpics(c *gin.Context, fb *firestore.Client) {
	epics, err := services.ListEpics(c.Request.Context(), fb, c.Param("projectId"))
	reply(c, http.StatusOK, epics, err)
}

func GetEpic(c *gin.Context, fb *firestore.Client) {
	epic, err := services.GetEpic(c.Request.Context(), fb, c.Param("projectId"), c.Param("epicId"))
	reply(c, http.StatusOK, epic, err)
}

// SaveEpic creates when id is empty and modifies otherwise.
func SaveEpic(c *gin.Context, fb *firestore.Client, id string) {
	var req dto.EpicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	epic, err := services.CreateOrModifyEpic(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), id, req)
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	reply(c, status, epic, err)
}

func DeleteEpic(c *gin.Context, fb *firestore.Client) {
	err := services.DeleteEpic(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("epicId"))
	reply(c, http.StatusOK, gin.H{"message": "Epic deleted"}, err)
}
