package backlog

import (
	"net/http"

	"tenor/dto"
	"tenor/middleware"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func ListBacklogItems(c *gin.Context, fb *firestore.Client) {
	items, err := services.ListBacklogItems(c.Request.Context(), fb, c.Param("projectId"))
	reply(c, http.StatusOK, items, err)
}

func BacklogItemTable(c *gin.Context, fb *firestore.Client) {
	rows, err := services.BacklogItemTable(c.Request.Context(), fb, c.Param("projectId"))
	reply(c, http.StatusOK, rows, err)
}

func GetBacklogItemDetail(c *gin.Context, fb *firestore.Client) {
	detail, err := services.GetBacklogItemDetail(c.Request.Context(), fb, c.Param("projectId"), c.Param("itemId"))
	reply(c, http.StatusOK, detail, err)
}

func CreateBacklogItem(c *gin.Context, fb *firestore.Client) {
	var req dto.BacklogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := services.CreateBacklogItem(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), req)
	reply(c, http.StatusCreated, item, err)
}

func ModifyBacklogItem(c *gin.Context, fb *firestore.Client) {
	var req dto.BacklogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := services.ModifyBacklogItem(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("itemId"), req)
	reply(c, http.StatusOK, item, err)
}

func DeleteBacklogItem(c *gin.Context, fb *firestore.Client) {
	err := services.DeleteBacklogItem(c.Request.Context(), fb, c.Param("projectId"), middleware.UserID(c), c.Param("itemId"))
	reply(c, http.StatusOK, gin.H{"message": "Backlog item deleted"}, err)
}
