package settings

import (
	"net/http"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

// TagRoutes registers list/get and, when write is not nil, the
// create/modify/delete routes for one tag collection.
func TagRoutes(routes *gin.RouterGroup, fb *firestore.Client, collection string, read, write gin.HandlerFunc) {
	routes.GET("", read, func(c *gin.Context) {
		tags, err := services.ListTags(c.Request.Context(), fb, c.Param("projectId"), collection)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, tags)
	})
	routes.GET("/:tagId", read, func(c *gin.Context) {
		tag, err := services.GetTag(c.Request.Context(), fb, c.Param("projectId"), collection, c.Param("tagId"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, tag)
	})
	if write == nil {
		return
	}

	routes.POST("", write, func(c *gin.Context) {
		var req dto.TagRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		tag, err := services.CreateTag(c.Request.Context(), fb, c.Param("projectId"), collection, model.Tag{Name: req.Name, Color: req.Color})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, tag)
	})
	routes.PUT("/:tagId", write, func(c *gin.Context) {
		var req dto.TagRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		tag, err := services.ModifyTag(c.Request.Context(), fb, c.Param("projectId"), collection, c.Param("tagId"), model.Tag{Name: req.Name, Color: req.Color})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, tag)
	})
	routes.DELETE("/:tagId", write, func(c *gin.Context) {
		if err := services.DeleteTag(c.Request.Context(), fb, c.Param("projectId"), collection, c.Param("tagId")); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
	})
}

func ListStatusTypes(c *gin.Context, fb *firestore.Client) {
	statuses, err := services.ListStatusTypes(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func GetStatusType(c *gin.Context, fb *firestore.Client) {
	status, err := services.GetStatusType(c.Request.Context(), fb, c.Param("projectId"), c.Param("statusId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func statusFrom(req dto.StatusTypeRequest) model.StatusTag {
	return model.StatusTag{
		Tag:             model.Tag{Name: req.Name, Color: req.Color},
		MarksTaskAsDone: req.MarksTaskAsDone,
	}
}

func CreateStatusType(c *gin.Context, fb *firestore.Client) {
	var req dto.StatusTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := services.CreateStatusType(c.Request.Context(), fb, c.Param("projectId"), statusFrom(req))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

func ModifyStatusType(c *gin.Context, fb *firestore.Client) {
	var req dto.StatusTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := services.ModifyStatusType(c.Request.Context(), fb, c.Param("projectId"), c.Param("statusId"), statusFrom(req))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func ReorderStatusTypes(c *gin.Context, fb *firestore.Client) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := services.ReorderStatusTypes(c.Request.Context(), fb, c.Param("projectId"), req.IDs); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Statuses reordered"})
}

func DeleteStatusType(c *gin.Context, fb *firestore.Client) {
	if err := services.DeleteStatusType(c.Request.Context(), fb, c.Param("projectId"), c.Param("statusId")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status deleted"})
}
