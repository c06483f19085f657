package ai

import (
	"net/http"

	"tenor/apperr"
	"tenor/dto"
	"tenor/middleware"
	"tenor/services"

	"github.com/gin-gonic/gin"
)

func AIController(router *gin.Engine, ai *services.AIClient) {
	routes := router.Group("", middleware.SessionMiddleware()...)
	{
		routes.POST("/ai/autocompletion", func(c *gin.Context) {
			Autocompletion(c, ai)
		})
		routes.POST("/frida/generate-req", func(c *gin.Context) {
			GenerateREQ(c, ai)
		})
		routes.POST("/api/token_count", func(c *gin.Context) {
			TokenCount(c, ai)
		})
	}
}

func Autocompletion(c *gin.Context, ai *services.AIClient) {
	var req dto.AutocompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := services.Autocomplete(c.Request.Context(), ai, req.Messages, req.RelatedContext)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func GenerateREQ(c *gin.Context, ai *services.AIClient) {
	var req dto.GenerateREQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Context is required in the request body"})
		return
	}
	list, err := services.GenerateRequirementList(c.Request.Context(), ai, req.Context)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func TokenCount(c *gin.Context, ai *services.AIClient) {
	var req dto.TokenCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tokens, err := ai.CountTokens(c.Request.Context(), req.Text)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokenCount": tokens})
}

// ProxyController serves the standalone requirement generator. It has no
// session check, like the proxy it stands in for.
func ProxyController(router *gin.Engine, ai *services.AIClient) {
	router.POST("/generateREQ", func(c *gin.Context) {
		GenerateREQ(c, ai)
	})
}
