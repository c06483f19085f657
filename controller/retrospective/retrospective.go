package retrospective

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

func RetrospectiveController(router *gin.Engine, fb *firestore.Client, ai *services.AIClient, roles middleware.RoleResolver) {
	read := middleware.RoleRequired(roles, model.ReviewPermissions, model.PermissionRead)
	write := middleware.RoleRequired(roles, model.ReviewPermissions, model.PermissionWrite)

	routes := router.Group("/projects/:projectId/retrospectives", middleware.SessionMiddleware()...)
	{
		routes.GET("/questions", read, func(c *gin.Context) {
			c.JSON(http.StatusOK, services.RetrospectiveQuestions())
		})
		routes.GET("/previous-sprint", read, func(c *gin.Context) {
			PreviousSprint(c, fb)
		})

		routes.POST("/:sprintId/team-progress", write, func(c *gin.Context) {
			TeamProgress(c, fb, true)
		})
		routes.GET("/:sprintId/team-progress", read, func(c *gin.Context) {
			TeamProgress(c, fb, false)
		})
		routes.POST("/:sprintId/personal-progress", write, func(c *gin.Context) {
			PersonalProgress(c, fb, true)
		})
		routes.GET("/:sprintId/personal-progress", read, func(c *gin.Context) {
			PersonalProgress(c, fb, false)
		})

		routes.GET("/:sprintId/answers", read, func(c *gin.Context) {
			GetAnswers(c, fb)
		})
		routes.PUT("/:sprintId/answers", write, func(c *gin.Context) {
			SaveAnswer(c, fb)
		})
		routes.PUT("/:sprintId/happiness", write, func(c *gin.Context) {
			SaveHappiness(c, fb)
		})
		routes.POST("/:sprintId/process", write, func(c *gin.Context) {
			ProcessAnswers(c, ai)
		})
		routes.POST("/:sprintId/report", write, func(c *gin.Context) {
			SendReport(c, fb, ai)
		})
	}
}

// PreviousSprint replies with null when no sprint ended recently.
func PreviousSprint(c *gin.Context, fb *firestore.Client) {
	sprint, err := services.PreviousSprint(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}

func TeamProgress(c *gin.Context, fb *firestore.Client, ensure bool) {
	get := services.GetTeamProgress
	if ensure {
		get = services.EnsureTeamProgress
	}
	progress, err := get(c.Request.Context(), fb, c.Param("projectId"), c.Param("sprintId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func PersonalProgress(c *gin.Context, fb *firestore.Client, ensure bool) {
	get := services.GetPersonalProgress
	if ensure {
		get = services.EnsurePersonalProgress
	}
	progress, err := get(c.Request.Context(), fb, c.Param("projectId"), c.Param("sprintId"), middleware.UserID(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func GetAnswers(c *gin.Context, fb *firestore.Client) {
	answers, err := services.GetRetrospectiveAnswers(c.Request.Context(), fb, c.Param("projectId"), c.Param("sprintId"), middleware.UserID(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

func SaveAnswer(c *gin.Context, fb *firestore.Client) {
	var req dto.RetrospectiveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := services.SaveRetrospectiveAnswer(c.Request.Context(), fb, c.Param("projectId"), c.Param("sprintId"), middleware.UserID(c), req.Index, req.Answer)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func SaveHappiness(c *gin.Context, fb *firestore.Client) {
	var req dto.HappinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := services.SaveHappiness(c.Request.Context(), fb, c.Param("projectId"), c.Param("sprintId"), middleware.UserID(c), req.Happiness)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func ProcessAnswers(c *gin.Context, ai *services.AIClient) {
	var req dto.RetrospectiveAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	processed, err := services.ProcessRetrospectiveAnswers(c.Request.Context(), ai, req.Answers)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, processed)
}

func SendReport(c *gin.Context, fb *firestore.Client, ai *services.AIClient) {
	var req dto.RetrospectiveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summarize := req.Summarize == nil || *req.Summarize

	processed, err := services.SendRetrospectiveReport(c.Request.Context(), fb, ai,
		c.Param("projectId"), c.Param("sprintId"), middleware.UserID(c), req.Answers, summarize)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, processed)
}
