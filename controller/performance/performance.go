package performance

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

func PerformanceController(router *gin.Engine, fb *firestore.Client, roles middleware.RoleResolver) {
	read := middleware.RoleRequired(roles, model.PerformancePermissions, model.PermissionRead)

	routes := router.Group("/projects/:projectId/performance", middleware.SessionMiddleware()...)
	{
		routes.GET("/productivity", read, func(c *gin.Context) {
			Productivity(c, fb, false)
		})
		routes.POST("/productivity/recompute", read, func(c *gin.Context) {
			Productivity(c, fb, true)
		})
		routes.GET("/contributions/:userId", read, func(c *gin.Context) {
			UserContributions(c, fb)
		})
		routes.GET("/contributions/:userId/overview", read, func(c *gin.Context) {
			ContributionOverview(c, fb)
		})
		routes.GET("/average-time/:userId", read, func(c *gin.Context) {
			AverageTaskTime(c, fb)
		})
		routes.GET("/burndown", read, func(c *gin.Context) {
			Burndown(c, fb)
		})
	}
}

// timeWindow reads ?time=, defaulting to a week.
func timeWindow(c *gin.Context) (model.TimeWindow, bool) {
	var query dto.TimeWindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	if query.Time == "" {
		return model.WindowWeek, true
	}
	return model.TimeWindow(query.Time), true
}

func Productivity(c *gin.Context, fb *firestore.Client, recompute bool) {
	w, ok := timeWindow(c)
	if !ok {
		return
	}
	p, err := services.GetProductivity(c.Request.Context(), fb, c.Param("projectId"), w, recompute)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func UserContributions(c *gin.Context, fb *firestore.Client) {
	w, ok := timeWindow(c)
	if !ok {
		return
	}
	days, err := services.UserContributions(c.Request.Context(), fb, c.Param("projectId"), c.Param("userId"), w)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

func ContributionOverview(c *gin.Context, fb *firestore.Client) {
	w, ok := timeWindow(c)
	if !ok {
		return
	}
	overview, err := services.ContributionOverview(c.Request.Context(), fb, c.Param("projectId"), c.Param("userId"), w)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func AverageTaskTime(c *gin.Context, fb *firestore.Client) {
	weeks, err := services.AverageTaskTime(c.Request.Context(), fb, c.Param("projectId"), c.Param("userId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, weeks)
}

func Burndown(c *gin.Context, fb *firestore.Client) {
	points, err := services.SprintBurndown(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}
