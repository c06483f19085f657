package user

import (
	"net/http"

	"tenor/apperr"
	"tenor/dto"
	"tenor/middleware"
	"tenor/model"
	"tenor/services"

	"cloud.google.com/go/firestore"
	fbauth "firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"
)

const defaultSearchLimit = 20

func UserController(router *gin.Engine, fb *firestore.Client, ac *fbauth.Client, store *services.FileStore, roles middleware.RoleResolver) {
	routes := router.Group("/users", middleware.SessionMiddleware()...)
	{
		routes.GET("", func(c *gin.Context) {
			SearchUsers(c, ac)
		})
		routes.GET("/:userId", func(c *gin.Context) {
			GetUser(c, ac)
		})
		routes.PUT("/me", func(c *gin.Context) {
			UpdateProfile(c, ac, store)
		})
	}

	read := middleware.RoleRequired(roles, model.UsersPermissions, model.PermissionRead)
	write := middleware.RoleRequired(roles, model.SettingsPermissions, model.PermissionWrite)

	members := router.Group("/projects/:projectId/users", middleware.SessionMiddleware()...)
	{
		members.GET("", read, func(c *gin.Context) {
			ListMembers(c, fb)
		})
		members.GET("/table", read, func(c *gin.Context) {
			MemberTable(c, fb, ac)
		})
		members.POST("", write, func(c *gin.Context) {
			AddMember(c, fb)
		})
		members.DELETE("/:userId", write, func(c *gin.Context) {
			RemoveMember(c, fb)
		})
		members.PUT("/:userId/role", write, func(c *gin.Context) {
			UpdateMemberRole(c, fb)
		})
	}
}

func SearchUsers(c *gin.Context, ac *fbauth.Client) {
	var query dto.SearchUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if query.Limit == 0 {
		query.Limit = defaultSearchLimit
	}

	users, err := services.SearchUsers(c.Request.Context(), ac, query.Query, query.Limit)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func GetUser(c *gin.Context, ac *fbauth.Client) {
	profile, err := services.GetUserProfile(c.Request.Context(), ac, c.Param("userId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func UpdateProfile(c *gin.Context, ac *fbauth.Client, store *services.FileStore) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	profile, err := services.UpdateProfile(c.Request.Context(), ac, store, middleware.UserID(c), req.DisplayName, req.Photo)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func ListMembers(c *gin.Context, fb *firestore.Client) {
	members, err := services.ListMembers(c.Request.Context(), fb, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func MemberTable(c *gin.Context, fb *firestore.Client, ac *fbauth.Client) {
	members, err := services.ListMemberProfiles(c.Request.Context(), fb, ac, c.Param("projectId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func AddMember(c *gin.Context, fb *firestore.Client) {
	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projectID := c.Param("projectId")
	if err := services.AddMember(c.Request.Context(), fb, projectID, req.UserID); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"userId": req.UserID, "roleId": model.EmptyRoleID})
}

func RemoveMember(c *gin.Context, fb *firestore.Client) {
	if err := services.RemoveMember(c.Request.Context(), fb, c.Param("projectId"), c.Param("userId")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User removed"})
}

func UpdateMemberRole(c *gin.Context, fb *firestore.Client) {
	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.UpdateMemberRole(c.Request.Context(), fb, c.Param("projectId"), c.Param("userId"), req.RoleID); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": c.Param("userId"), "roleId": req.RoleID})
}
