package auth

import (
	"log/slog"
	"net/http"

	"tenor/apperr"
	"tenor/middleware"
	"tenor/services"

	"cloud.google.com/go/firestore"
	fbauth "firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"
)

func SessionController(router *gin.Engine, fb *firestore.Client, ac *fbauth.Client) {
	router.POST("/auth/refresh", middleware.RefreshTokenMiddleware(), func(c *gin.Context) {
		Refresh(c, fb)
	})

	routes := router.Group("/auth", middleware.AccessTokenMiddleware())
	{
		routes.POST("/logout", func(c *gin.Context) {
			Logout(c, fb, ac)
		})
		routes.GET("/verification", func(c *gin.Context) {
			Verification(c, fb, ac)
		})
	}
}

func Refresh(c *gin.Context, fb *firestore.Client) {
	tokens, err := services.RefreshAccessToken(c.Request.Context(), fb,
		middleware.UserID(c),
		c.GetString(middleware.EmailKey),
		c.GetString(middleware.RefreshTokenKey),
	)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func Logout(c *gin.Context, fb *firestore.Client, ac *fbauth.Client) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	if err := services.RevokeRefreshToken(ctx, fb, userID); err != nil {
		apperr.Respond(c, err)
		return
	}
	// The local session is already gone, so a Firebase failure is only logged.
	if err := ac.RevokeRefreshTokens(ctx, userID); err != nil {
		slog.WarnContext(ctx, "revoke firebase refresh tokens", "userId", userID, "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Verification re-reads the account so a client can pick up a verified
// email without signing in again.
func Verification(c *gin.Context, fb *firestore.Client, ac *fbauth.Client) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	rec, err := ac.GetUser(ctx, userID)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			apperr.Respond(c, apperr.Unauthorized("User not found"))
			return
		}
		apperr.Respond(c, err)
		return
	}

	if !rec.EmailVerified || c.GetBool(middleware.EmailVerifiedKey) {
		c.JSON(http.StatusOK, gin.H{"emailVerified": rec.EmailVerified})
		return
	}

	tokens, err := services.IssueTokens(ctx, fb, userID, rec.Email, true)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emailVerified": true, "token": tokens})
}
