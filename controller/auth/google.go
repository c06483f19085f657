package auth

import (
	"net/http"

	"tenor/apperr"
	"tenor/dto"
	"tenor/services"

	"cloud.google.com/go/firestore"
	fbauth "firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"
)

func SignInController(router *gin.Engine, fb *firestore.Client, ac *fbauth.Client) {
	router.POST("/auth/login", func(c *gin.Context) {
		SignIn(c, fb, ac)
	})
}

// SignIn exchanges a Firebase ID token (Google or email sign-in on the
// client) for a Tenor session.
func SignIn(c *gin.Context, fb *firestore.Client, ac *fbauth.Client) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}

	ctx := c.Request.Context()
	token, err := ac.VerifyIDToken(ctx, req.Token)
	if err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.CodeUnauthorized, err, "Invalid ID token"))
		return
	}
	email, _ := token.Claims["email"].(string)
	verified, _ := token.Claims["email_verified"].(bool)

	if err := services.EnsureUserDoc(ctx, fb, token.UID); err != nil {
		apperr.Respond(c, err)
		return
	}

	tokens, err := services.IssueTokens(ctx, fb, token.UID, email, verified)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            token.UID,
			"email":         email,
			"emailVerified": verified,
		},
		"token": tokens,
	})
}
