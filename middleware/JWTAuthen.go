package middleware

import (
	"strings"

	"tenor/apperr"
	"tenor/services"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey        = "userId"
	EmailKey         = "email"
	EmailVerifiedKey = "emailVerified"
	RefreshTokenKey  = "refreshToken"
)

func bearerToken(c *gin.Context) (string, error) {
	header := c.Request.Header.Get("Authorization")
	if header == "" {
		return "", apperr.Unauthorized("Authorization header is missing")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", apperr.Unauthorized("Invalid token format")
	}
	return token, nil
}

// AccessTokenMiddleware checks the session JWT and stores the caller's
// identity on the context.
func AccessTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		claims, err := services.ParseAccessToken(token)
		if err != nil {
			apperr.Respond(c, apperr.Unauthorized("Token is expired or invalid"))
			return
		}
		if claims.UserID == "" {
			apperr.Respond(c, apperr.Unauthorized("Invalid userId in token claims"))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(EmailVerifiedKey, claims.EmailVerified)
		c.Next()
	}
}

// VerifiedEmailMiddleware must run after AccessTokenMiddleware.
func VerifiedEmailMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(EmailVerifiedKey) {
			apperr.Respond(c, apperr.Forbidden("Email is not verified"))
			return
		}
		c.Next()
	}
}

func RefreshTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		claims, err := services.ParseRefreshToken(token)
		if err != nil {
			apperr.Respond(c, apperr.Unauthorized("Invalid refresh token"))
			return
		}
		if claims.UserID == "" {
			apperr.Respond(c, apperr.Unauthorized("Invalid token claims: userId not found"))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(RefreshTokenKey, token)
		c.Next()
	}
}

// UserID returns the authenticated caller set by the token middlewares.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// SessionMiddleware is the chain every authenticated route outside /auth
// runs: a valid access token for a verified email.
func SessionMiddleware() gin.HandlersChain {
	return gin.HandlersChain{AccessTokenMiddleware(), VerifiedEmailMiddleware()}
}
