package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"tenor/dto"
	"tenor/services"

	"github.com/gin-gonic/gin"
)

type ResponseData struct {
	Success bool     `json:"success"`
	Score   float32  `json:"score,omitempty"`
	Action  string   `json:"action,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
	Message string   `json:"message,omitempty"`
}

func CaptchaController(router *gin.Engine, verifier *services.CaptchaVerifier) {
	routes := router.Group("/auth")
	{
		routes.POST("/captcha", func(c *gin.Context) {
			VerifyCaptcha(c, verifier)
		})
	}
}

func VerifyCaptcha(c *gin.Context, verifier *services.CaptchaVerifier) {
	var req dto.CaptchaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseData{Message: "Token is required"})
		return
	}

	result, err := verifier.Assess(c.Request.Context(), req.Token, req.Action, getClientIP(c), c.Request.UserAgent())
	if errors.Is(err, services.ErrCaptchaDisabled) {
		c.JSON(http.StatusServiceUnavailable, ResponseData{Message: "reCAPTCHA is not configured"})
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "verify reCAPTCHA", "error", err)
		c.JSON(http.StatusInternalServerError, ResponseData{Message: "Internal server error"})
		return
	}
	if result == nil {
		c.JSON(http.StatusBadRequest, ResponseData{Message: "reCAPTCHA verification failed"})
		return
	}

	c.JSON(http.StatusOK, ResponseData{
		Success: true,
		Score:   result.Score,
		Action:  result.Action,
		Reasons: result.Reasons,
		Message: "Captcha verified successfully",
	})
}

// getClientIP keeps the first address when a proxy chain is reported.
func getClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = c.Request.RemoteAddr
	}
	if idx := strings.Index(ip, ","); idx != -1 {
		ip = strings.TrimSpace(ip[:idx])
	}
	return ip
}
