package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tenor/services"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestVerifyCaptchaDisabled(t *testing.T) {
	router := gin.New()
	CaptchaController(router, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing token", `{}`, http.StatusBadRequest},
		{"not configured", `{"token":"abc","action":"login"}`, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/captcha", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			var got ResponseData
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got.Success || got.Message == "" {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/captcha", nil)
	c.Request.RemoteAddr = "203.0.113.7:5123"

	if got := getClientIP(c); got != "203.0.113.7" {
		t.Errorf("getClientIP() = %q", got)
	}
}

func TestSessionRoutesCheckTokenKind(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "refresh-secret")

	router := gin.New()
	SessionController(router, nil, nil)

	access, err := services.CreateAccessToken("u1", "ada@example.com", true)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		method, path, token string
	}{
		{http.MethodPost, "/auth/refresh", ""},
		{http.MethodPost, "/auth/refresh", access},
		{http.MethodPost, "/auth/logout", ""},
		{http.MethodGet, "/auth/verification", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		if tt.token != "" {
			req.Header.Set("Authorization", "Bearer "+tt.token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d", tt.method, tt.path, w.Code)
		}
	}
}
