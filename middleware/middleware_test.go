package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tenor/apperr"
	"tenor/model"
	"tenor/services"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "refresh-secret")
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestAccessTokenMiddleware(t *testing.T) {
	setSecrets(t)

	router := gin.New()
	router.GET("/me", AccessTokenMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId":   UserID(c),
			"email":    c.GetString(EmailKey),
			"verified": c.GetBool(EmailVerifiedKey),
		})
	})

	token, err := services.CreateAccessToken("u1", "ada@example.com", true)
	if err != nil {
		t.Fatalf("CreateAccessToken() error = %v", err)
	}
	refresh, err := services.CreateRefreshToken("u1", "ada@example.com")
	if err != nil {
		t.Fatalf("CreateRefreshToken() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				if errorBody(t, w) == "" {
					t.Errorf("missing error message")
				}
				return
			}
			var body struct {
				UserID   string `json:"userId"`
				Email    string `json:"email"`
				Verified bool   `json:"verified"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.UserID != "u1" || body.Email != "ada@example.com" || !body.Verified {
				t.Errorf("context = %+v", body)
			}
		})
	}
}

func TestVerifiedEmailMiddleware(t *testing.T) {
	setSecrets(t)

	router := gin.New()
	router.GET("/x", AccessTokenMiddleware(), VerifiedEmailMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, verified := range []bool{false, true} {
		token, err := services.CreateAccessToken("u1", "ada@example.com", verified)
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		want := http.StatusForbidden
		if verified {
			want = http.StatusNoContent
		}
		if w.Code != want {
			t.Errorf("verified=%v: status = %d, want %d", verified, w.Code, want)
		}
	}
}

func TestRefreshTokenMiddleware(t *testing.T) {
	setSecrets(t)

	router := gin.New()
	router.POST("/refresh", RefreshTokenMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserID(c), "token": c.GetString(RefreshTokenKey)})
	})

	access, _ := services.CreateAccessToken("u1", "ada@example.com", true)
	refresh, err := services.CreateRefreshToken("u1", "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("access token accepted as refresh token: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), refresh) {
		t.Errorf("refresh token not stored on context")
	}
}

type fakeResolver struct {
	roles map[string]model.Role
}

func (f fakeResolver) ResolveRole(_ context.Context, projectID, userID string) (model.Role, error) {
	role, ok := f.roles[projectID+"/"+userID]
	if !ok {
		return model.Role{}, apperr.Forbidden("User is not a member of this project")
	}
	return role, nil
}

func TestRoleRequired(t *testing.T) {
	resolver := fakeResolver{roles: map[string]model.Role{
		"p1/owner":  model.OwnerRole,
		"p1/dev":    {ID: "dev", Backlog: model.PermissionRead, Issues: model.PermissionWrite},
		"p1/viewer": model.EmptyRole,
	}}

	router := gin.New()
	withUser := func(c *gin.Context) {
		c.Set(UserIDKey, c.GetHeader("X-User"))
	}
	router.POST("/projects/:projectId/backlog", withUser,
		RoleRequired(resolver, model.BacklogPermissions, model.PermissionWrite),
		func(c *gin.Context) {
			role, ok := Role(c)
			if !ok {
				t.Error("role not stored on context")
			}
			c.JSON(http.StatusOK, gin.H{"role": role.ID})
		})
	router.POST("/projects/:projectId/tasks", withUser,
		RoleRequired(resolver, model.TaskPermissions, model.PermissionWrite),
		func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		path string
		user string
		want int
	}{
		{"/projects/p1/backlog", "owner", http.StatusOK},
		{"/projects/p1/backlog", "dev", http.StatusForbidden},
		{"/projects/p1/backlog", "viewer", http.StatusForbidden},
		{"/projects/p1/backlog", "stranger", http.StatusForbidden},
		{"/projects/p2/backlog", "owner", http.StatusForbidden},
		// optimistic: write on issues is enough for tasks
		{"/projects/p1/tasks", "dev", http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, tt.path, nil)
		req.Header.Set("X-User", tt.user)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s as %s: status = %d, want %d", tt.path, tt.user, w.Code, tt.want)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/missing", func(c *gin.Context) {
		c.Set(UserIDKey, "u1")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["level"] != "WARN" || line["path"] != "/missing" || line["userId"] != "u1" {
		t.Errorf("log line = %v", line)
	}
	if line["status"] != float64(http.StatusNotFound) {
		t.Errorf("status = %v", line["status"])
	}
}
