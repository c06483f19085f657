package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"bad request", BadRequest("bad %s", "input"), http.StatusBadRequest, "bad input"},
		{"forbidden", Forbidden("nope"), http.StatusForbidden, "nope"},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("Project not found")), http.StatusNotFound, "Project not found"},
		{"grpc not found", status.Error(codes.NotFound, "missing"), http.StatusNotFound, "Not found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := Status(tt.err)
			if code != tt.wantCode || msg != tt.wantMsg {
				t.Errorf("Status() = %d %q, want %d %q", code, msg, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(status.Error(codes.NotFound, "x")) {
		t.Error("grpc NotFound should be not found")
	}
	if !IsNotFound(NotFound("x")) {
		t.Error("NotFound should be not found")
	}
	if IsNotFound(BadRequest("x")) {
		t.Error("BadRequest should not be not found")
	}
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Respond(c, Forbidden("You do not have permission"))

	if w.Code != http.StatusForbidden {
		t.Errorf("code = %d, want %d", w.Code, http.StatusForbidden)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "You do not have permission" {
		t.Errorf("error = %q", body["error"])
	}
	if !c.IsAborted() {
		t.Error("context should be aborted")
	}
}

func TestWrapUnwrap(t *testing.T) {
	inner := errors.New("disk")
	err := Wrap(CodeInternal, inner, "save failed")
	if !errors.Is(err, inner) {
		t.Error("Wrap should keep the cause")
	}
	if err.Error() != "save failed: disk" {
		t.Errorf("Error() = %q", err.Error())
	}
}
