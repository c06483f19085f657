package connection

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tenor/config"
	"tenor/eeg"
	"tenor/services"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T, origins []string) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "refresh-secret")

	return NewRouter(&config.Config{CORSOrigins: origins}, Deps{
		Firebase: &Firebase{},
		AI:       services.NewAIClient(nil, 0),
		HTTP:     http.DefaultClient,
		Hub:      eeg.NewHub(1),
		Quality:  eeg.NewQualityInferer(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouterRegistersEveryController(t *testing.T) {
	router := testRouter(t, nil)

	if w := serve(router, http.MethodGet, "/", nil); w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", w.Code)
	}

	protected := []struct{ method, path string }{
		{http.MethodGet, "/projects"},
		{http.MethodGet, "/projects/top"},
		{http.MethodGet, "/projects/p1"},
		{http.MethodGet, "/projects/p1/settings/statuses"},
		{http.MethodGet, "/projects/p1/requirement-types/default"},
		{http.MethodGet, "/projects/p1/requirement-focus/f1"},
		{http.MethodGet, "/projects/p1/user-stories/table"},
		{http.MethodGet, "/projects/p1/items/US/us1/tasks"},
		{http.MethodPut, "/projects/p1/tasks/t1/status"},
		{http.MethodGet, "/projects/p1/sprints/current"},
		{http.MethodGet, "/projects/p1/kanban/items/IS/i1/status"},
		{http.MethodGet, "/projects/p1/performance/burndown"},
		{http.MethodGet, "/projects/p1/retrospectives/s1/answers"},
		{http.MethodGet, "/projects/p1/users/table"},
		{http.MethodGet, "/users/u1"},
		{http.MethodGet, "/files"},
		{http.MethodPost, "/ai/autocompletion"},
		{http.MethodGet, "/logs"},
	}
	for _, r := range protected {
		if w := serve(router, r.method, r.path, nil); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", r.method, r.path, w.Code)
		}
	}

	if w := serve(router, http.MethodPost, "/auth/captcha", nil); w.Code != http.StatusBadRequest {
		t.Errorf("captcha without body: status = %d", w.Code)
	}
	if w := serve(router, http.MethodGet, "/nowhere", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown route: status = %d", w.Code)
	}
}

func TestRouterCORS(t *testing.T) {
	preflight := http.Header{
		"Origin":                        {"https://tenor.example"},
		"Access-Control-Request-Method": {"POST"},
	}

	w := serve(testRouter(t, nil), http.MethodOptions, "/projects", preflight)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("open CORS: allow origin = %q", got)
	}

	w = serve(testRouter(t, []string{"https://tenor.example"}), http.MethodOptions, "/projects", preflight)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://tenor.example" {
		t.Errorf("listed origin: allow origin = %q", got)
	}

	preflight.Set("Origin", "https://evil.example")
	w = serve(testRouter(t, []string{"https://tenor.example"}), http.MethodOptions, "/projects", preflight)
	if w.Code != http.StatusForbidden {
		t.Errorf("unlisted origin: status = %d", w.Code)
	}
}

func TestShutdownEndsMuseStreams(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "refresh-secret")
	hub := eeg.NewHub(1)
	router := NewRouter(&config.Config{}, Deps{
		Firebase: &Firebase{},
		AI:       services.NewAIClient(nil, 0),
		HTTP:     http.DefaultClient,
		Hub:      hub,
		Quality:  eeg.NewQualityInferer(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := newHTTPServer(ln.Addr().String(), router, hub)
	go srv.Serve(ln)

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/muse_data")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if hub.Subscribers() != 1 {
		t.Fatalf("subscribers = %d, want 1", hub.Subscribers())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	start := time.Now()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() = %v after %v", err, time.Since(start))
	}
	if _, err := io.ReadAll(resp.Body); err != nil {
		t.Logf("stream closed with %v", err)
	}
}
