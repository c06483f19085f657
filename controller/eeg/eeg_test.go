package eeg

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tenor/eeg"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(hub *eeg.Hub) *gin.Engine {
	router := gin.New()
	MuseController(router, nil, hub, eeg.NewQualityInferer())
	return router
}

func TestMuseRelay(t *testing.T) {
	hub := eeg.NewHub(4)
	srv := httptest.NewServer(newRouter(hub))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/muse_data", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	for hub.Subscribers() == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("stream never subscribed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	body := `{"signals":{"alpha":12.5},"channels":{"TP9":{"delta":1,"theta":1,"alpha":1,"beta":1,"gamma":1}},"timestamp":42}`
	post, err := http.Post(srv.URL+"/api/muse_data", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusOK {
		t.Fatalf("post status = %d", post.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var got museEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &got); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		if got.Signals["alpha"] != 12.5 || got.Timestamp != 42 {
			t.Errorf("got %+v", got)
		}
		if got.Quality["TP9"] != eeg.QualityCalibrating {
			t.Errorf("TP9 quality = %q", got.Quality["TP9"])
		}
		if got.Quality["AF7"] != eeg.QualityNA {
			t.Errorf("AF7 quality = %q", got.Quality["AF7"])
		}
		return
	}
	t.Fatalf("stream ended without data: %v", scanner.Err())
}

func TestPostMuseDataWithoutListeners(t *testing.T) {
	router := newRouter(eeg.NewHub(1))

	req := httptest.NewRequest(http.MethodPost, "/api/muse_data", strings.NewReader(`{"signals":{"beta":3}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"subscribers":0`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestEmotionLogsNeedSession(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "access-secret")
	router := newRouter(eeg.NewHub(1))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/logs", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s /logs: status = %d", method, w.Code)
		}
	}
}
