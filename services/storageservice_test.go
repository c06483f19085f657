package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

func TestDownloadURL(t *testing.T) {
	got := DownloadURL("tenor.appspot.com", "projects/p1/logo/a b.png", "tok")
	want := "https://firebasestorage.googleapis.com/v0/b/tenor.appspot.com/o/projects%2Fp1%2Flogo%2Fa%20b.png?alt=media&token=tok"
	if got != want {
		t.Errorf("DownloadURL() = %q, want %q", got, want)
	}
}

func TestFileStoreDisabled(t *testing.T) {
	var s *FileStore
	if _, err := s.Upload(context.Background(), "x", "text/plain", strings.NewReader("x")); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("Upload() error = %v", err)
	}
	if _, err := s.UploadDataURL(context.Background(), "x", "nope", 0); err == nil {
		t.Error("UploadDataURL() should reject a non data URL")
	}
}

func TestUploadDataURLLimit(t *testing.T) {
	s := &FileStore{}
	big := dataURL("image/png", make([]byte, 2048))
	_, err := s.UploadDataURL(context.Background(), "logos", big, 1024)
	if err == nil || !strings.Contains(err.Error(), "limit") {
		t.Errorf("UploadDataURL() error = %v", err)
	}
}

func TestReplaceDataURLKeepsOldFilesWhenUploadFails(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	gcs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"kind":"storage#objects","items":[]}`))
	}))
	defer gcs.Close()

	client, err := storage.NewClient(context.Background(),
		option.WithEndpoint(gcs.URL+"/storage/v1/"), option.WithoutAuthentication())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	s := NewFileStore(client.Bucket("tenor"), "tenor")

	_, err = s.ReplaceDataURL(context.Background(), "projects/p1/logo", dataURL("image/png", []byte("png")), 0)
	if err == nil {
		t.Fatal("ReplaceDataURL() should fail when the upload is rejected")
	}
	mu.Lock()
	defer mu.Unlock()
	for _, m := range methods {
		if m == http.MethodDelete || m == http.MethodGet {
			t.Errorf("old files touched after a failed upload: %v", methods)
			break
		}
	}
}
