package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"slices"
	"strings"

	"tenor/apperr"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// FileStore writes user content to the Firebase Storage bucket.
type FileStore struct {
	bucket *storage.BucketHandle
	name   string
}

var ErrStorageDisabled = errors.New("file storage is not configured")

func NewFileStore(bucket *storage.BucketHandle, name string) *FileStore {
	return &FileStore{bucket: bucket, name: name}
}

// DownloadURL builds the public Firebase URL for an object.
func DownloadURL(bucket, path, token string) string {
	escaped := strings.ReplaceAll(url.PathEscape(path), "/", "%2F")
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s", bucket, escaped, token)
}

// Upload stores r at path and returns its download URL.
func (s *FileStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	if s == nil || s.bucket == nil {
		return "", ErrStorageDisabled
	}
	token := uuid.New().String()
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return DownloadURL(s.name, path, token), nil
}

// UploadDataURL decodes a base64 data URL and stores it under dir with a
// generated name. limit is the maximum decoded size in bytes, 0 for none.
func (s *FileStore) UploadDataURL(ctx context.Context, dir, dataURL string, limit int) (string, error) {
	url, _, err := s.uploadDataURL(ctx, dir, dataURL, limit)
	return url, err
}

func (s *FileStore) uploadDataURL(ctx context.Context, dir, dataURL string, limit int) (string, string, error) {
	mimeType, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", "", err
	}
	if limit > 0 && len(data) > limit {
		return "", "", apperr.BadRequest("File exceeds the %d MB limit", limit/(1024*1024))
	}
	ext := ""
	if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
		ext = exts[0]
	}
	path := dir + "/" + uuid.New().String() + ext
	url, err := s.Upload(ctx, path, mimeType, bytes.NewReader(data))
	return url, path, err
}

// ReplaceDataURL stores a new file under dir, then removes the files that
// were there before. A failed upload leaves the old files in place.
func (s *FileStore) ReplaceDataURL(ctx context.Context, dir, dataURL string, limit int) (string, error) {
	url, path, err := s.uploadDataURL(ctx, dir, dataURL, limit)
	if err != nil {
		return "", err
	}
	if err := s.DeletePrefix(ctx, dir+"/", path); err != nil {
		slog.WarnContext(ctx, "old files not removed", "dir", dir, "error", err)
	}
	return url, nil
}

// DeletePrefix removes every object under prefix except the keep paths.
func (s *FileStore) DeletePrefix(ctx context.Context, prefix string, keep ...string) error {
	if s == nil || s.bucket == nil {
		return ErrStorageDisabled
	}
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if slices.Contains(keep, attrs.Name) {
			continue
		}
		if err := s.bucket.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return err
		}
	}
}

// IsDataURL reports whether s carries inline file content rather than a
// link to an existing file.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}
