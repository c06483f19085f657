package file

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"tenor/apperr"
	"tenor/dto"
	"tenor/middleware"
	"tenor/model"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

// MaxUploadBytes bounds a multipart upload.
const MaxUploadBytes = 20 << 20

func FileController(router *gin.Engine, fb *firestore.Client, store *services.FileStore, client *http.Client) {
	routes := router.Group("", middleware.SessionMiddleware()...)
	{
		routes.POST("/api/file_upload", func(c *gin.Context) {
			Upload(c, fb, store)
		})
		routes.GET("/files", func(c *gin.Context) {
			ListFiles(c, fb)
		})
		routes.GET("/api/image_proxy", func(c *gin.Context) {
			ImageProxy(c, client)
		})
		routes.POST("/api/file_text", FileText)
	}
}

// Upload stores the "file" form field under uploads/ and remembers it on
// the caller's user document.
func Upload(c *gin.Context, fb *firestore.Client, store *services.FileStore) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	name := path.Base(header.Filename)
	url, err := store.Upload(c.Request.Context(), "uploads/"+name, header.Header.Get("Content-Type"), f)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "file upload failed", "name", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload Failed"})
		return
	}
	if err := services.AddUserFile(c.Request.Context(), fb, middleware.UserID(c), model.UserFile{URL: url, Name: name}); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func ListFiles(c *gin.Context, fb *firestore.Client) {
	files, err := services.ListUserFiles(c.Request.Context(), fb, middleware.UserID(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// ImageProxy relays a remote image so the browser can draw it on a canvas
// without CORS trouble.
func ImageProxy(c *gin.Context, client *http.Client) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image URL"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Header.Set("ngrok-skip-browser-warning", "true")

	resp, err := client.Do(req)
	if err == nil && resp.StatusCode >= 400 {
		resp.Body.Close()
		err = fmt.Errorf("failed to fetch image: %s", resp.Status)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching image", "error": err.Error()})
		return
	}
	defer resp.Body.Close()

	c.DataFromReader(http.StatusOK, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, map[string]string{
		"Cache-Control": "s-maxage=86400, stale-while-revalidate",
	})
}

func FileText(c *gin.Context) {
	var req dto.FileTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	text, err := services.ExtractText(req.Base64)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
