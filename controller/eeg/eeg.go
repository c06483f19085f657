package eeg

import (
	"encoding/json"
	"io"
	"net/http"

	"tenor/apperr"
	"tenor/dto"
	"tenor/eeg"
	"tenor/middleware"
	"tenor/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

// MuseController serves the live headband relay and the stored emotion
// logs. The relay is open so the OSC bridge can post without a session.
func MuseController(router *gin.Engine, fb *firestore.Client, hub *eeg.Hub, quality *eeg.QualityInferer) {
	relay := router.Group("/api/muse_data")
	{
		relay.GET("", func(c *gin.Context) {
			StreamMuseData(c, hub)
		})
		relay.POST("", func(c *gin.Context) {
			PostMuseData(c, hub, quality)
		})
	}

	logs := router.Group("/logs", middleware.SessionMiddleware()...)
	{
		logs.GET("", func(c *gin.Context) {
			entries, err := services.ListEmotionLogs(c.Request.Context(), fb, middleware.UserID(c))
			if err != nil {
				apperr.Respond(c, err)
				return
			}
			c.JSON(http.StatusOK, entries)
		})
		logs.POST("", func(c *gin.Context) {
			CreateEmotionLog(c, fb)
		})
	}
}

type museEvent struct {
	dto.MuseData
	Quality map[string]eeg.Quality `json:"quality,omitempty"`
}

func StreamMuseData(c *gin.Context, hub *eeg.Hub) {
	messages, release := hub.Subscribe()
	defer release()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			c.SSEvent("message", json.RawMessage(msg))
			return true
		}
	})
}

func PostMuseData(c *gin.Context, hub *eeg.Hub, quality *eeg.QualityInferer) {
	var req dto.MuseData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := museEvent{MuseData: req}
	if len(req.Channels) > 0 {
		event.Quality = quality.InferAll(req.Channels)
	}
	msg, err := json.Marshal(event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	delivered := hub.Publish(msg)
	c.JSON(http.StatusOK, gin.H{"message": "Data received", "subscribers": delivered})
}

func CreateEmotionLog(c *gin.Context, fb *firestore.Client) {
	var req dto.EmotionLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := services.CreateEmotionLog(c.Request.Context(), fb, middleware.UserID(c), req.Samples)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
