package services

import (
	"context"
	"time"

	"tenor/apperr"
	"tenor/eeg"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

const EmotionLogLimit = 50

func ListEmotionLogs(ctx context.Context, fb *firestore.Client, userID string) ([]model.EmotionLog, error) {
	return listDocs[model.EmotionLog](ctx, EmotionLogsRef(fb, userID).OrderBy("createdAt", firestore.Desc).Limit(EmotionLogLimit))
}

func emotionLogOf(samples []eeg.Bands, now time.Time) model.EmotionLog {
	emotion, avg := eeg.ClassifyEmotion(samples)
	return model.EmotionLog{
		Emotion: string(emotion),
		Bands: map[string]float64{
			"delta": avg.Delta,
			"theta": avg.Theta,
			"alpha": avg.Alpha,
			"beta":  avg.Beta,
			"gamma": avg.Gamma,
		},
		Samples:   len(samples),
		CreatedAt: now,
	}
}

// CreateEmotionLog classifies the posted readings and stores the result.
func CreateEmotionLog(ctx context.Context, fb *firestore.Client, userID string, samples []eeg.Bands) (model.EmotionLog, error) {
	if len(samples) == 0 {
		return model.EmotionLog{}, apperr.BadRequest("No EEG samples provided")
	}
	log := emotionLogOf(samples, time.Now())
	log.ID = uuid.New().String()
	if _, err := EmotionLogsRef(fb, userID).Doc(log.ID).Set(ctx, log); err != nil {
		return log, err
	}
	return log, nil
}
