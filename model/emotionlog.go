package model

import "time"

// EmotionLog is stored in users/{uid}/emotionLogs.
type EmotionLog struct {
	ID        string             `firestore:"-" json:"id"`
	Emotion   string             `firestore:"emotion" json:"emotion"`
	Bands     map[string]float64 `firestore:"bands" json:"bands"`
	Samples   int                `firestore:"samples" json:"samples"`
	CreatedAt time.Time          `firestore:"createdAt" json:"createdAt"`
}

func (l *EmotionLog) SetID(id string) { l.ID = id }
