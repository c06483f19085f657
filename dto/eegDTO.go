package dto

import "tenor/eeg"

// MuseData is what the OSC bridge posts to the relay. Channels carries
// per-electrode powers when the headband reports them.
type MuseData struct {
	Signals   map[string]float64   `json:"signals"`
	Channels  map[string]eeg.Bands `json:"channels,omitempty"`
	Timestamp int64                `json:"timestamp"`
}

type EmotionLogRequest struct {
	Samples []eeg.Bands `json:"samples" binding:"required,min=1"`
}
