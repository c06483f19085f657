package services

import (
	"testing"

	"tenor/eeg"
)

func TestEmotionLogOf(t *testing.T) {
	samples := []eeg.Bands{
		{Alpha: 2, Beta: 1, Gamma: 0.2},
		{Alpha: 4, Beta: 1, Gamma: 0.2},
	}
	now := day(9)
	log := emotionLogOf(samples, now)

	if log.Emotion != string(eeg.Relaxed) {
		t.Errorf("emotion = %q", log.Emotion)
	}
	if log.Bands["alpha"] != 3 || log.Bands["beta"] != 1 {
		t.Errorf("bands = %v", log.Bands)
	}
	if log.Samples != 2 || !log.CreatedAt.Equal(now) {
		t.Errorf("log = %+v", log)
	}
}
