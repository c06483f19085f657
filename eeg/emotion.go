package eeg

type Emotion string

const (
	Relaxed  Emotion = "relaxed"
	Happy    Emotion = "happy"
	Stressed Emotion = "stressed"
	Angry    Emotion = "angry"
	Neutral  Emotion = "neutral"
)

// Average returns the mean band powers, or zeros for no samples.
func Average(samples []Bands) Bands {
	if len(samples) == 0 {
		return Bands{}
	}
	var sum Bands
	for _, s := range samples {
		sum = sum.add(s)
	}
	return sum.scale(1 / float64(len(samples)))
}

// ClassifyEmotion applies fixed band-ratio rules to the sample averages.
func ClassifyEmotion(samples []Bands) (Emotion, Bands) {
	avg := Average(samples)
	switch {
	case avg.Alpha > avg.Beta*1.2 && avg.Gamma < 0.5:
		return Relaxed, avg
	case avg.Alpha > avg.Beta && avg.Gamma >= 0.5:
		return Happy, avg
	case avg.Beta > avg.Alpha*1.5 && avg.Gamma > 0.6:
		return Stressed, avg
	case avg.Beta > avg.Alpha && avg.Gamma > 0.5 && (avg.Delta > 1.0 || avg.Theta > 1.0):
		return Angry, avg
	}
	return Neutral, avg
}

// Mode returns the most frequent emotion, the earliest one on ties.
func Mode(emotions []Emotion) (Emotion, bool) {
	if len(emotions) == 0 {
		return "", false
	}
	counts := map[Emotion]int{}
	best, bestCount := emotions[0], 0
	for _, e := range emotions {
		counts[e]++
	}
	for _, e := range emotions {
		if counts[e] > bestCount {
			best, bestCount = e, counts[e]
		}
	}
	return best, true
}
