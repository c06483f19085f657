// Package eeg holds the biosignal heuristics and the live relay for Muse
// headband readings.
package eeg

import (
	"slices"
	"sync"
)

type Quality string

const (
	QualityNA           Quality = "N/A"
	QualityCalibrating  Quality = "Calibrating..."
	QualityDisconnected Quality = "Disconnected/No Signal"
	QualityVeryNoisy    Quality = "Very Noisy (Poor Contact)"
	QualityLowFreqNoise Quality = "High Low-Freq Noise (Interference)"
	QualityGammaNoise   Quality = "High Gamma Noise (Muscle/Interference)"
	QualityGood         Quality = "Good"
)

// Electrodes are the Muse 2 channel names.
var Electrodes = []string{"TP9", "AF7", "AF8", "TP10"}

const (
	HistorySize = 5

	minBandPower    = 1e-10
	zeroSignalPower = 1e-9
	maxTotalPower   = 800
	deltaThetaRatio = 0.85
	maxGammaPower   = 150
)

// Bands are absolute band powers for one reading.
type Bands struct {
	Delta float64 `json:"delta"`
	Theta float64 `json:"theta"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

func (b Bands) Total() float64 {
	return b.Delta + b.Theta + b.Alpha + b.Beta + b.Gamma
}

func (b Bands) add(o Bands) Bands {
	return Bands{b.Delta + o.Delta, b.Theta + o.Theta, b.Alpha + o.Alpha, b.Beta + o.Beta, b.Gamma + o.Gamma}
}

func (b Bands) scale(f float64) Bands {
	return Bands{b.Delta * f, b.Theta * f, b.Alpha * f, b.Beta * f, b.Gamma * f}
}

// QualityInferer keeps a rolling history per electrode and classifies
// contact quality from its averages.
type QualityInferer struct {
	mu      sync.Mutex
	history map[string][]Bands
}

func NewQualityInferer() *QualityInferer {
	return &QualityInferer{history: map[string][]Bands{}}
}

// Reset clears every electrode's history, for a new session.
func (q *QualityInferer) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.history = map[string][]Bands{}
}

// Infer records a reading for electrode and returns its quality. Names
// outside Electrodes are N/A and keep no history.
func (q *QualityInferer) Infer(electrode string, b Bands) Quality {
	if !slices.Contains(Electrodes, electrode) {
		return QualityNA
	}
	q.mu.Lock()
	h := append(q.history[electrode], b)
	if len(h) > HistorySize {
		h = h[len(h)-HistorySize:]
	}
	q.history[electrode] = h
	samples := append([]Bands(nil), h...)
	q.mu.Unlock()

	if len(samples) < HistorySize {
		return QualityCalibrating
	}
	return classifyQuality(samples)
}

// InferAll classifies the known electrodes of a reading. Electrodes missing
// from it are N/A; other channel names are ignored.
func (q *QualityInferer) InferAll(channels map[string]Bands) map[string]Quality {
	out := make(map[string]Quality, len(Electrodes))
	for _, name := range Electrodes {
		b, ok := channels[name]
		if !ok {
			out[name] = QualityNA
			continue
		}
		out[name] = q.Infer(name, b)
	}
	return out
}

func classifyQuality(samples []Bands) Quality {
	var sum Bands
	total := 0.0
	for _, s := range samples {
		sum = sum.add(s)
		total += s.Total()
	}
	n := float64(len(samples))
	avg := sum.scale(1 / n)
	avgTotal := total / n

	allLow := avg.Delta < minBandPower && avg.Theta < minBandPower &&
		avg.Alpha < minBandPower && avg.Beta < minBandPower && avg.Gamma < minBandPower
	switch {
	case avgTotal < zeroSignalPower || allLow:
		return QualityDisconnected
	case avgTotal > maxTotalPower:
		return QualityVeryNoisy
	case avgTotal > 0 && (avg.Delta+avg.Theta)/avgTotal > deltaThetaRatio:
		return QualityLowFreqNoise
	case avg.Gamma > maxGammaPower:
		return QualityGammaNoise
	}
	return QualityGood
}
