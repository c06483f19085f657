package eeg

import (
	"strconv"
	"testing"
)

func feed(q *QualityInferer, name string, b Bands, n int) Quality {
	var last Quality
	for range n {
		last = q.Infer(name, b)
	}
	return last
}

func TestInferCalibratesFirst(t *testing.T) {
	q := NewQualityInferer()
	good := Bands{Delta: 10, Theta: 10, Alpha: 20, Beta: 20, Gamma: 5}
	for i := 1; i < HistorySize; i++ {
		if got := q.Infer("TP9", good); got != QualityCalibrating {
			t.Fatalf("sample %d: got %q, want calibrating", i, got)
		}
	}
	if got := q.Infer("TP9", good); got != QualityGood {
		t.Fatalf("got %q, want good", got)
	}
}

func TestInferQuality(t *testing.T) {
	cases := []struct {
		name string
		b    Bands
		want Quality
	}{
		{"silent", Bands{}, QualityDisconnected},
		{"broadband", Bands{Delta: 200, Theta: 200, Alpha: 200, Beta: 200, Gamma: 100}, QualityVeryNoisy},
		{"low frequency", Bands{Delta: 50, Theta: 40, Alpha: 5, Beta: 5, Gamma: 1}, QualityLowFreqNoise},
		{"gamma", Bands{Delta: 100, Theta: 100, Alpha: 100, Beta: 100, Gamma: 200}, QualityGammaNoise},
		{"good", Bands{Delta: 10, Theta: 10, Alpha: 20, Beta: 20, Gamma: 5}, QualityGood},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQualityInferer()
			if got := feed(q, "AF7", tc.b, HistorySize); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInferUsesRollingWindow(t *testing.T) {
	q := NewQualityInferer()
	feed(q, "AF8", Bands{}, HistorySize)
	good := Bands{Delta: 10, Theta: 10, Alpha: 20, Beta: 20, Gamma: 5}
	if got := feed(q, "AF8", good, HistorySize); got != QualityGood {
		t.Fatalf("old samples should have rolled out, got %q", got)
	}
}

func TestResetClearsHistory(t *testing.T) {
	q := NewQualityInferer()
	good := Bands{Delta: 10, Theta: 10, Alpha: 20, Beta: 20, Gamma: 5}
	feed(q, "TP10", good, HistorySize)
	q.Reset()
	if got := q.Infer("TP10", good); got != QualityCalibrating {
		t.Fatalf("got %q after reset", got)
	}
}

func TestInferAllMarksMissingElectrodes(t *testing.T) {
	q := NewQualityInferer()
	got := q.InferAll(map[string]Bands{"TP9": {Alpha: 1}})
	if got["TP9"] != QualityCalibrating {
		t.Errorf("TP9 = %q", got["TP9"])
	}
	for _, name := range []string{"AF7", "AF8", "TP10"} {
		if got[name] != QualityNA {
			t.Errorf("%s = %q, want N/A", name, got[name])
		}
	}
}

func TestInferAllIgnoresUnknownChannels(t *testing.T) {
	q := NewQualityInferer()
	for i := range 1000 {
		got := q.InferAll(map[string]Bands{"X" + strconv.Itoa(i): {Alpha: 1}, "AF7": {Alpha: 1}})
		if len(got) != len(Electrodes) {
			t.Fatalf("InferAll() returned %d channels, want %d", len(got), len(Electrodes))
		}
	}
	if got := q.Infer("Fpz", Bands{Alpha: 1}); got != QualityNA {
		t.Errorf("Infer(unknown) = %q, want N/A", got)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.history) != 1 {
		t.Errorf("history tracks %d channels, want 1", len(q.history))
	}
}
