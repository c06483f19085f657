package eeg

import "testing"

func TestClassifyEmotion(t *testing.T) {
	cases := []struct {
		name string
		b    Bands
		want Emotion
	}{
		{"relaxed", Bands{Alpha: 3, Beta: 1, Gamma: 0.2}, Relaxed},
		{"happy", Bands{Alpha: 1.1, Beta: 1, Gamma: 0.7}, Happy},
		{"stressed", Bands{Alpha: 1, Beta: 2, Gamma: 0.8}, Stressed},
		{"angry", Bands{Alpha: 1, Beta: 1.2, Gamma: 0.55, Delta: 2}, Angry},
		{"neutral", Bands{Alpha: 1, Beta: 1, Gamma: 0.1}, Neutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := ClassifyEmotion([]Bands{tc.b, tc.b})
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAverage(t *testing.T) {
	avg := Average([]Bands{{Alpha: 1, Gamma: 2}, {Alpha: 3, Gamma: 4}})
	if avg.Alpha != 2 || avg.Gamma != 3 {
		t.Fatalf("got %+v", avg)
	}
	if (Average(nil) != Bands{}) {
		t.Fatal("empty average should be zero")
	}
}

func TestMode(t *testing.T) {
	if _, ok := Mode(nil); ok {
		t.Fatal("empty slice has no mode")
	}
	got, _ := Mode([]Emotion{Happy, Neutral, Neutral, Happy, Angry})
	if got != Happy {
		t.Fatalf("tie should go to the first seen, got %q", got)
	}
}
