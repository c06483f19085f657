package model

import (
	"testing"
	"time"
)

func TestFormatScrumID(t *testing.T) {
	tests := []struct {
		t    ItemType
		n    int
		want string
	}{
		{ItemUserStory, 3, "US03"},
		{ItemTask, 12, "TS12"},
		{ItemIssue, 120, "IS120"},
		{ItemEpic, 0, "No Epic"},
		{ItemEpic, 1, "EP01"},
		{ItemSprint, 4, "Sprint 4"},
		{ItemRequirement, 7, "RE07"},
	}
	for _, tt := range tests {
		if got := FormatScrumID(tt.t, tt.n); got != tt.want {
			t.Errorf("FormatScrumID(%s, %d) = %q, want %q", tt.t, tt.n, got, tt.want)
		}
	}
}

func TestSizeStoryPoints(t *testing.T) {
	if got := SizeM.StoryPoints([]int{1, 2, 4}); got != 4 {
		t.Errorf("M with custom table = %d, want 4", got)
	}
	if got := SizeXXL.StoryPoints([]int{1, 2}); got != 13 {
		t.Errorf("XXL with short table = %d, want 13", got)
	}
	if got := Size("").StoryPoints(DefaultStoryPointSizes); got != 0 {
		t.Errorf("unset size = %d, want 0", got)
	}
	if Size("XXXL").Valid() {
		t.Error("XXXL should be invalid")
	}
}

func TestSprintActive(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s := Sprint{StartDate: start, EndDate: start.AddDate(0, 0, 7)}
	if !s.Active(start) || !s.Active(s.EndDate) {
		t.Error("sprint bounds should be inclusive")
	}
	if s.Active(start.Add(-time.Second)) {
		t.Error("sprint should not be active before start")
	}
}
