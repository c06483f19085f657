package services

import (
	"testing"
	"time"

	"tenor/model"
)

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func sampleSprints() []model.Sprint {
	return []model.Sprint{
		{ID: "s1", Number: 1, StartDate: day(1), EndDate: day(7)},
		{ID: "s2", Number: 2, StartDate: day(8), EndDate: day(14)},
	}
}

func TestPickCurrentSprint(t *testing.T) {
	if s := pickCurrentSprint(sampleSprints(), day(7)); s == nil || s.ID != "s1" {
		t.Errorf("end day should still be in sprint 1, got %v", s)
	}
	if s := pickCurrentSprint(sampleSprints(), day(20)); s != nil {
		t.Errorf("no sprint runs on day 20, got %v", s)
	}
}

func TestPickPreviousSprint(t *testing.T) {
	if s := pickPreviousSprint(sampleSprints(), day(16)); s == nil || s.ID != "s2" {
		t.Errorf("sprint 2 ended two days before, got %v", s)
	}
	if s := pickPreviousSprint(sampleSprints(), day(18)); s != nil {
		t.Errorf("sprint 2 ended four days before, got %v", s)
	}
}

func TestOverlaps(t *testing.T) {
	if !overlaps(sampleSprints(), -1, day(6), day(9)) {
		t.Error("range crossing two sprints should overlap")
	}
	if overlaps(sampleSprints(), -1, day(15), day(21)) {
		t.Error("range after every sprint should not overlap")
	}
	if overlaps(sampleSprints(), 1, day(2), day(6)) {
		t.Error("a sprint should not overlap with itself")
	}
}

func TestSprintNumbers(t *testing.T) {
	sprints := []model.Sprint{
		{ID: "late", Number: 1, StartDate: day(10)},
		{ID: "early", Number: 2, StartDate: day(1)},
		{ID: "ok", Number: 3, StartDate: day(20)},
	}
	got := sprintNumbers(sprints)
	if len(got) != 2 || got["early"] != 1 || got["late"] != 2 {
		t.Errorf("sprintNumbers() = %v", got)
	}
}

func TestGroupPreviews(t *testing.T) {
	entries := []backlogEntry{
		{Type: model.ItemIssue, BacklogItem: model.BacklogItem{BasicInfo: model.BasicInfo{ID: "i1", ScrumID: 1}, SprintID: "s1"}},
		{Type: model.ItemUserStory, BacklogItem: model.BacklogItem{BasicInfo: model.BasicInfo{ID: "u2", ScrumID: 2}}},
		{Type: model.ItemUserStory, BacklogItem: model.BacklogItem{BasicInfo: model.BasicInfo{ID: "u1", ScrumID: 1}, SprintID: "s1"}},
	}
	got := groupPreviews(sampleSprints(), entries)

	if len(got.Sprints) != 2 {
		t.Fatalf("sprints = %d, want 2", len(got.Sprints))
	}
	if ids := got.Sprints[0].BacklogItemIDs; len(ids) != 2 {
		t.Errorf("sprint 1 items = %v", ids)
	}
	if ids := got.Sprints[1].BacklogItemIDs; ids == nil || len(ids) != 0 {
		t.Errorf("sprint 2 items = %v, want empty", ids)
	}
	if len(got.UnassignedItemIDs) != 1 || got.UnassignedItemIDs[0] != "u2" {
		t.Errorf("unassigned = %v", got.UnassignedItemIDs)
	}
	if p := got.BacklogItems["i1"]; p.ScrumLabel != "IS01" {
		t.Errorf("preview label = %q", p.ScrumLabel)
	}
}
