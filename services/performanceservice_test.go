package services

import (
	"reflect"
	"testing"
	"time"

	"tenor/model"
)

func timeAt(t time.Time) *time.Time { return &t }

func TestProductivitySince(t *testing.T) {
	now := day(31)
	if got := productivitySince(model.WindowWeek, now); !got.Equal(day(24)) {
		t.Errorf("week = %v", got)
	}
	if got := productivitySince(model.WindowMonth, now); !got.Equal(time.Date(2025, time.February, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month = %v", got)
	}
}

func TestReplaceCached(t *testing.T) {
	cached := []model.Productivity{
		{Time: model.WindowWeek, IssuesTotal: 1},
		{Time: model.WindowMonth, IssuesTotal: 2},
	}
	got := replaceCached(cached, model.Productivity{Time: model.WindowWeek, IssuesTotal: 5})
	if len(got) != 2 || got[0].Time != model.WindowMonth || got[1].IssuesTotal != 5 {
		t.Errorf("got %+v", got)
	}
	if got := replaceCached(nil, model.Productivity{Time: model.WindowSprint}); len(got) != 1 {
		t.Errorf("empty cache: %+v", got)
	}
}

func TestGroupActivitiesByDay(t *testing.T) {
	activities := []model.Activity{
		{Date: day(1).Add(10 * time.Hour)},
		{Date: day(3)},
		{Date: day(1).Add(23 * time.Hour)},
	}
	want := []model.DayActivity{{Date: "2025-03-03", Count: 1}, {Date: "2025-03-01", Count: 2}}
	if got := GroupActivitiesByDay(activities); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCountContributions(t *testing.T) {
	activities := []model.Activity{
		{Type: model.ItemTask}, {Type: model.ItemTask},
		{Type: model.ItemIssue},
		{Type: model.ItemUserStory},
		{Type: model.ItemEpic},
	}
	want := model.ContributionOverview{Tasks: 2, Issues: 1, UserStories: 1}
	if got := CountContributions(activities); got != want {
		t.Errorf("got %+v", got)
	}
}

func TestAverageTimeByWeek(t *testing.T) {
	done := map[string]bool{"done": true}
	tasks := []model.Task{
		{StatusID: "done", AssignedDate: timeAt(day(3)), StatusChangeDate: timeAt(day(4))},
		{StatusID: "done", AssignedDate: timeAt(day(3)), StatusChangeDate: timeAt(day(5))},
		{StatusID: "doing", AssignedDate: timeAt(day(3)), StatusChangeDate: timeAt(day(4))},
		{StatusID: "done", StatusChangeDate: timeAt(day(4))},
		{StatusID: "done", AssignedDate: timeAt(day(1)), StatusChangeDate: timeAt(day(1).AddDate(0, -1, 0))},
	}

	got := AverageTimeByWeek(tasks, done, day(12), 2)
	want := map[string]float64{"2025-03-09": 0, "2025-03-02": 129600}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBurndownHistoryOf(t *testing.T) {
	done := map[string]bool{"done": true}
	tasks := []model.Task{
		{StatusID: "done", FinishedDate: timeAt(day(1).Add(6 * time.Hour))},
		{StatusID: "done", FinishedDate: timeAt(day(3).Add(time.Hour))},
		{StatusID: "doing", FinishedDate: timeAt(day(1))},
		{StatusID: "todo"},
	}

	got := BurndownHistoryOf(tasks, done, day(1), day(5), day(3).Add(12*time.Hour))
	want := []model.BurndownHistory{{Day: 0, CompletedCount: 1}, {Day: 1, CompletedCount: 1}, {Day: 2, CompletedCount: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestBurndownData(t *testing.T) {
	history := []model.BurndownHistory{{Day: 0, CompletedCount: 1}, {Day: 1, CompletedCount: 2}}
	got := BurndownData(day(1), day(4), 4, 2, history, day(2))

	want := []model.BurndownPoint{
		{SprintDay: 0, StoryPoints: 4, SeriesType: 0},
		{SprintDay: 0, StoryPoints: 3, SeriesType: 1},
		{SprintDay: 1, StoryPoints: 3, SeriesType: 0},
		{SprintDay: 1, StoryPoints: 2, SeriesType: 1},
		{SprintDay: 2, StoryPoints: 2, SeriesType: 0},
		{SprintDay: 3, StoryPoints: 1, SeriesType: 0},
		{SprintDay: 4, StoryPoints: 0, SeriesType: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestBurndownDataEdges(t *testing.T) {
	if got := BurndownData(day(1), day(4), 0, 0, nil, day(2)); len(got) != 1 || got[0].StoryPoints != 0 {
		t.Errorf("no tasks: %+v", got)
	}

	got := BurndownData(day(1), day(4), 4, 1, nil, day(10))
	last := got[len(got)-1]
	if last.SeriesType != 0 {
		t.Fatalf("ideal line should end the series: %+v", got)
	}
	var actual []model.BurndownPoint
	for _, p := range got {
		if p.SeriesType == 1 {
			actual = append(actual, p)
		}
	}
	if len(actual) != 1 || actual[0].SprintDay != 3 || actual[0].StoryPoints != 3 {
		t.Errorf("actual = %+v", actual)
	}
}
