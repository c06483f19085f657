package services

import (
	"testing"

	"tenor/model"
)

func task(id, status string) model.Task {
	return model.Task{BasicInfo: model.BasicInfo{ID: id}, StatusID: status}
}

func TestAutomaticStatus(t *testing.T) {
	review := append(statuses(), model.StatusTag{Tag: model.Tag{ID: "review", Name: "Awaits Review"}, OrderIndex: 4, MarksTaskAsDone: true})

	tests := []struct {
		name     string
		tasks    []model.Task
		statuses []model.StatusTag
		isIssue  bool
		want     string
	}{
		{"no tasks", nil, statuses(), false, "todo"},
		{"all done", []model.Task{task("a", "done"), task("b", "done")}, statuses(), false, "done"},
		{"issue all done stays done", []model.Task{task("a", "done"), task("b", "done")}, review, true, "done"},
		{"issue all in review", []model.Task{task("a", "review")}, review, true, "review"},
		{"done across columns", []model.Task{task("a", "done"), task("b", "review")}, review, true, "done"},
		{"same column", []model.Task{task("a", "qa"), task("b", "qa")}, statuses(), false, "qa"},
		{"same column ignores unset", []model.Task{task("a", ""), task("b", "qa")}, statuses(), false, "qa"},
		{"one started", []model.Task{task("a", "todo"), task("b", "qa")}, statuses(), false, "doing"},
		{"not started", []model.Task{task("a", "todo"), task("b", "")}, statuses(), false, "todo"},
		{"partly done", []model.Task{task("a", "todo"), task("b", "done")}, statuses(), false, "doing"},
		{"no statuses", []model.Task{task("a", "x")}, nil, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AutomaticStatus(tt.tasks, tt.statuses, tt.isIssue); got != tt.want {
				t.Errorf("AutomaticStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAutomaticStatusReviewColumnOnlyForIssues(t *testing.T) {
	cols := []model.StatusTag{
		{Tag: model.Tag{ID: "todo", Name: "Todo"}, OrderIndex: 0},
		{Tag: model.Tag{ID: "done", Name: "Done"}, OrderIndex: 1, MarksTaskAsDone: true},
		{Tag: model.Tag{ID: "review", Name: "Awaits Review"}, OrderIndex: 2},
	}
	mixed := []model.Task{task("a", "todo"), task("b", "done")}
	if got := AutomaticStatus(mixed, cols, false); got != "todo" {
		t.Errorf("story middle column = %q, want todo", got)
	}
	if got := AutomaticStatus(mixed, cols, true); got != "done" {
		t.Errorf("issue middle column = %q, want done", got)
	}
}

func TestAutomaticStatusFallsBackToOrder(t *testing.T) {
	custom := []model.StatusTag{
		{Tag: model.Tag{ID: "c"}, OrderIndex: 2, MarksTaskAsDone: true},
		{Tag: model.Tag{ID: "a"}, OrderIndex: 0},
		{Tag: model.Tag{ID: "b"}, OrderIndex: 1},
	}
	if got := AutomaticStatus(nil, custom, false); got != "a" {
		t.Errorf("no tasks = %q, want first column", got)
	}
	if got := AutomaticStatus([]model.Task{task("x", "c")}, custom, false); got != "c" {
		t.Errorf("all done = %q, want first done column", got)
	}
	if got := AutomaticStatus([]model.Task{task("x", "a"), task("y", "c")}, custom, false); got != "b" {
		t.Errorf("in progress = %q, want middle column", got)
	}
}

func TestBuildKanban(t *testing.T) {
	cards := []KanbanCard{
		{ID: "t2", ScrumID: 2, ColumnID: "todo"},
		{ID: "t1", ScrumID: 1, ColumnID: "todo"},
		{ID: "t3", ScrumID: 3, ColumnID: "gone"},
	}
	got := buildKanban(statuses(), cards)
	if len(got.Columns) != 4 || got.Columns[0].ID != "todo" {
		t.Fatalf("columns = %+v", got.Columns)
	}
	if ids := got.Columns[0].ItemIDs; len(ids) != 2 || ids[0] != "t1" {
		t.Errorf("todo column = %v", ids)
	}
	if _, ok := got.Cards["t3"]; !ok {
		t.Error("cards in unknown columns are still returned")
	}
}

func TestLookupsRow(t *testing.T) {
	l := &lookups{
		priorities: map[string]model.Tag{"p0": {ID: "p0", Name: "P0"}},
		tags:       map[string]model.Tag{"ui": {ID: "ui", Name: "UI"}, "old": {ID: "old", Deleted: true}},
		statuses:   statuses(),
		sprints:    map[string]model.Sprint{"s1": {ID: "s1", Number: 4}},
		tasks: map[string][]model.Task{
			"u1": {
				{BasicInfo: model.BasicInfo{ID: "a"}, StatusID: "done", AssigneeID: "ana"},
				{BasicInfo: model.BasicInfo{ID: "b"}, StatusID: "doing", AssigneeID: "ana"},
			},
		},
	}
	row := l.row(model.ItemUserStory, model.BacklogItem{
		BasicInfo:  model.BasicInfo{ID: "u1", ScrumID: 3},
		PriorityID: "p0",
		TagIDs:     []string{"ui", "old", "missing"},
		SprintID:   "s1",
	})
	if row.ScrumLabel != "US03" || row.SprintNumber != 4 {
		t.Errorf("row = %+v", row)
	}
	if row.Priority == nil || row.Priority.Name != "P0" {
		t.Errorf("priority = %v", row.Priority)
	}
	if len(row.Tags) != 1 {
		t.Errorf("tags = %v, want only live tags", row.Tags)
	}
	if row.TaskCount != 2 || row.TasksDone != 1 || len(row.AssigneeIDs) != 1 {
		t.Errorf("task summary = %d/%d %v", row.TasksDone, row.TaskCount, row.AssigneeIDs)
	}
	if row.StatusID != "doing" {
		t.Errorf("automatic status = %q, want doing", row.StatusID)
	}
}
