package services

import (
	"testing"

	"tenor/apperr"
	"tenor/model"
)

func statuses() []model.StatusTag {
	return []model.StatusTag{
		{Tag: model.Tag{ID: "todo", Name: "Todo"}, OrderIndex: 0},
		{Tag: model.Tag{ID: "doing", Name: "Doing"}, OrderIndex: 1},
		{Tag: model.Tag{ID: "done", Name: "Done"}, OrderIndex: 2, MarksTaskAsDone: true},
		{Tag: model.Tag{ID: "qa", Name: "QA"}, OrderIndex: 3},
	}
}

func TestValidateStatusName(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		newName string
		wantErr bool
	}{
		{"new custom status", "", "Blocked", false},
		{"new reserved name", "", "awaits review", true},
		{"new duplicate", "", " qa ", true},
		{"rename custom", "qa", "Testing", false},
		{"keep protected name", "todo", "Todo", false},
		{"rename protected", "done", "Finished", true},
		{"rename onto protected", "qa", "Doing", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStatusName(statuses(), tt.id, tt.newName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateStatusName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if code, _ := apperr.Status(err); code != 400 {
					t.Errorf("status = %d, want 400", code)
				}
			}
		})
	}
}

func TestDefaultRequirementType(t *testing.T) {
	if _, ok := DefaultRequirementType(nil); ok {
		t.Error("no types should report false")
	}
	tags := []model.Tag{{ID: "2", Name: "Security"}, {ID: "1", Name: "Functional"}}
	if got, _ := DefaultRequirementType(tags); got.ID != "1" {
		t.Errorf("DefaultRequirementType() = %v, want Functional", got)
	}
	tags = []model.Tag{{ID: "2", Name: "Security"}, {ID: "3", Name: "Performance"}}
	if got, _ := DefaultRequirementType(tags); got.ID != "3" {
		t.Errorf("DefaultRequirementType() = %v, want first by name", got)
	}
}

func TestStatusByName(t *testing.T) {
	if s, ok := StatusByName(statuses(), "done"); !ok || s.ID != "done" {
		t.Errorf("StatusByName(done) = %v, %v", s, ok)
	}
	if _, ok := StatusByName(statuses(), "Awaits Review"); ok {
		t.Error("missing status should not be found")
	}
}
