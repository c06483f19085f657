package services

import (
	"context"
	"net/http"
	"slices"
	"testing"
	"time"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// seededProject creates a project the same way the API does and returns its id.
func seededProject(t *testing.T, fb *firestore.Client, ownerID string, users ...dto.MemberInput) string {
	t.Helper()
	svc := &ProjectServices{FB: fb}
	projectID, err := svc.CreateProject(context.Background(), ownerID, dto.CreateProjectRequest{Name: "Tenor", Users: users})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	return projectID
}

func newStory(t *testing.T, fb *firestore.Client, projectID, name string, deps ...string) model.UserStory {
	t.Helper()
	us, err := CreateUserStory(context.Background(), fb, projectID, "owner", dto.UserStoryRequest{
		BacklogItemRequest: dto.BacklogItemRequest{Name: name},
		DependencyIDs:      deps,
	})
	if err != nil {
		t.Fatalf("CreateUserStory(%s) error = %v", name, err)
	}
	return us
}

func newTask(t *testing.T, fb *firestore.Client, projectID, storyID, name string, deps ...string) model.Task {
	t.Helper()
	task, err := CreateTask(context.Background(), fb, projectID, "owner", model.ItemUserStory, storyID, dto.TaskRequest{
		Name:          name,
		DependencyIDs: deps,
	})
	if err != nil {
		t.Fatalf("CreateTask(%s) error = %v", name, err)
	}
	return task
}

// rawTask reads a task even after it was soft-deleted.
func rawTask(t *testing.T, fb *firestore.Client, projectID, id string) model.Task {
	t.Helper()
	task, err := getDoc[model.Task](context.Background(), tasksRef(fb, projectID).Doc(id), "Task not found")
	if err != nil {
		t.Fatalf("read task %s: %v", id, err)
	}
	return task
}

func TestCreateProjectSeedsDefaults(t *testing.T) {
	fb := emulator(t)
	ctx := context.Background()
	owner := "u-" + uuid.New().String()
	dev := "u-" + uuid.New().String()
	projectID := seededProject(t, fb, owner, dto.MemberInput{UserID: dev, RoleID: "developer"}, dto.MemberInput{UserID: owner, RoleID: "viewer"})

	settings, err := GetSettings(ctx, fb, projectID)
	if err != nil {
		t.Fatal(err)
	}
	if settings.SprintDuration != model.DefaultSprintDuration {
		t.Errorf("SprintDuration = %v, want %v", settings.SprintDuration, model.DefaultSprintDuration)
	}

	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != len(model.DefaultStatusTags()) {
		t.Errorf("len(statuses) = %d, want %d", len(statuses), len(model.DefaultStatusTags()))
	}
	if _, ok := StatusByName(statuses, model.TodoTagName); !ok {
		t.Errorf("no %q status seeded", model.TodoTagName)
	}
	priorities, err := ListTags(ctx, fb, projectID, PriorityTypes)
	if err != nil {
		t.Fatal(err)
	}
	if len(priorities) != len(model.DefaultPriorityTags()) {
		t.Errorf("len(priorities) = %d, want %d", len(priorities), len(model.DefaultPriorityTags()))
	}

	roles, err := ListRoles(ctx, fb, projectID)
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) < len(model.DefaultRoles()) {
		t.Errorf("len(roles) = %d, want at least %d", len(roles), len(model.DefaultRoles()))
	}

	// The creator stays owner even when listed again with another role.
	m, err := GetMember(ctx, fb, projectID, owner)
	if err != nil {
		t.Fatal(err)
	}
	if m.RoleID != model.OwnerRoleID || !m.Active {
		t.Errorf("owner member = %+v", m)
	}
	m, err = GetMember(ctx, fb, projectID, dev)
	if err != nil {
		t.Fatal(err)
	}
	if m.RoleID == model.EmptyRoleID || m.RoleID == "developer" {
		t.Errorf("developer role id = %q, want the seeded id", m.RoleID)
	}

	user, err := getDoc[model.User](ctx, UsersRef(fb).Doc(dev), "User not found")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(user.ProjectIDs, projectID) {
		t.Errorf("user projectIds = %v, want %s", user.ProjectIDs, projectID)
	}
}

func TestScrumIDsAreSequential(t *testing.T) {
	fb := emulator(t)
	projectID := seededProject(t, fb, "owner")

	first := newStory(t, fb, projectID, "Login")
	second := newStory(t, fb, projectID, "Logout")
	if first.ScrumID != 1 || second.ScrumID != 2 {
		t.Errorf("scrum ids = %d, %d, want 1, 2", first.ScrumID, second.ScrumID)
	}

	// Tasks keep their own counter.
	task := newTask(t, fb, projectID, first.ID, "Form")
	if task.ScrumID != 1 {
		t.Errorf("task scrum id = %d, want 1", task.ScrumID)
	}

	project, err := GetProject(context.Background(), fb, projectID)
	if err != nil {
		t.Fatal(err)
	}
	if got := project.ScrumCounters[string(model.ItemUserStory)]; got != 2 {
		t.Errorf("user story counter = %d, want 2", got)
	}
}

func TestAssignTwoItemsToOneSprint(t *testing.T) {
	fb := emulator(t)
	ctx := context.Background()
	projectID := seededProject(t, fb, "owner")

	start := time.Now().Truncate(time.Second)
	sprint, err := CreateOrModifySprint(ctx, fb, projectID, "owner", dto.SprintRequest{
		Number:    -1,
		StartDate: start,
		EndDate:   start.Add(14 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateOrModifySprint() error = %v", err)
	}
	a := newStory(t, fb, projectID, "A")
	b := newStory(t, fb, projectID, "B")

	err = AssignItemsToSprint(ctx, fb, projectID, "owner", dto.AssignItemsRequest{
		SprintID: sprint.ID,
		Items:    []dto.ItemRef{{ID: a.ID, Type: "US"}, {ID: b.ID, Type: "US"}},
	})
	if err != nil {
		t.Fatalf("AssignItemsToSprint() error = %v", err)
	}

	got, err := GetSprint(ctx, fb, projectID, sprint.ID)
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(got.UserStoryIDs)
	want := []string{a.ID, b.ID}
	slices.Sort(want)
	if !slices.Equal(got.UserStoryIDs, want) {
		t.Errorf("sprint userStoryIds = %v, want %v", got.UserStoryIDs, want)
	}
	for _, id := range want {
		us, err := GetUserStory(ctx, fb, projectID, id)
		if err != nil {
			t.Fatal(err)
		}
		if us.SprintID != sprint.ID {
			t.Errorf("story %s sprintId = %q, want %q", id, us.SprintID, sprint.ID)
		}
	}

	// Back to the backlog.
	err = AssignItemsToSprint(ctx, fb, projectID, "owner", dto.AssignItemsRequest{
		Items: []dto.ItemRef{{ID: a.ID, Type: "US"}, {ID: b.ID, Type: "US"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := GetSprint(ctx, fb, projectID, sprint.ID); len(got.UserStoryIDs) != 0 {
		t.Errorf("sprint still holds %v", got.UserStoryIDs)
	}
}

func TestDependencyLinksBothWays(t *testing.T) {
	fb := emulator(t)
	ctx := context.Background()
	projectID := seededProject(t, fb, "owner")

	a := newStory(t, fb, projectID, "A")
	b := newStory(t, fb, projectID, "B")

	if err := AddDependency(ctx, fb, projectID, "owner", model.ItemUserStory, a.ID, b.ID); err != nil {
		t.Fatalf("AddDependency() error = %v", err)
	}
	a, _ = GetUserStory(ctx, fb, projectID, a.ID)
	b, _ = GetUserStory(ctx, fb, projectID, b.ID)
	if !slices.Equal(a.DependencyIDs, []string{b.ID}) || !slices.Equal(b.RequiredByIDs, []string{a.ID}) {
		t.Errorf("after add: a.dependencyIds = %v, b.requiredByIds = %v", a.DependencyIDs, b.RequiredByIDs)
	}

	// Closing the loop is rejected.
	err := AddDependency(ctx, fb, projectID, "owner", model.ItemUserStory, b.ID, a.ID)
	if code, _ := apperr.Status(err); code != http.StatusBadRequest {
		t.Errorf("cyclic AddDependency() error = %v, want bad request", err)
	}

	if err = RemoveDependency(ctx, fb, projectID, "owner", model.ItemUserStory, a.ID, b.ID); err != nil {
		t.Fatalf("RemoveDependency() error = %v", err)
	}
	a, _ = GetUserStory(ctx, fb, projectID, a.ID)
	b, _ = GetUserStory(ctx, fb, projectID, b.ID)
	if len(a.DependencyIDs) != 0 || len(b.RequiredByIDs) != 0 {
		t.Errorf("after remove: a.dependencyIds = %v, b.requiredByIds = %v", a.DependencyIDs, b.RequiredByIDs)
	}
}

func TestDeleteUserStoryCascadesToTasks(t *testing.T) {
	fb := emulator(t)
	ctx := context.Background()
	projectID := seededProject(t, fb, "owner")

	story := newStory(t, fb, projectID, "Checkout")
	other := newStory(t, fb, projectID, "Catalog")
	outside := newTask(t, fb, projectID, other.ID, "Schema")
	// Both tasks depend on the same outside task, so its requiredByIds is
	// cleaned twice within one delete.
	t1 := newTask(t, fb, projectID, story.ID, "Cart", outside.ID)
	t2 := newTask(t, fb, projectID, story.ID, "Pay", outside.ID)

	if err := DeleteUserStory(ctx, fb, projectID, "owner", story.ID); err != nil {
		t.Fatalf("DeleteUserStory() error = %v", err)
	}
	if _, err := GetUserStory(ctx, fb, projectID, story.ID); !apperr.IsNotFound(err) {
		t.Errorf("GetUserStory(deleted) error = %v", err)
	}
	for _, id := range []string{t1.ID, t2.ID} {
		if task := rawTask(t, fb, projectID, id); !task.Deleted {
			t.Errorf("task %s not deleted", id)
		}
	}
	if got := rawTask(t, fb, projectID, outside.ID); len(got.RequiredByIDs) != 0 || got.Deleted {
		t.Errorf("outside task = deleted %v, requiredByIds %v", got.Deleted, got.RequiredByIDs)
	}
}

func TestDeleteTasksSharingADependency(t *testing.T) {
	fb := emulator(t)
	ctx := context.Background()
	projectID := seededProject(t, fb, "owner")

	story := newStory(t, fb, projectID, "Search")
	base := newTask(t, fb, projectID, story.ID, "Index")
	t1 := newTask(t, fb, projectID, story.ID, "Query", base.ID)
	t2 := newTask(t, fb, projectID, story.ID, "Rank", base.ID)

	if err := DeleteTasks(ctx, fb, projectID, "owner", []string{t1.ID, t2.ID, t1.ID}); err != nil {
		t.Fatalf("DeleteTasks() error = %v", err)
	}
	for _, id := range []string{t1.ID, t2.ID} {
		if _, err := GetTask(ctx, fb, projectID, id); !apperr.IsNotFound(err) {
			t.Errorf("GetTask(%s) error = %v, want not found", id, err)
		}
	}
	if got := rawTask(t, fb, projectID, base.ID); len(got.RequiredByIDs) != 0 {
		t.Errorf("base requiredByIds = %v, want empty", got.RequiredByIDs)
	}
}
