package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

func tasksRef(fb *firestore.Client, projectID string) *firestore.CollectionRef {
	return ItemsRef(fb, projectID, model.ItemTask)
}

func GetTask(ctx context.Context, fb *firestore.Client, projectID, id string) (model.Task, error) {
	t, err := getDoc[model.Task](ctx, tasksRef(fb, projectID).Doc(id), "Task not found")
	if err == nil && t.Deleted {
		return t, apperr.NotFound("Task not found")
	}
	return t, err
}

func ListItemTasks(ctx context.Context, fb *firestore.Client, projectID, itemID string) ([]model.Task, error) {
	return listDocs[model.Task](ctx, active(tasksRef(fb, projectID)).Where("itemId", "==", itemID).OrderBy("scrumId", firestore.Asc))
}

func statusOf(statuses []model.StatusTag, id string) model.StatusTag {
	for _, s := range statuses {
		if s.ID == id {
			return s
		}
	}
	return model.AutomaticTag
}

// TaskTable lists the tasks of one backlog item.
func TaskTable(ctx context.Context, fb *firestore.Client, projectID, itemID string) ([]model.TaskRow, error) {
	tasks, err := ListItemTasks(ctx, fb, projectID, itemID)
	if err != nil {
		return nil, err
	}
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]model.TaskRow, len(tasks))
	for i, t := range tasks {
		out[i] = model.TaskRow{
			ID:         t.ID,
			ScrumID:    t.ScrumID,
			ScrumLabel: model.FormatScrumID(model.ItemTask, t.ScrumID),
			Name:       t.Name,
			Status:     statusOf(statuses, t.StatusID),
			AssigneeID: t.AssigneeID,
			Size:       t.Size,
			DueDate:    t.DueDate,
		}
	}
	return out, nil
}

func taskPreviews(ctx context.Context, fb *firestore.Client, projectID string, ids []string) ([]model.Preview, error) {
	out := []model.Preview{}
	if len(ids) == 0 {
		return out, nil
	}
	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = tasksRef(fb, projectID).Doc(id)
	}
	snaps, err := fb.GetAll(ctx, refs)
	if err != nil {
		return nil, err
	}
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		t, err := decode[model.Task](snap)
		if err != nil {
			return nil, err
		}
		if t.Deleted {
			continue
		}
		out = append(out, model.Preview{
			ID:         t.ID,
			ItemType:   model.ItemTask,
			ScrumID:    t.ScrumID,
			ScrumLabel: model.FormatScrumID(model.ItemTask, t.ScrumID),
			Name:       t.Name,
			Size:       t.Size,
			TagIDs:     []string{},
		})
	}
	return out, nil
}

func GetTaskDetail(ctx context.Context, fb *firestore.Client, projectID, id string) (model.TaskDetail, error) {
	t, err := GetTask(ctx, fb, projectID, id)
	if err != nil {
		return model.TaskDetail{}, err
	}
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return model.TaskDetail{}, err
	}
	detail := model.TaskDetail{
		Task:       t,
		ScrumLabel: model.FormatScrumID(model.ItemTask, t.ScrumID),
		Status:     statusOf(statuses, t.StatusID),
	}
	if detail.Dependencies, err = taskPreviews(ctx, fb, projectID, t.DependencyIDs); err != nil {
		return detail, err
	}
	if detail.RequiredBy, err = taskPreviews(ctx, fb, projectID, t.RequiredByIDs); err != nil {
		return detail, err
	}
	return detail, nil
}

// TodoStatus returns the status new tasks start in.
func TodoStatus(ctx context.Context, fb *firestore.Client, projectID string) (model.StatusTag, error) {
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return model.StatusTag{}, err
	}
	if s, ok := StatusByName(statuses, model.TodoTagName); ok {
		return s, nil
	}
	ordered := byOrder(statuses)
	if len(ordered) == 0 {
		return model.StatusTag{}, apperr.NotFound("Project has no status types")
	}
	return ordered[0], nil
}

// applyTaskStatus stamps statusChangeDate and, for done columns,
// finishedDate. Leaving a done column clears finishedDate.
func applyTaskStatus(t *model.Task, statuses []model.StatusTag, statusID string, now time.Time) {
	if t.StatusID == statusID && t.StatusChangeDate != nil {
		return
	}
	t.StatusID = statusID
	t.StatusChangeDate = &now
	if statusOf(statuses, statusID).MarksTaskAsDone {
		t.FinishedDate = &now
	} else {
		t.FinishedDate = nil
	}
}

func applyTaskAssignee(t *model.Task, assigneeID string, now time.Time) {
	if t.AssigneeID == assigneeID {
		return
	}
	t.AssigneeID = assigneeID
	if assigneeID == "" {
		t.AssignedDate = nil
	} else {
		t.AssignedDate = &now
	}
}

func checkAssignee(ctx context.Context, fb *firestore.Client, projectID, userID string) error {
	if userID == "" {
		return nil
	}
	m, err := GetMember(ctx, fb, projectID, userID)
	if err != nil && !apperr.IsNotFound(err) {
		return err
	}
	if err != nil || !m.Active {
		return apperr.BadRequest("Assignee is not a member of this project")
	}
	return nil
}

func checkTask(ctx context.Context, fb *firestore.Client, projectID, id string, t model.Task, statuses []model.StatusTag) error {
	if !t.Size.Valid() {
		return apperr.BadRequest("Invalid size %q", t.Size)
	}
	if t.StatusID != "" && statusOf(statuses, t.StatusID).ID != t.StatusID {
		return apperr.BadRequest("Status not found")
	}
	if err := checkAssignee(ctx, fb, projectID, t.AssigneeID); err != nil {
		return err
	}
	nodes, err := loadDependencyNodes(ctx, fb, projectID, model.ItemTask)
	if err != nil {
		return err
	}
	if id == "" {
		id = "pending-" + uuid.New().String()
	}
	return checkDependencies(nodes, DependencyNode{ID: id, DependencyIDs: t.DependencyIDs, RequiredByIDs: t.RequiredByIDs})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// CreateTask adds a task under a user story, issue or generic item.
func CreateTask(ctx context.Context, fb *firestore.Client, projectID, userID string, itemType model.ItemType, itemID string, req dto.TaskRequest) (model.Task, error) {
	if !itemType.Parent() {
		return model.Task{}, apperr.BadRequest("Tasks cannot belong to %s items", itemType)
	}
	if _, err := getBacklogItem(ctx, fb, projectID, itemType, itemID); err != nil {
		return model.Task{}, err
	}
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return model.Task{}, err
	}

	now := time.Now()
	t := model.Task{
		BasicInfo:     model.BasicInfo{Name: req.Name, Description: req.Description, CreatedAt: now},
		DueDate:       req.DueDate,
		Size:          model.Size(req.Size),
		ItemType:      itemType,
		ItemID:        itemID,
		DependencyIDs: nonNil(req.DependencyIDs),
		RequiredByIDs: nonNil(req.RequiredByIDs),
	}
	statusID := req.StatusID
	if statusID == "" {
		if todo, ok := StatusByName(statuses, model.TodoTagName); ok {
			statusID = todo.ID
		}
	}
	applyTaskStatus(&t, statuses, statusID, now)
	applyTaskAssignee(&t, req.AssigneeID, now)
	if err := checkTask(ctx, fb, projectID, "", t, statuses); err != nil {
		return t, err
	}

	id, scrumID, err := createNumbered(ctx, fb, projectID, model.ItemTask, func(n int) any {
		t.ScrumID = n
		return t
	})
	if err != nil {
		return t, err
	}
	t.ID, t.ScrumID = id, scrumID

	if len(t.DependencyIDs)+len(t.RequiredByIDs) > 0 {
		b := newBulk(ctx, fb)
		linkDependencies(b, tasksRef(fb, projectID), DependencyNode{ID: id},
			DependencyNode{ID: id, DependencyIDs: t.DependencyIDs, RequiredByIDs: t.RequiredByIDs})
		if err := b.end(); err != nil {
			return t, err
		}
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemTask, model.ActionCreate)
	return t, nil
}

func ModifyTask(ctx context.Context, fb *firestore.Client, projectID, userID, id string, req dto.TaskRequest) (model.Task, error) {
	current, err := GetTask(ctx, fb, projectID, id)
	if err != nil {
		return current, err
	}
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return current, err
	}

	now := time.Now()
	next := current
	next.Name = req.Name
	next.Description = req.Description
	next.DueDate = req.DueDate
	next.Size = model.Size(req.Size)
	next.DependencyIDs = nonNil(req.DependencyIDs)
	next.RequiredByIDs = nonNil(req.RequiredByIDs)
	if req.StatusID != "" {
		applyTaskStatus(&next, statuses, req.StatusID, now)
	}
	applyTaskAssignee(&next, req.AssigneeID, now)
	if err := checkTask(ctx, fb, projectID, id, next, statuses); err != nil {
		return current, err
	}

	col := tasksRef(fb, projectID)
	b := newBulk(ctx, fb)
	b.update(col.Doc(id), []firestore.Update{
		{Path: "name", Value: next.Name},
		{Path: "description", Value: next.Description},
		{Path: "dueDate", Value: next.DueDate},
		{Path: "size", Value: next.Size},
		{Path: "statusId", Value: next.StatusID},
		{Path: "statusChangeDate", Value: next.StatusChangeDate},
		{Path: "finishedDate", Value: next.FinishedDate},
		{Path: "assigneeId", Value: next.AssigneeID},
		{Path: "assignedDate", Value: next.AssignedDate},
		{Path: "dependencyIds", Value: next.DependencyIDs},
		{Path: "requiredByIds", Value: next.RequiredByIDs},
	})
	linkDependencies(b, col,
		DependencyNode{ID: id, DependencyIDs: current.DependencyIDs, RequiredByIDs: current.RequiredByIDs},
		DependencyNode{ID: id, DependencyIDs: next.DependencyIDs, RequiredByIDs: next.RequiredByIDs})
	if err := b.end(); err != nil {
		return current, err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemTask, model.ActionUpdate)
	return next, nil
}

// ChangeTaskStatus moves a task to another kanban column.
func ChangeTaskStatus(ctx context.Context, fb *firestore.Client, projectID, userID, id, statusID string) (model.Task, error) {
	t, err := GetTask(ctx, fb, projectID, id)
	if err != nil {
		return t, err
	}
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return t, err
	}
	if statusOf(statuses, statusID).ID != statusID || statusID == "" {
		return t, apperr.BadRequest("Status not found")
	}
	if t.StatusID == statusID {
		return t, nil
	}
	applyTaskStatus(&t, statuses, statusID, time.Now())
	if _, err := tasksRef(fb, projectID).Doc(id).Update(ctx, []firestore.Update{
		{Path: "statusId", Value: t.StatusID},
		{Path: "statusChangeDate", Value: t.StatusChangeDate},
		{Path: "finishedDate", Value: t.FinishedDate},
	}); err != nil {
		return t, err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemTask, model.ActionUpdate)
	return t, nil
}

func DeleteTask(ctx context.Context, fb *firestore.Client, projectID, userID, id string) error {
	t, err := GetTask(ctx, fb, projectID, id)
	if err != nil {
		return err
	}
	b := newBulk(ctx, fb)
	deleteItemTasks(b, fb, projectID, []model.Task{t})
	if err := b.end(); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemTask, model.ActionDelete)
	return nil
}

// DeleteTasks removes several tasks in one batch.
func DeleteTasks(ctx context.Context, fb *firestore.Client, projectID, userID string, ids []string) error {
	var tasks []model.Task
	for _, id := range slices.Compact(slices.Sorted(slices.Values(ids))) {
		t, err := GetTask(ctx, fb, projectID, id)
		if err != nil {
			return err
		}
		tasks = append(tasks, t)
	}
	b := newBulk(ctx, fb)
	deleteItemTasks(b, fb, projectID, tasks)
	if err := b.end(); err != nil {
		return err
	}
	for _, t := range tasks {
		logActivity(ctx, fb, projectID, userID, t.ID, model.ItemTask, model.ActionDelete)
	}
	return nil
}

func tasksContext(tasks []model.Task) string {
	var sb strings.Builder
	sb.WriteString("# EXISTING TASKS\n\n")
	for _, t := range tasks {
		fmt.Fprintf(&sb, "- name: %s\n- description: %s\n- size: %s\n\n", t.Name, t.Description, t.Size)
	}
	return sb.String()
}

const taskInstructions = `Generate %d tasks for the %s above. Each task must be small enough for one developer to finish in a day or two. Do NOT include any identifier in the name like "Task 1", just use a normal title. Do NOT repeat existing tasks.`

// GenerateTasks asks the model for tasks that complete an item. They start
// in the Todo column and are not stored.
func GenerateTasks(ctx context.Context, fb *firestore.Client, ai *AIClient, projectID string, itemType model.ItemType, itemID string, amount int, prompt string) ([]model.Task, error) {
	if !itemType.Parent() {
		return nil, apperr.BadRequest("Tasks cannot belong to %s items", itemType)
	}
	if amount <= 0 {
		amount = 1
	}
	item, err := getBacklogItem(ctx, fb, projectID, itemType, itemID)
	if err != nil {
		return nil, err
	}
	header, err := ProjectContextHeader(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	existing, err := ListItemTasks(ctx, fb, projectID, itemID)
	if err != nil {
		return nil, err
	}
	todo, err := TodoStatus(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}

	kind := strings.ToLower(itemKind(itemType))
	itemContext := fmt.Sprintf("# %s\n\n- name: %s\n- description: %s\n",
		strings.ToUpper(kind), item.Name, item.Description)
	if itemType == model.ItemUserStory {
		if us, err := GetUserStory(ctx, fb, projectID, itemID); err == nil {
			itemContext += "- acceptance criteria: " + us.AcceptanceCriteria + "\n"
		}
	}
	full := strings.Join([]string{
		header,
		itemContext,
		tasksContext(existing),
		userPrompt("tasks", prompt),
		fmt.Sprintf(taskInstructions, amount, kind),
	}, "\n\n")

	generated, err := GenerateJSON[[]model.TaskPreview](ctx, ai, full)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]model.Task, len(generated))
	for i, g := range generated {
		out[i] = model.Task{
			BasicInfo:     model.BasicInfo{ID: uuid.New().String(), ScrumID: -1, Name: g.Name, Description: g.Description, CreatedAt: now},
			StatusID:      todo.ID,
			Size:          g.Size,
			ItemType:      itemType,
			ItemID:        itemID,
			DependencyIDs: []string{},
			RequiredByIDs: []string{},
		}
	}
	return out, nil
}

func itemKind(t model.ItemType) string {
	switch t {
	case model.ItemUserStory:
		return "User story"
	case model.ItemIssue:
		return "Issue"
	}
	return "Backlog item"
}
