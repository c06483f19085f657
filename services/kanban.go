package services

import (
	"context"
	"slices"
	"sort"
	"strings"

	"tenor/model"

	"cloud.google.com/go/firestore"
)

func doneStatusIDs(statuses []model.StatusTag) map[string]bool {
	out := map[string]bool{}
	for _, s := range statuses {
		if s.MarksTaskAsDone {
			out[s.ID] = true
		}
	}
	return out
}

func byOrder(statuses []model.StatusTag) []model.StatusTag {
	out := slices.Clone(statuses)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

// AutomaticStatus derives an item's kanban column from its tasks, checking
// in order:
//   - no tasks: Todo
//   - every task with a status in one column: that column
//   - every task done: Done
//   - otherwise Doing
//
// Awaits Review is a candidate column for issues only. Missing named
// columns fall back to board order.
func AutomaticStatus(tasks []model.Task, statuses []model.StatusTag, isIssue bool) string {
	if !isIssue {
		statuses = slices.DeleteFunc(slices.Clone(statuses), func(s model.StatusTag) bool {
			return strings.EqualFold(s.Name, model.AwaitsReviewTagName)
		})
	}
	if len(statuses) == 0 {
		return ""
	}
	ordered := byOrder(statuses)

	if len(tasks) == 0 {
		if s, ok := StatusByName(statuses, model.TodoTagName); ok {
			return s.ID
		}
		return ordered[0].ID
	}

	shared, same := "", true
	for _, t := range tasks {
		switch {
		case t.StatusID == "":
		case shared == "":
			shared = t.StatusID
		case t.StatusID != shared:
			same = false
		}
	}
	if same && shared != "" {
		return shared
	}

	done := doneStatusIDs(statuses)
	allDone := true
	for _, t := range tasks {
		if !done[t.StatusID] {
			allDone = false
			break
		}
	}
	if allDone {
		if s, ok := StatusByName(statuses, model.DoneTagName); ok {
			return s.ID
		}
		for _, s := range ordered {
			if done[s.ID] {
				return s.ID
			}
		}
	}

	if s, ok := StatusByName(statuses, model.DoingTagName); ok {
		return s.ID
	}
	return ordered[(len(ordered)-1)/2].ID
}

// KanbanColumn is one status column with the ids of the cards in it.
type KanbanColumn struct {
	model.StatusTag
	ItemIDs []string `json:"itemIds"`
}

// KanbanCard is a task or backlog item shown on the board.
type KanbanCard struct {
	ID         string         `json:"id"`
	ItemType   model.ItemType `json:"itemType"`
	ScrumID    int            `json:"scrumId"`
	ScrumLabel string         `json:"scrumLabel"`
	Name       string         `json:"name"`
	Size       model.Size     `json:"size"`
	AssigneeID string         `json:"assigneeId,omitempty"`
	TagIDs     []string       `json:"tagIds,omitempty"`
	ColumnID   string         `json:"columnId"`
}

type Kanban struct {
	Columns []KanbanColumn        `json:"columns"`
	Cards   map[string]KanbanCard `json:"cards"`
}

func buildKanban(statuses []model.StatusTag, cards []KanbanCard) Kanban {
	ordered := byOrder(statuses)
	cols := make([]KanbanColumn, len(ordered))
	index := map[string]int{}
	for i, s := range ordered {
		cols[i] = KanbanColumn{StatusTag: s, ItemIDs: []string{}}
		index[s.ID] = i
	}
	byID := make(map[string]KanbanCard, len(cards))
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].ScrumID < cards[j].ScrumID })
	for _, c := range cards {
		byID[c.ID] = c
		if i, ok := index[c.ColumnID]; ok {
			cols[i].ItemIDs = append(cols[i].ItemIDs, c.ID)
		}
	}
	return Kanban{Columns: cols, Cards: byID}
}

// KanbanTasks places the tasks of the current sprint's items in their
// status columns. Without a current sprint every open task is shown.
func KanbanTasks(ctx context.Context, fb *firestore.Client, projectID string) (Kanban, error) {
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return Kanban{}, err
	}
	tasks, err := listTasks(ctx, fb, projectID)
	if err != nil {
		return Kanban{}, err
	}
	sprint, err := CurrentSprint(ctx, fb, projectID)
	if err != nil {
		return Kanban{}, err
	}

	var inSprint map[string]bool
	if sprint != nil {
		inSprint = sprintItemSet(*sprint)
	}
	cards := make([]KanbanCard, 0, len(tasks))
	for _, t := range tasks {
		if inSprint != nil && !inSprint[t.ItemID] {
			continue
		}
		cards = append(cards, KanbanCard{
			ID:         t.ID,
			ItemType:   model.ItemTask,
			ScrumID:    t.ScrumID,
			ScrumLabel: model.FormatScrumID(model.ItemTask, t.ScrumID),
			Name:       t.Name,
			Size:       t.Size,
			AssigneeID: t.AssigneeID,
			ColumnID:   t.StatusID,
		})
	}
	return buildKanban(statuses, cards), nil
}

// KanbanItems places user stories, issues and generic items of the current
// sprint in their columns, resolving automatic statuses from tasks.
func KanbanItems(ctx context.Context, fb *firestore.Client, projectID string) (Kanban, error) {
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return Kanban{}, err
	}
	entries, err := listBacklogEntries(ctx, fb, projectID)
	if err != nil {
		return Kanban{}, err
	}
	tasks, err := listTasks(ctx, fb, projectID)
	if err != nil {
		return Kanban{}, err
	}
	sprint, err := CurrentSprint(ctx, fb, projectID)
	if err != nil {
		return Kanban{}, err
	}
	byItem := tasksByItem(tasks)

	cards := make([]KanbanCard, 0, len(entries))
	for _, e := range entries {
		if sprint != nil && e.SprintID != sprint.ID {
			continue
		}
		column := e.StatusID
		if column == "" {
			column = AutomaticStatus(byItem[e.ID], statuses, e.Type == model.ItemIssue)
		}
		cards = append(cards, KanbanCard{
			ID:         e.ID,
			ItemType:   e.Type,
			ScrumID:    e.ScrumID,
			ScrumLabel: model.FormatScrumID(e.Type, e.ScrumID),
			Name:       e.Name,
			Size:       e.Size,
			TagIDs:     e.TagIDs,
			ColumnID:   column,
		})
	}
	return buildKanban(statuses, cards), nil
}

// ItemAutomaticStatus resolves the status an item would take from its
// tasks.
func ItemAutomaticStatus(ctx context.Context, fb *firestore.Client, projectID, itemID string, isIssue bool) (model.StatusTag, error) {
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return model.StatusTag{}, err
	}
	tasks, err := listDocs[model.Task](ctx, active(ItemsRef(fb, projectID, model.ItemTask)).Where("itemId", "==", itemID))
	if err != nil {
		return model.StatusTag{}, err
	}
	id := AutomaticStatus(tasks, statuses, isIssue)
	for _, s := range statuses {
		if s.ID == id {
			return s, nil
		}
	}
	return model.AutomaticTag, nil
}
