package services

import (
	"context"
	"sort"
	"time"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
)

// backlogEntry is a user story, issue or generic item read through the
// fields they share.
type backlogEntry struct {
	model.BacklogItem
	Type model.ItemType
}

var sprintItemTypes = []model.ItemType{model.ItemUserStory, model.ItemIssue, model.ItemBacklogItem}

func listBacklogEntries(ctx context.Context, fb *firestore.Client, projectID string) ([]backlogEntry, error) {
	results := make([][]model.BacklogItem, len(sprintItemTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range sprintItemTypes {
		g.Go(func() error {
			items, err := listDocs[model.BacklogItem](gctx, active(ItemsRef(fb, projectID, t)))
			results[i] = items
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []backlogEntry
	for i, items := range results {
		for _, item := range items {
			out = append(out, backlogEntry{BacklogItem: item, Type: sprintItemTypes[i]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type > out[j].Type
		}
		return out[i].ScrumID < out[j].ScrumID
	})
	return out, nil
}

func getBacklogItem(ctx context.Context, fb *firestore.Client, projectID string, t model.ItemType, id string) (model.BacklogItem, error) {
	item, err := getDoc[model.BacklogItem](ctx, ItemsRef(fb, projectID, t).Doc(id), "Item not found")
	if err != nil {
		return item, err
	}
	if item.Deleted {
		return item, apperr.NotFound("Item not found")
	}
	return item, nil
}

func listTasks(ctx context.Context, fb *firestore.Client, projectID string) ([]model.Task, error) {
	return listDocs[model.Task](ctx, active(ItemsRef(fb, projectID, model.ItemTask)))
}

func tasksByItem(tasks []model.Task) map[string][]model.Task {
	out := map[string][]model.Task{}
	for _, t := range tasks {
		out[t.ItemID] = append(out[t.ItemID], t)
	}
	return out
}

func sprintItemSet(s model.Sprint) map[string]bool {
	out := map[string]bool{}
	for _, ids := range [][]string{s.UserStoryIDs, s.IssueIDs, s.GenericItemIDs} {
		for _, id := range ids {
			out[id] = true
		}
	}
	return out
}

// lookups holds the project data needed to render backlog rows.
type lookups struct {
	priorities map[string]model.Tag
	tags       map[string]model.Tag
	statuses   []model.StatusTag
	sprints    map[string]model.Sprint
	tasks      map[string][]model.Task
}

func loadLookups(ctx context.Context, fb *firestore.Client, projectID string) (*lookups, error) {
	l := &lookups{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		l.priorities, err = tagsByID(gctx, fb, projectID, PriorityTypes)
		return err
	})
	g.Go(func() (err error) {
		l.tags, err = tagsByID(gctx, fb, projectID, BacklogTags)
		return err
	})
	g.Go(func() (err error) {
		l.statuses, err = ListStatusTypes(gctx, fb, projectID)
		return err
	})
	g.Go(func() error {
		sprints, err := ListSprints(gctx, fb, projectID)
		l.sprints = map[string]model.Sprint{}
		for _, s := range sprints {
			l.sprints[s.ID] = s
		}
		return err
	})
	g.Go(func() error {
		tasks, err := listTasks(gctx, fb, projectID)
		l.tasks = tasksByItem(tasks)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *lookups) row(t model.ItemType, item model.BacklogItem) model.BacklogRow {
	row := model.BacklogRow{
		ID:         item.ID,
		ItemType:   t,
		ScrumID:    item.ScrumID,
		ScrumLabel: model.FormatScrumID(t, item.ScrumID),
		Name:       item.Name,
		Size:       item.Size,
		Tags:       []model.Tag{},
		SprintID:   item.SprintID,
		StatusID:   item.StatusID,
		CreatedAt:  item.CreatedAt,
	}
	if p, ok := l.priorities[item.PriorityID]; ok {
		row.Priority = &p
	}
	for _, id := range item.TagIDs {
		if tag, ok := l.tags[id]; ok && !tag.Deleted {
			row.Tags = append(row.Tags, tag)
		}
	}
	if s, ok := l.sprints[item.SprintID]; ok {
		row.SprintNumber = s.Number
	}

	tasks := l.tasks[item.ID]
	done := doneStatusIDs(l.statuses)
	seen := map[string]bool{}
	row.AssigneeIDs = []string{}
	for _, task := range tasks {
		row.TaskCount++
		if done[task.StatusID] {
			row.TasksDone++
		}
		if task.AssigneeID != "" && !seen[task.AssigneeID] {
			seen[task.AssigneeID] = true
			row.AssigneeIDs = append(row.AssigneeIDs, task.AssigneeID)
		}
	}
	if row.StatusID == "" {
		row.StatusID = AutomaticStatus(tasks, l.statuses, t == model.ItemIssue)
	}
	return row
}

// checkBacklogFields rejects tags, priorities and sizes that do not belong
// to the project.
func (l *lookups) check(size model.Size, priorityID string, tagIDs []string, sprintID, statusID string) error {
	if !size.Valid() {
		return apperr.BadRequest("Invalid size %q", size)
	}
	if priorityID != "" {
		if p, ok := l.priorities[priorityID]; !ok || p.Deleted {
			return apperr.BadRequest("Priority not found")
		}
	}
	for _, id := range tagIDs {
		if tag, ok := l.tags[id]; !ok || tag.Deleted {
			return apperr.BadRequest("Tag not found")
		}
	}
	if sprintID != "" {
		if _, ok := l.sprints[sprintID]; !ok {
			return apperr.BadRequest("Sprint not found")
		}
	}
	if statusID != "" {
		found := false
		for _, s := range l.statuses {
			if s.ID == statusID {
				found = true
				break
			}
		}
		if !found {
			return apperr.BadRequest("Status not found")
		}
	}
	return nil
}

// CountItems returns the number of live documents of a type.
func CountItems(ctx context.Context, fb *firestore.Client, projectID string, t model.ItemType) (int, error) {
	return countDocs(ctx, active(ItemsRef(fb, projectID, t)))
}

// setItemTags replaces the tag list of a user story, issue or generic item.
func setItemTags(ctx context.Context, fb *firestore.Client, projectID, userID string, t model.ItemType, id string, tagIDs []string) error {
	if _, err := getBacklogItem(ctx, fb, projectID, t, id); err != nil {
		return err
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return err
	}
	if tagIDs == nil {
		tagIDs = []string{}
	}
	if err := l.check("", "", tagIDs, "", ""); err != nil {
		return err
	}
	if _, err := ItemsRef(fb, projectID, t).Doc(id).Update(ctx, []firestore.Update{{Path: "tagIds", Value: tagIDs}}); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, id, t, model.ActionUpdate)
	return nil
}

// moveToSprint keeps the sprint's item arrays in step with an item's
// sprintId.
func moveToSprint(b *bulk, fb *firestore.Client, projectID string, t model.ItemType, id, from, to string) {
	if from == to {
		return
	}
	field := model.SprintItemField(t)
	if from != "" {
		b.arrayRemove(ItemsRef(fb, projectID, model.ItemSprint).Doc(from), field, id)
	}
	if to != "" {
		b.arrayUnion(ItemsRef(fb, projectID, model.ItemSprint).Doc(to), field, id)
	}
}

// deleteItemTasks soft-deletes every task of an item and unlinks them from
// tasks outside the item.
func deleteItemTasks(b *bulk, fb *firestore.Client, projectID string, tasks []model.Task) {
	ids := map[string]bool{}
	for _, t := range tasks {
		ids[t.ID] = true
	}
	ref := ItemsRef(fb, projectID, model.ItemTask)
	for _, t := range tasks {
		b.update(ref.Doc(t.ID), []firestore.Update{{Path: "deleted", Value: true}})
		for _, dep := range t.DependencyIDs {
			if !ids[dep] {
				b.arrayRemove(ref.Doc(dep), "requiredByIds", t.ID)
			}
		}
		for _, req := range t.RequiredByIDs {
			if !ids[req] {
				b.arrayRemove(ref.Doc(req), "dependencyIds", t.ID)
			}
		}
	}
}

func backlogItemFrom(req dto.BacklogItemRequest) model.BacklogItem {
	tagIDs := req.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return model.BacklogItem{
		BasicInfo: model.BasicInfo{
			Name:        req.Name,
			Description: req.Description,
			CreatedAt:   time.Now(),
		},
		SprintID:   req.SprintID,
		TagIDs:     tagIDs,
		Size:       model.Size(req.Size),
		PriorityID: req.PriorityID,
		StatusID:   req.StatusID,
	}
}

func backlogUpdates(item model.BacklogItem) []firestore.Update {
	return []firestore.Update{
		{Path: "name", Value: item.Name},
		{Path: "description", Value: item.Description},
		{Path: "sprintId", Value: item.SprintID},
		{Path: "tagIds", Value: item.TagIDs},
		{Path: "size", Value: item.Size},
		{Path: "priorityId", Value: item.PriorityID},
		{Path: "statusId", Value: item.StatusID},
	}
}

// mergeBacklogItem applies an edit while keeping identity fields.
func mergeBacklogItem(current, edit model.BacklogItem) model.BacklogItem {
	edit.ID = current.ID
	edit.ScrumID = current.ScrumID
	edit.CreatedAt = current.CreatedAt
	edit.Deleted = current.Deleted
	return edit
}

func (l *lookups) checkItem(item model.BacklogItem) error {
	return l.check(item.Size, item.PriorityID, item.TagIDs, item.SprintID, item.StatusID)
}

func (l *lookups) resolve(item model.BacklogItem) (*model.Tag, model.StatusTag, []model.Tag) {
	var priority *model.Tag
	if p, ok := l.priorities[item.PriorityID]; ok {
		priority = &p
	}
	status := model.AutomaticTag
	for _, s := range l.statuses {
		if s.ID == item.StatusID {
			status = s
		}
	}
	tags := []model.Tag{}
	for _, id := range item.TagIDs {
		if t, ok := l.tags[id]; ok && !t.Deleted {
			tags = append(tags, t)
		}
	}
	return priority, status, tags
}

func previewOf(t model.ItemType, item model.BacklogItem) model.Preview {
	tagIDs := item.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return model.Preview{
		ID:         item.ID,
		ItemType:   t,
		ScrumID:    item.ScrumID,
		ScrumLabel: model.FormatScrumID(t, item.ScrumID),
		Name:       item.Name,
		Size:       item.Size,
		SprintID:   item.SprintID,
		TagIDs:     tagIDs,
	}
}
