package services

import (
	"context"

	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
)

// Generic backlog items carry only the shared backlog fields.

func ListBacklogItems(ctx context.Context, fb *firestore.Client, projectID string) ([]model.BacklogItem, error) {
	return listDocs[model.BacklogItem](ctx, active(ItemsRef(fb, projectID, model.ItemBacklogItem)).OrderBy("scrumId", firestore.Asc))
}

func BacklogItemTable(ctx context.Context, fb *firestore.Client, projectID string) ([]model.BacklogRow, error) {
	items, err := ListBacklogItems(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]model.BacklogRow, len(items))
	for i, item := range items {
		out[i] = l.row(model.ItemBacklogItem, item)
	}
	return out, nil
}

// BacklogTable lists user stories, issues and generic items together.
func BacklogTable(ctx context.Context, fb *firestore.Client, projectID string) ([]model.BacklogRow, error) {
	entries, err := listBacklogEntries(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]model.BacklogRow, len(entries))
	for i, e := range entries {
		out[i] = l.row(e.Type, e.BacklogItem)
	}
	return out, nil
}

func GetBacklogItemDetail(ctx context.Context, fb *firestore.Client, projectID, id string) (model.BacklogItemDetail, error) {
	item, err := getBacklogItem(ctx, fb, projectID, model.ItemBacklogItem, id)
	if err != nil {
		return model.BacklogItemDetail{}, err
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return model.BacklogItemDetail{}, err
	}
	detail := model.BacklogItemDetail{BacklogItem: item}
	detail.Priority, detail.Status, detail.Tags = l.resolve(item)
	return detail, nil
}

func CreateBacklogItem(ctx context.Context, fb *firestore.Client, projectID, userID string, req dto.BacklogItemRequest) (model.BacklogItem, error) {
	item := backlogItemFrom(req)
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return item, err
	}
	if err := l.checkItem(item); err != nil {
		return item, err
	}
	id, scrumID, err := createNumbered(ctx, fb, projectID, model.ItemBacklogItem, func(n int) any {
		item.ScrumID = n
		return item
	})
	if err != nil {
		return item, err
	}
	item.ID, item.ScrumID = id, scrumID
	if item.SprintID != "" {
		b := newBulk(ctx, fb)
		moveToSprint(b, fb, projectID, model.ItemBacklogItem, id, "", item.SprintID)
		if err := b.end(); err != nil {
			return item, err
		}
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemBacklogItem, model.ActionCreate)
	return item, nil
}

func ModifyBacklogItem(ctx context.Context, fb *firestore.Client, projectID, userID, id string, req dto.BacklogItemRequest) (model.BacklogItem, error) {
	current, err := getBacklogItem(ctx, fb, projectID, model.ItemBacklogItem, id)
	if err != nil {
		return current, err
	}
	next := mergeBacklogItem(current, backlogItemFrom(req))
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return current, err
	}
	if err := l.checkItem(next); err != nil {
		return current, err
	}
	b := newBulk(ctx, fb)
	b.update(ItemsRef(fb, projectID, model.ItemBacklogItem).Doc(id), backlogUpdates(next))
	moveToSprint(b, fb, projectID, model.ItemBacklogItem, id, current.SprintID, next.SprintID)
	if err := b.end(); err != nil {
		return current, err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemBacklogItem, model.ActionUpdate)
	return next, nil
}

func SetBacklogItemTags(ctx context.Context, fb *firestore.Client, projectID, userID, id string, tagIDs []string) error {
	return setItemTags(ctx, fb, projectID, userID, model.ItemBacklogItem, id, tagIDs)
}

func DeleteBacklogItem(ctx context.Context, fb *firestore.Client, projectID, userID, id string) error {
	return deleteBacklogEntry(ctx, fb, projectID, userID, model.ItemBacklogItem, id)
}
