package services

import (
	"context"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
)

func issuesRef(fb *firestore.Client, projectID string) *firestore.CollectionRef {
	return ItemsRef(fb, projectID, model.ItemIssue)
}

func ListIssues(ctx context.Context, fb *firestore.Client, projectID string) ([]model.Issue, error) {
	return listDocs[model.Issue](ctx, active(issuesRef(fb, projectID)).OrderBy("scrumId", firestore.Asc))
}

func GetIssue(ctx context.Context, fb *firestore.Client, projectID, id string) (model.Issue, error) {
	is, err := getDoc[model.Issue](ctx, issuesRef(fb, projectID).Doc(id), "Issue not found")
	if err == nil && is.Deleted {
		return is, apperr.NotFound("Issue not found")
	}
	return is, err
}

func IssueTable(ctx context.Context, fb *firestore.Client, projectID string) ([]model.BacklogRow, error) {
	issues, err := ListIssues(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]model.BacklogRow, len(issues))
	for i, is := range issues {
		out[i] = l.row(model.ItemIssue, is.BacklogItem)
	}
	return out, nil
}

func GetIssueDetail(ctx context.Context, fb *firestore.Client, projectID, id string) (model.IssueDetail, error) {
	is, err := GetIssue(ctx, fb, projectID, id)
	if err != nil {
		return model.IssueDetail{}, err
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return model.IssueDetail{}, err
	}
	detail := model.IssueDetail{Issue: is}
	detail.Priority, detail.Status, detail.Tags = l.resolve(is.BacklogItem)
	if is.RelatedUserStoryID != "" {
		us, err := GetUserStory(ctx, fb, projectID, is.RelatedUserStoryID)
		switch {
		case err == nil:
			p := previewOf(model.ItemUserStory, us.BacklogItem)
			detail.RelatedUserStory = &p
		case !apperr.IsNotFound(err):
			return detail, err
		}
	}
	return detail, nil
}

func checkRelatedUserStory(ctx context.Context, fb *firestore.Client, projectID, id string) error {
	if id == "" {
		return nil
	}
	if _, err := GetUserStory(ctx, fb, projectID, id); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.BadRequest("Related user story not found")
		}
		return err
	}
	return nil
}

func CreateIssue(ctx context.Context, fb *firestore.Client, projectID, userID string, req dto.IssueRequest) (model.Issue, error) {
	is := model.Issue{
		BacklogItem:        backlogItemFrom(req.BacklogItemRequest),
		RelatedUserStoryID: req.RelatedUserStoryID,
		StepsToRecreate:    req.StepsToRecreate,
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return is, err
	}
	if err := l.checkItem(is.BacklogItem); err != nil {
		return is, err
	}
	if err := checkRelatedUserStory(ctx, fb, projectID, is.RelatedUserStoryID); err != nil {
		return is, err
	}

	id, scrumID, err := createNumbered(ctx, fb, projectID, model.ItemIssue, func(n int) any {
		is.ScrumID = n
		return is
	})
	if err != nil {
		return is, err
	}
	is.ID, is.ScrumID = id, scrumID
	if is.SprintID != "" {
		b := newBulk(ctx, fb)
		moveToSprint(b, fb, projectID, model.ItemIssue, id, "", is.SprintID)
		if err := b.end(); err != nil {
			return is, err
		}
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemIssue, model.ActionCreate)
	return is, nil
}

func ModifyIssue(ctx context.Context, fb *firestore.Client, projectID, userID, id string, req dto.IssueRequest) (model.Issue, error) {
	current, err := GetIssue(ctx, fb, projectID, id)
	if err != nil {
		return current, err
	}
	next := model.Issue{
		BacklogItem:        mergeBacklogItem(current.BacklogItem, backlogItemFrom(req.BacklogItemRequest)),
		RelatedUserStoryID: req.RelatedUserStoryID,
		StepsToRecreate:    req.StepsToRecreate,
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return current, err
	}
	if err := l.checkItem(next.BacklogItem); err != nil {
		return current, err
	}
	if err := checkRelatedUserStory(ctx, fb, projectID, next.RelatedUserStoryID); err != nil {
		return current, err
	}

	b := newBulk(ctx, fb)
	b.update(issuesRef(fb, projectID).Doc(id), append(backlogUpdates(next.BacklogItem),
		firestore.Update{Path: "relatedUserStoryId", Value: next.RelatedUserStoryID},
		firestore.Update{Path: "stepsToRecreate", Value: next.StepsToRecreate},
	))
	moveToSprint(b, fb, projectID, model.ItemIssue, id, current.SprintID, next.SprintID)
	if err := b.end(); err != nil {
		return current, err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemIssue, model.ActionUpdate)
	return next, nil
}

// SetRelatedUserStory links an issue to a user story, or unlinks it when
// userStoryID is empty.
func SetRelatedUserStory(ctx context.Context, fb *firestore.Client, projectID, userID, id, userStoryID string) error {
	if _, err := GetIssue(ctx, fb, projectID, id); err != nil {
		return err
	}
	if err := checkRelatedUserStory(ctx, fb, projectID, userStoryID); err != nil {
		return err
	}
	if _, err := issuesRef(fb, projectID).Doc(id).Update(ctx, []firestore.Update{{Path: "relatedUserStoryId", Value: userStoryID}}); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemIssue, model.ActionUpdate)
	return nil
}

func SetIssueTags(ctx context.Context, fb *firestore.Client, projectID, userID, id string, tagIDs []string) error {
	return setItemTags(ctx, fb, projectID, userID, model.ItemIssue, id, tagIDs)
}

func DeleteIssue(ctx context.Context, fb *firestore.Client, projectID, userID, id string) error {
	return deleteBacklogEntry(ctx, fb, projectID, userID, model.ItemIssue, id)
}

// deleteBacklogEntry soft-deletes an issue or generic item along with its
// tasks and drops it from its sprint.
func deleteBacklogEntry(ctx context.Context, fb *firestore.Client, projectID, userID string, t model.ItemType, id string) error {
	item, err := getBacklogItem(ctx, fb, projectID, t, id)
	if err != nil {
		return err
	}
	tasks, err := listDocs[model.Task](ctx, active(ItemsRef(fb, projectID, model.ItemTask)).Where("itemId", "==", id))
	if err != nil {
		return err
	}
	b := newBulk(ctx, fb)
	b.update(ItemsRef(fb, projectID, t).Doc(id), []firestore.Update{{Path: "deleted", Value: true}})
	moveToSprint(b, fb, projectID, t, id, item.SprintID, "")
	deleteItemTasks(b, fb, projectID, tasks)
	if err := b.end(); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, id, t, model.ActionDelete)
	return nil
}
