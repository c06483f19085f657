package services

import (
	"context"
	"fmt"
	"strings"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

func userStoriesRef(fb *firestore.Client, projectID string) *firestore.CollectionRef {
	return ItemsRef(fb, projectID, model.ItemUserStory)
}

func ListUserStories(ctx context.Context, fb *firestore.Client, projectID string) ([]model.UserStory, error) {
	return listDocs[model.UserStory](ctx, active(userStoriesRef(fb, projectID)).OrderBy("scrumId", firestore.Asc))
}

func GetUserStory(ctx context.Context, fb *firestore.Client, projectID, id string) (model.UserStory, error) {
	us, err := getDoc[model.UserStory](ctx, userStoriesRef(fb, projectID).Doc(id), "User story not found")
	if err == nil && us.Deleted {
		return us, apperr.NotFound("User story not found")
	}
	return us, err
}

// UserStoryTable renders every live user story as a backlog row.
func UserStoryTable(ctx context.Context, fb *firestore.Client, projectID string) ([]model.BacklogRow, error) {
	stories, err := ListUserStories(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	epics, err := ListEpics(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	epicNumbers := map[string]int{}
	for _, e := range epics {
		epicNumbers[e.ID] = e.ScrumID
	}

	out := make([]model.BacklogRow, len(stories))
	for i, us := range stories {
		row := l.row(model.ItemUserStory, us.BacklogItem)
		row.EpicScrumID = epicNumbers[us.EpicID]
		row.DependencyIDs = us.DependencyIDs
		out[i] = row
	}
	return out, nil
}

func storyPreviews(ctx context.Context, fb *firestore.Client, projectID string, ids []string) ([]model.Preview, error) {
	out := []model.Preview{}
	if len(ids) == 0 {
		return out, nil
	}
	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = userStoriesRef(fb, projectID).Doc(id)
	}
	snaps, err := fb.GetAll(ctx, refs)
	if err != nil {
		return nil, err
	}
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		item, err := decode[model.BacklogItem](snap)
		if err != nil {
			return nil, err
		}
		if !item.Deleted {
			out = append(out, previewOf(model.ItemUserStory, item))
		}
	}
	return out, nil
}

func GetUserStoryDetail(ctx context.Context, fb *firestore.Client, projectID, id string) (model.UserStoryDetail, error) {
	us, err := GetUserStory(ctx, fb, projectID, id)
	if err != nil {
		return model.UserStoryDetail{}, err
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return model.UserStoryDetail{}, err
	}
	detail := model.UserStoryDetail{UserStory: us}
	detail.Priority, detail.Status, detail.Tags = l.resolve(us.BacklogItem)
	if us.EpicID != "" {
		if epic, err := GetEpic(ctx, fb, projectID, us.EpicID); err == nil {
			detail.Epic = &epic
		} else if !apperr.IsNotFound(err) {
			return detail, err
		}
	}
	if detail.Dependencies, err = storyPreviews(ctx, fb, projectID, us.DependencyIDs); err != nil {
		return detail, err
	}
	if detail.RequiredBy, err = storyPreviews(ctx, fb, projectID, us.RequiredByIDs); err != nil {
		return detail, err
	}
	return detail, nil
}

func userStoryFrom(req dto.UserStoryRequest) model.UserStory {
	deps, reqBy := req.DependencyIDs, req.RequiredByIDs
	if deps == nil {
		deps = []string{}
	}
	if reqBy == nil {
		reqBy = []string{}
	}
	return model.UserStory{
		BacklogItem:        backlogItemFrom(req.BacklogItemRequest),
		EpicID:             req.EpicID,
		AcceptanceCriteria: req.AcceptanceCriteria,
		DependencyIDs:      deps,
		RequiredByIDs:      reqBy,
	}
}

// validateUserStory checks references and the dependency graph. id is
// empty for a new story.
func validateUserStory(ctx context.Context, fb *firestore.Client, projectID, id string, us model.UserStory) error {
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return err
	}
	if err := l.checkItem(us.BacklogItem); err != nil {
		return err
	}
	if us.EpicID != "" {
		if _, err := GetEpic(ctx, fb, projectID, us.EpicID); err != nil {
			if apperr.IsNotFound(err) {
				return apperr.BadRequest("Epic not found")
			}
			return err
		}
	}
	nodes, err := loadDependencyNodes(ctx, fb, projectID, model.ItemUserStory)
	if err != nil {
		return err
	}
	pendingID := id
	if pendingID == "" {
		pendingID = "pending-" + uuid.New().String()
	}
	pending := DependencyNode{ID: pendingID, DependencyIDs: us.DependencyIDs, RequiredByIDs: us.RequiredByIDs}
	return checkDependencies(nodes, pending)
}

// CreateUserStory assigns the next scrum id and links dependencies both
// ways. Cycles are rejected.
func CreateUserStory(ctx context.Context, fb *firestore.Client, projectID, userID string, req dto.UserStoryRequest) (model.UserStory, error) {
	us := userStoryFrom(req)
	if err := validateUserStory(ctx, fb, projectID, "", us); err != nil {
		return us, err
	}

	id, scrumID, err := createNumbered(ctx, fb, projectID, model.ItemUserStory, func(n int) any {
		us.ScrumID = n
		return us
	})
	if err != nil {
		return us, err
	}
	us.ID, us.ScrumID = id, scrumID

	b := newBulk(ctx, fb)
	linkDependencies(b, userStoriesRef(fb, projectID), DependencyNode{ID: id},
		DependencyNode{ID: id, DependencyIDs: us.DependencyIDs, RequiredByIDs: us.RequiredByIDs})
	moveToSprint(b, fb, projectID, model.ItemUserStory, id, "", us.SprintID)
	if err := b.end(); err != nil {
		return us, err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemUserStory, model.ActionCreate)
	return us, nil
}

// ModifyUserStory applies an edit, moving the story between sprints and
// updating the other side of changed dependencies.
func ModifyUserStory(ctx context.Context, fb *firestore.Client, projectID, userID, id string, req dto.UserStoryRequest) (model.UserStory, error) {
	current, err := GetUserStory(ctx, fb, projectID, id)
	if err != nil {
		return current, err
	}
	next := userStoryFrom(req)
	next.BacklogItem = mergeBacklogItem(current.BacklogItem, next.BacklogItem)
	if err := validateUserStory(ctx, fb, projectID, id, next); err != nil {
		return current, err
	}

	col := userStoriesRef(fb, projectID)
	b := newBulk(ctx, fb)
	b.update(col.Doc(id), append(backlogUpdates(next.BacklogItem),
		firestore.Update{Path: "epicId", Value: next.EpicID},
		firestore.Update{Path: "acceptanceCriteria", Value: next.AcceptanceCriteria},
		firestore.Update{Path: "dependencyIds", Value: next.DependencyIDs},
		firestore.Update{Path: "requiredByIds", Value: next.RequiredByIDs},
	))
	linkDependencies(b, col,
		DependencyNode{ID: id, DependencyIDs: current.DependencyIDs, RequiredByIDs: current.RequiredByIDs},
		DependencyNode{ID: id, DependencyIDs: next.DependencyIDs, RequiredByIDs: next.RequiredByIDs})
	moveToSprint(b, fb, projectID, model.ItemUserStory, id, current.SprintID, next.SprintID)
	if err := b.end(); err != nil {
		return current, err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemUserStory, model.ActionUpdate)
	return next, nil
}

// DeleteUserStory soft-deletes the story and its tasks, unlinks its
// dependencies and detaches related issues.
func DeleteUserStory(ctx context.Context, fb *firestore.Client, projectID, userID, id string) error {
	us, err := GetUserStory(ctx, fb, projectID, id)
	if err != nil {
		return err
	}
	tasks, err := listDocs[model.Task](ctx, active(ItemsRef(fb, projectID, model.ItemTask)).Where("itemId", "==", id))
	if err != nil {
		return err
	}
	issues, err := listDocs[model.Issue](ctx, ItemsRef(fb, projectID, model.ItemIssue).Where("relatedUserStoryId", "==", id))
	if err != nil {
		return err
	}

	col := userStoriesRef(fb, projectID)
	b := newBulk(ctx, fb)
	b.update(col.Doc(id), []firestore.Update{{Path: "deleted", Value: true}})
	linkDependencies(b, col,
		DependencyNode{ID: id, DependencyIDs: us.DependencyIDs, RequiredByIDs: us.RequiredByIDs},
		DependencyNode{ID: id})
	moveToSprint(b, fb, projectID, model.ItemUserStory, id, us.SprintID, "")
	deleteItemTasks(b, fb, projectID, tasks)
	for _, is := range issues {
		b.update(ItemsRef(fb, projectID, model.ItemIssue).Doc(is.ID), []firestore.Update{{Path: "relatedUserStoryId", Value: ""}})
	}
	if err := b.end(); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemUserStory, model.ActionDelete)
	return nil
}

func SetUserStoryTags(ctx context.Context, fb *firestore.Client, projectID, userID, id string, tagIDs []string) error {
	return setItemTags(ctx, fb, projectID, userID, model.ItemUserStory, id, tagIDs)
}

func userStoriesContext(stories []model.UserStory, epics map[string]int) string {
	var sb strings.Builder
	sb.WriteString("# EXISTING USER STORIES\n\n")
	for _, us := range stories {
		fmt.Fprintf(&sb, "- id: %s\n- name: %s\n- description: %s\n- acceptance criteria: %s\n",
			us.ID, us.Name, us.Description, us.AcceptanceCriteria)
		if n, ok := epics[us.EpicID]; ok {
			fmt.Fprintf(&sb, "- epicId: %s (%s)\n", us.EpicID, model.FormatScrumID(model.ItemEpic, n))
		}
		if len(us.DependencyIDs) > 0 {
			fmt.Fprintf(&sb, "- dependencies: %s\n", strings.Join(us.DependencyIDs, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func epicsContext(epics []model.Epic) string {
	var sb strings.Builder
	sb.WriteString("# EXISTING EPICS\n\n")
	for _, e := range epics {
		fmt.Fprintf(&sb, "- id: %s\n- name: %s\n- description: %s\n\n", e.ID, e.Name, e.Description)
	}
	return sb.String()
}

const userStoryInstructions = `Generate %d user stories for the mentioned software project. Do NOT include any identifier in the name like "User Story 1", just use a normal title. Write the description as "As a <role>, I want <goal> so that <benefit>". The acceptance criteria must be a short markdown list. Only use the ids of the listed epics, priorities, tags and user stories; leave a field empty when nothing fits. Do NOT create dependency cycles. For the priorityId, use the id of one of the provided priorities, NOT the name like "P0".`

// GenerateUserStories asks the model for new user stories. They are not
// stored; references that do not resolve are dropped.
func GenerateUserStories(ctx context.Context, fb *firestore.Client, ai *AIClient, projectID string, amount int, prompt string) ([]model.UserStoryDetail, error) {
	if amount <= 0 {
		amount = 1
	}
	header, err := ProjectContextHeader(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	stories, err := ListUserStories(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	epics, err := ListEpics(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	epicByID := map[string]model.Epic{}
	epicNumbers := map[string]int{}
	for _, e := range epics {
		epicByID[e.ID] = e
		epicNumbers[e.ID] = e.ScrumID
	}
	storyByID := map[string]model.UserStory{}
	for _, us := range stories {
		storyByID[us.ID] = us
	}

	full := strings.Join([]string{
		header,
		"Given the following context, follow the instructions below to the best of your ability.",
		epicsContext(epics),
		userStoriesContext(stories, epicNumbers),
		tagContext("Priority tags", tagList(l.priorities)),
		tagContext("Backlog tags", tagList(l.tags)),
		userPrompt("user stories", prompt),
		fmt.Sprintf(userStoryInstructions, amount),
	}, "\n\n")

	generated, err := GenerateJSON[[]model.UserStoryPreview](ctx, ai, full)
	if err != nil {
		return nil, err
	}

	out := make([]model.UserStoryDetail, 0, len(generated))
	for _, g := range generated {
		us := model.UserStory{
			BacklogItem: model.BacklogItem{
				BasicInfo: model.BasicInfo{ID: uuid.New().String(), ScrumID: -1, Name: g.Name, Description: g.Description},
				TagIDs:    []string{},
				Size:      g.Size,
			},
			AcceptanceCriteria: g.AcceptanceCriteria,
			DependencyIDs:      []string{},
			RequiredByIDs:      []string{},
		}
		detail := model.UserStoryDetail{Tags: []model.Tag{}, Dependencies: []model.Preview{}, RequiredBy: []model.Preview{}, Status: model.AutomaticTag}
		if p, ok := tagByIDOrName(l.priorities, g.PriorityID); ok {
			us.PriorityID = p.ID
			detail.Priority = &p
		}
		if e, ok := epicByID[g.EpicID]; ok {
			us.EpicID = e.ID
			detail.Epic = &e
		}
		for _, id := range g.TagIDs {
			if t, ok := tagByIDOrName(l.tags, id); ok {
				us.TagIDs = append(us.TagIDs, t.ID)
				detail.Tags = append(detail.Tags, t)
			}
		}
		for _, id := range g.DependencyIDs {
			if dep, ok := storyByID[id]; ok {
				us.DependencyIDs = append(us.DependencyIDs, id)
				detail.Dependencies = append(detail.Dependencies, previewOf(model.ItemUserStory, dep.BacklogItem))
			}
		}
		for _, id := range g.RequiredByIDs {
			if req, ok := storyByID[id]; ok {
				us.RequiredByIDs = append(us.RequiredByIDs, id)
				detail.RequiredBy = append(detail.RequiredBy, previewOf(model.ItemUserStory, req.BacklogItem))
			}
		}
		detail.UserStory = us
		out = append(out, detail)
	}
	return out, nil
}
