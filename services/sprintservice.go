package services

import (
	"context"
	"sort"
	"time"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// PreviousSprintWindow is how long after its end a sprint still counts as
// the previous one for retrospectives.
const PreviousSprintWindow = 3 * 24 * time.Hour

func sprintsRef(fb *firestore.Client, projectID string) *firestore.CollectionRef {
	return ItemsRef(fb, projectID, model.ItemSprint)
}

func ListSprints(ctx context.Context, fb *firestore.Client, projectID string) ([]model.Sprint, error) {
	return listDocs[model.Sprint](ctx, active(sprintsRef(fb, projectID)).OrderBy("number", firestore.Asc))
}

func GetSprint(ctx context.Context, fb *firestore.Client, projectID, sprintID string) (model.Sprint, error) {
	s, err := getDoc[model.Sprint](ctx, sprintsRef(fb, projectID).Doc(sprintID), "Sprint not found")
	if err == nil && s.Deleted {
		return s, apperr.NotFound("Sprint not found")
	}
	return s, err
}

func GetSprintByNumber(ctx context.Context, fb *firestore.Client, projectID string, number int) (model.Sprint, error) {
	sprints, err := listDocs[model.Sprint](ctx, active(sprintsRef(fb, projectID)).Where("number", "==", number).Limit(1))
	if err != nil {
		return model.Sprint{}, err
	}
	if len(sprints) == 0 {
		return model.Sprint{}, apperr.NotFound("Sprint not found")
	}
	return sprints[0], nil
}

func pickCurrentSprint(sprints []model.Sprint, now time.Time) *model.Sprint {
	for i := range sprints {
		if sprints[i].Active(now) {
			return &sprints[i]
		}
	}
	return nil
}

func pickPreviousSprint(sprints []model.Sprint, now time.Time) *model.Sprint {
	for i := range sprints {
		end := sprints[i].EndDate
		if end.Before(now) && now.Sub(end) < PreviousSprintWindow {
			return &sprints[i]
		}
	}
	return nil
}

// CurrentSprint returns the sprint running now, or nil.
func CurrentSprint(ctx context.Context, fb *firestore.Client, projectID string) (*model.Sprint, error) {
	sprints, err := ListSprints(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	return pickCurrentSprint(sprints, time.Now()), nil
}

// PreviousSprint returns a sprint that ended less than three days ago, or nil.
func PreviousSprint(ctx context.Context, fb *firestore.Client, projectID string) (*model.Sprint, error) {
	sprints, err := ListSprints(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	return pickPreviousSprint(sprints, time.Now()), nil
}

func overlaps(sprints []model.Sprint, number int, start, end time.Time) bool {
	for _, s := range sprints {
		if s.Number == number {
			continue
		}
		if !start.After(s.EndDate) && !end.Before(s.StartDate) {
			return true
		}
	}
	return false
}

// CreateOrModifySprint creates a sprint when req.Number is -1 and updates the
// sprint with that number otherwise.
func CreateOrModifySprint(ctx context.Context, fb *firestore.Client, projectID, userID string, req dto.SprintRequest) (model.Sprint, error) {
	if !req.EndDate.After(req.StartDate) {
		return model.Sprint{}, apperr.BadRequest("Sprint end date must be after its start date")
	}
	sprints, err := ListSprints(ctx, fb, projectID)
	if err != nil {
		return model.Sprint{}, err
	}
	if overlaps(sprints, req.Number, req.StartDate, req.EndDate) {
		return model.Sprint{}, apperr.BadRequest("Sprint dates overlap another sprint")
	}

	if req.Number != -1 {
		current, err := GetSprintByNumber(ctx, fb, projectID, req.Number)
		if err != nil {
			return current, err
		}
		_, err = sprintsRef(fb, projectID).Doc(current.ID).Update(ctx, []firestore.Update{
			{Path: "description", Value: req.Description},
			{Path: "startDate", Value: req.StartDate},
			{Path: "endDate", Value: req.EndDate},
		})
		if err != nil {
			return current, err
		}
		current.Description, current.StartDate, current.EndDate = req.Description, req.StartDate, req.EndDate
		logActivity(ctx, fb, projectID, userID, current.ID, model.ItemSprint, model.ActionUpdate)
		return current, renumberSprints(ctx, fb, projectID)
	}

	sprint := model.Sprint{
		ID:             uuid.New().String(),
		Number:         len(sprints) + 1,
		Description:    req.Description,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		UserStoryIDs:   []string{},
		IssueIDs:       []string{},
		GenericItemIDs: []string{},
	}
	if _, err := sprintsRef(fb, projectID).Doc(sprint.ID).Set(ctx, sprint); err != nil {
		return sprint, err
	}
	logActivity(ctx, fb, projectID, userID, sprint.ID, model.ItemSprint, model.ActionCreate)
	return sprint, renumberSprints(ctx, fb, projectID)
}

// sprintNumbers returns the number each sprint should have once ordered by
// start date. Only sprints whose number changes are included.
func sprintNumbers(sprints []model.Sprint) map[string]int {
	sorted := append([]model.Sprint(nil), sprints...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })
	out := map[string]int{}
	for i, s := range sorted {
		if s.Number != i+1 {
			out[s.ID] = i + 1
		}
	}
	return out
}

func renumberSprints(ctx context.Context, fb *firestore.Client, projectID string) error {
	sprints, err := ListSprints(ctx, fb, projectID)
	if err != nil {
		return err
	}
	changes := sprintNumbers(sprints)
	if len(changes) == 0 {
		return nil
	}
	b := newBulk(ctx, fb)
	for id, n := range changes {
		b.update(sprintsRef(fb, projectID).Doc(id), []firestore.Update{{Path: "number", Value: n}})
	}
	return b.end()
}

// DeleteSprint soft-deletes a sprint and returns its items to the backlog.
func DeleteSprint(ctx context.Context, fb *firestore.Client, projectID, userID, sprintID string) error {
	sprint, err := GetSprint(ctx, fb, projectID, sprintID)
	if err != nil {
		return err
	}
	b := newBulk(ctx, fb)
	b.update(sprintsRef(fb, projectID).Doc(sprint.ID), []firestore.Update{{Path: "deleted", Value: true}})
	for t, ids := range map[model.ItemType][]string{
		model.ItemUserStory:   sprint.UserStoryIDs,
		model.ItemIssue:       sprint.IssueIDs,
		model.ItemBacklogItem: sprint.GenericItemIDs,
	} {
		for _, id := range ids {
			b.update(ItemsRef(fb, projectID, t).Doc(id), []firestore.Update{{Path: "sprintId", Value: ""}})
		}
	}
	if err := b.end(); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, sprint.ID, model.ItemSprint, model.ActionDelete)
	return renumberSprints(ctx, fb, projectID)
}

type SprintWithItems struct {
	Sprint         model.Sprint `json:"sprint"`
	BacklogItemIDs []string     `json:"backlogItemIds"`
}

type SprintPreviews struct {
	Sprints           []SprintWithItems        `json:"sprints"`
	UnassignedItemIDs []string                 `json:"unassignedItemIds"`
	BacklogItems      map[string]model.Preview `json:"backlogItems"`
}

func groupPreviews(sprints []model.Sprint, entries []backlogEntry) SprintPreviews {
	out := SprintPreviews{
		Sprints:           make([]SprintWithItems, 0, len(sprints)),
		UnassignedItemIDs: []string{},
		BacklogItems:      make(map[string]model.Preview, len(entries)),
	}
	sorted := append([]backlogEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ScrumID < sorted[j].ScrumID })

	bySprint := map[string][]string{}
	for _, e := range sorted {
		tagIDs := e.TagIDs
		if tagIDs == nil {
			tagIDs = []string{}
		}
		out.BacklogItems[e.ID] = model.Preview{
			ID:         e.ID,
			ItemType:   e.Type,
			ScrumID:    e.ScrumID,
			ScrumLabel: model.FormatScrumID(e.Type, e.ScrumID),
			Name:       e.Name,
			Size:       e.Size,
			SprintID:   e.SprintID,
			TagIDs:     tagIDs,
		}
		if e.SprintID == "" {
			out.UnassignedItemIDs = append(out.UnassignedItemIDs, e.ID)
			continue
		}
		bySprint[e.SprintID] = append(bySprint[e.SprintID], e.ID)
	}
	for _, s := range sprints {
		ids := bySprint[s.ID]
		if ids == nil {
			ids = []string{}
		}
		out.Sprints = append(out.Sprints, SprintWithItems{Sprint: s, BacklogItemIDs: ids})
	}
	return out
}

// BacklogPreviewsBySprint groups every live item by the sprint it belongs to.
func BacklogPreviewsBySprint(ctx context.Context, fb *firestore.Client, projectID string) (SprintPreviews, error) {
	sprints, err := ListSprints(ctx, fb, projectID)
	if err != nil {
		return SprintPreviews{}, err
	}
	entries, err := listBacklogEntries(ctx, fb, projectID)
	if err != nil {
		return SprintPreviews{}, err
	}
	return groupPreviews(sprints, entries), nil
}

// AssignItemsToSprint moves items into sprintID, or back to the backlog when
// it is empty.
func AssignItemsToSprint(ctx context.Context, fb *firestore.Client, projectID, userID string, req dto.AssignItemsRequest) error {
	if req.SprintID != "" {
		if _, err := GetSprint(ctx, fb, projectID, req.SprintID); err != nil {
			return err
		}
	}

	items := make([]backlogEntry, 0, len(req.Items))
	for _, ref := range req.Items {
		t := model.ItemType(ref.Type)
		item, err := getBacklogItem(ctx, fb, projectID, t, ref.ID)
		if err != nil {
			return err
		}
		items = append(items, backlogEntry{BacklogItem: item, Type: t})
	}

	b := newBulk(ctx, fb)
	for _, item := range items {
		b.update(ItemsRef(fb, projectID, item.Type).Doc(item.ID), []firestore.Update{{Path: "sprintId", Value: req.SprintID}})
		moveToSprint(b, fb, projectID, item.Type, item.ID, item.SprintID, req.SprintID)
	}
	if err := b.end(); err != nil {
		return err
	}
	for _, ref := range req.Items {
		logActivity(ctx, fb, projectID, userID, ref.ID, model.ItemType(ref.Type), model.ActionUpdate)
	}
	return nil
}
