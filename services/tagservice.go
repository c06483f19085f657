package services

import (
	"context"
	"slices"
	"strings"

	"tenor/apperr"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

func ListTags(ctx context.Context, fb *firestore.Client, projectID, collection string) ([]model.Tag, error) {
	return listDocs[model.Tag](ctx, active(TagsRef(fb, projectID, collection)).OrderBy("name", firestore.Asc))
}

func GetTag(ctx context.Context, fb *firestore.Client, projectID, collection, tagID string) (model.Tag, error) {
	return getDoc[model.Tag](ctx, TagsRef(fb, projectID, collection).Doc(tagID), "Tag not found")
}

// tagsByID returns every tag of a collection, deleted ones included, so
// old items still render their labels.
func tagsByID(ctx context.Context, fb *firestore.Client, projectID, collection string) (map[string]model.Tag, error) {
	tags, err := listDocs[model.Tag](ctx, TagsRef(fb, projectID, collection).Query)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Tag, len(tags))
	for _, t := range tags {
		out[t.ID] = t
	}
	return out, nil
}

func CreateTag(ctx context.Context, fb *firestore.Client, projectID, collection string, tag model.Tag) (model.Tag, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return tag, apperr.BadRequest("Tag name is required")
	}
	tag.ID = uuid.New().String()
	tag.Deleted = false
	if _, err := TagsRef(fb, projectID, collection).Doc(tag.ID).Set(ctx, tag); err != nil {
		return tag, err
	}
	return tag, nil
}

func ModifyTag(ctx context.Context, fb *firestore.Client, projectID, collection, tagID string, tag model.Tag) (model.Tag, error) {
	ref := TagsRef(fb, projectID, collection).Doc(tagID)
	if _, err := getDoc[model.Tag](ctx, ref, "Tag not found"); err != nil {
		return tag, err
	}
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "name", Value: tag.Name},
		{Path: "color", Value: tag.Color},
	})
	tag.ID = tagID
	return tag, err
}

func DeleteTag(ctx context.Context, fb *firestore.Client, projectID, collection, tagID string) error {
	ref := TagsRef(fb, projectID, collection).Doc(tagID)
	if _, err := getDoc[model.Tag](ctx, ref, "Tag not found"); err != nil {
		return err
	}
	_, err := ref.Update(ctx, []firestore.Update{{Path: "deleted", Value: true}})
	return err
}

// FindOrCreateTag returns the tag whose name matches case-insensitively,
// creating it with a random color when missing. Used for AI output.
func FindOrCreateTag(ctx context.Context, fb *firestore.Client, projectID, collection, name string) (model.Tag, error) {
	tags, err := ListTags(ctx, fb, projectID, collection)
	if err != nil {
		return model.Tag{}, err
	}
	for _, t := range tags {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return CreateTag(ctx, fb, projectID, collection, model.Tag{Name: name, Color: RandomColor()})
}

// ListStatusTypes returns the kanban columns in board order.
func ListStatusTypes(ctx context.Context, fb *firestore.Client, projectID string) ([]model.StatusTag, error) {
	return listDocs[model.StatusTag](ctx, active(TagsRef(fb, projectID, StatusTypes)).OrderBy("orderIndex", firestore.Asc))
}

func GetStatusType(ctx context.Context, fb *firestore.Client, projectID, statusID string) (model.StatusTag, error) {
	return getDoc[model.StatusTag](ctx, TagsRef(fb, projectID, StatusTypes).Doc(statusID), "Status not found")
}

// CreateStatusType appends a column at the end of the board.
func CreateStatusType(ctx context.Context, fb *firestore.Client, projectID string, status model.StatusTag) (model.StatusTag, error) {
	if strings.TrimSpace(status.Name) == "" {
		return status, apperr.BadRequest("Status name is required")
	}
	existing, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return status, err
	}
	if err := validateStatusName(existing, "", status.Name); err != nil {
		return status, err
	}
	status.ID = uuid.New().String()
	status.OrderIndex = len(existing)
	status.Deleted = false
	_, err = TagsRef(fb, projectID, StatusTypes).Doc(status.ID).Set(ctx, status)
	return status, err
}

func ModifyStatusType(ctx context.Context, fb *firestore.Client, projectID, statusID string, status model.StatusTag) (model.StatusTag, error) {
	ref := TagsRef(fb, projectID, StatusTypes).Doc(statusID)
	current, err := getDoc[model.StatusTag](ctx, ref, "Status not found")
	if err != nil {
		return status, err
	}
	existing, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return status, err
	}
	if err := validateStatusName(existing, statusID, status.Name); err != nil {
		return status, err
	}
	_, err = ref.Update(ctx, []firestore.Update{
		{Path: "name", Value: status.Name},
		{Path: "color", Value: status.Color},
		{Path: "marksTaskAsDone", Value: status.MarksTaskAsDone},
	})
	current.Name, current.Color, current.MarksTaskAsDone = status.Name, status.Color, status.MarksTaskAsDone
	return current, err
}

var protectedStatusNames = []string{
	model.TodoTagName,
	model.DoingTagName,
	model.DoneTagName,
	model.AwaitsReviewTagName,
}

func isProtectedStatus(name string) bool {
	name = strings.TrimSpace(name)
	for _, p := range protectedStatusNames {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// validateStatusName rejects duplicate names and keeps the built-in
// columns from being renamed or shadowed. id is empty for a new status.
func validateStatusName(existing []model.StatusTag, id, name string) error {
	for _, s := range existing {
		if s.ID != id {
			continue
		}
		if s.Name == name {
			return nil
		}
		if isProtectedStatus(s.Name) {
			return apperr.BadRequest("Status %q cannot be renamed", s.Name)
		}
	}
	if isProtectedStatus(name) {
		return apperr.BadRequest("Status name %q is reserved", name)
	}
	for _, s := range existing {
		if s.ID != id && strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name)) {
			return apperr.BadRequest("A status named %q already exists", name)
		}
	}
	return nil
}

// ReorderStatusTypes assigns orderIndex by position in ids.
func ReorderStatusTypes(ctx context.Context, fb *firestore.Client, projectID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	b := newBulk(ctx, fb)
	for i, id := range ids {
		b.update(TagsRef(fb, projectID, StatusTypes).Doc(id), []firestore.Update{{Path: "orderIndex", Value: i}})
	}
	return b.end()
}

// DeleteStatusType soft-deletes a column and closes the gap it leaves.
func DeleteStatusType(ctx context.Context, fb *firestore.Client, projectID, statusID string) error {
	ref := TagsRef(fb, projectID, StatusTypes).Doc(statusID)
	current, err := getDoc[model.StatusTag](ctx, ref, "Status not found")
	if err != nil {
		return err
	}
	if isProtectedStatus(current.Name) {
		return apperr.BadRequest("Status %q cannot be deleted", current.Name)
	}
	if _, err := ref.Update(ctx, []firestore.Update{
		{Path: "deleted", Value: true},
		{Path: "orderIndex", Value: -1},
	}); err != nil {
		return err
	}

	remaining, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(remaining))
	for _, s := range remaining {
		ids = append(ids, s.ID)
	}
	return ReorderStatusTypes(ctx, fb, projectID, ids)
}

// DefaultRequirementType prefers "Functional", then the first type by name.
func DefaultRequirementType(tags []model.Tag) (model.Tag, bool) {
	if len(tags) == 0 {
		return model.Tag{}, false
	}
	for _, t := range tags {
		if t.Name == model.DefaultRequirementTypeName {
			return t, true
		}
	}
	sorted := slices.Clone(tags)
	slices.SortFunc(sorted, func(a, b model.Tag) int { return strings.Compare(a.Name, b.Name) })
	return sorted[0], true
}

// StatusByName finds a column by its name, ignoring case.
func StatusByName(statuses []model.StatusTag, name string) (model.StatusTag, bool) {
	for _, s := range statuses {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return model.StatusTag{}, false
}
