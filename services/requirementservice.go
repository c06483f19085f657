package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// requirementTags are the lookups a requirement row needs.
type requirementTags struct {
	priorities map[string]model.Tag
	types      map[string]model.Tag
	focuses    map[string]model.Tag
}

func loadRequirementTags(ctx context.Context, fb *firestore.Client, projectID string) (*requirementTags, error) {
	t := &requirementTags{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		t.priorities, err = tagsByID(gctx, fb, projectID, PriorityTypes)
		return err
	})
	g.Go(func() (err error) {
		t.types, err = tagsByID(gctx, fb, projectID, RequirementTypes)
		return err
	})
	g.Go(func() (err error) {
		t.focuses, err = tagsByID(gctx, fb, projectID, RequirementFocus)
		return err
	})
	return t, g.Wait()
}

func lookupTag(tags map[string]model.Tag, id string) model.Tag {
	if id == "" {
		return model.Tag{}
	}
	if t, ok := tags[id]; ok {
		return t
	}
	return model.NoTag
}

func (t *requirementTags) row(r model.Requirement) model.RequirementRow {
	return model.RequirementRow{
		Requirement:      r,
		ScrumLabel:       model.FormatScrumID(model.ItemRequirement, r.ScrumID),
		Priority:         lookupTag(t.priorities, r.PriorityID),
		RequirementType:  lookupTag(t.types, r.RequirementTypeID),
		RequirementFocus: lookupTag(t.focuses, r.RequirementFocusID),
	}
}

// RequirementTable lists live requirements with their tags, by scrum id.
func RequirementTable(ctx context.Context, fb *firestore.Client, projectID string) ([]model.RequirementRow, error) {
	reqs, err := listDocs[model.Requirement](ctx, active(ItemsRef(fb, projectID, model.ItemRequirement)).OrderBy("scrumId", firestore.Asc))
	if err != nil {
		return nil, err
	}
	tags, err := loadRequirementTags(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]model.RequirementRow, len(reqs))
	for i, r := range reqs {
		out[i] = tags.row(r)
	}
	return out, nil
}

func GetRequirement(ctx context.Context, fb *firestore.Client, projectID, id string) (model.Requirement, error) {
	r, err := getDoc[model.Requirement](ctx, ItemsRef(fb, projectID, model.ItemRequirement).Doc(id), "Requirement not found")
	if err == nil && r.Deleted {
		return r, apperr.NotFound("Requirement not found")
	}
	return r, err
}

// CreateOrModifyRequirement creates a requirement when id is empty. A
// missing type falls back to the project's default requirement type.
func CreateOrModifyRequirement(ctx context.Context, fb *firestore.Client, projectID, userID, id string, req dto.RequirementRequest) (model.Requirement, error) {
	typeID := req.RequirementTypeID
	if typeID == "" {
		types, err := ListTags(ctx, fb, projectID, RequirementTypes)
		if err != nil {
			return model.Requirement{}, err
		}
		if def, ok := DefaultRequirementType(types); ok {
			typeID = def.ID
		}
	}

	if id != "" {
		current, err := GetRequirement(ctx, fb, projectID, id)
		if err != nil {
			return current, err
		}
		_, err = ItemsRef(fb, projectID, model.ItemRequirement).Doc(id).Update(ctx, []firestore.Update{
			{Path: "name", Value: req.Name},
			{Path: "description", Value: req.Description},
			{Path: "size", Value: req.Size},
			{Path: "priorityId", Value: req.PriorityID},
			{Path: "requirementTypeId", Value: typeID},
			{Path: "requirementFocusId", Value: req.RequirementFocusID},
		})
		if err != nil {
			return current, err
		}
		logActivity(ctx, fb, projectID, userID, id, model.ItemRequirement, model.ActionUpdate)
		current.Name, current.Description, current.Size = req.Name, req.Description, model.Size(req.Size)
		current.PriorityID, current.RequirementTypeID, current.RequirementFocusID = req.PriorityID, typeID, req.RequirementFocusID
		return current, nil
	}

	r := model.Requirement{
		BasicInfo: model.BasicInfo{
			Name:        req.Name,
			Description: req.Description,
			CreatedAt:   time.Now(),
		},
		Size:               model.Size(req.Size),
		PriorityID:         req.PriorityID,
		RequirementTypeID:  typeID,
		RequirementFocusID: req.RequirementFocusID,
	}
	newID, scrumID, err := createNumbered(ctx, fb, projectID, model.ItemRequirement, func(n int) any {
		r.ScrumID = n
		return r
	})
	if err != nil {
		return r, err
	}
	r.ID, r.ScrumID = newID, scrumID
	logActivity(ctx, fb, projectID, userID, newID, model.ItemRequirement, model.ActionCreate)
	return r, nil
}

func DeleteRequirement(ctx context.Context, fb *firestore.Client, projectID, userID, id string) error {
	if _, err := GetRequirement(ctx, fb, projectID, id); err != nil {
		return err
	}
	if _, err := ItemsRef(fb, projectID, model.ItemRequirement).Doc(id).Update(ctx, []firestore.Update{{Path: "deleted", Value: true}}); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemRequirement, model.ActionDelete)
	return nil
}

// tagByIDOrName accepts either a tag id or its name, since generated
// content does not always use ids.
func tagByIDOrName(tags map[string]model.Tag, key string) (model.Tag, bool) {
	if key == "" {
		return model.Tag{}, false
	}
	if t, ok := tags[key]; ok && !t.Deleted {
		return t, true
	}
	for _, t := range tagList(tags) {
		if !t.Deleted && strings.EqualFold(t.Name, key) {
			return t, true
		}
	}
	return model.Tag{}, false
}

func requirementsContext(rows []model.RequirementRow) string {
	var sb strings.Builder
	sb.WriteString("# EXISTING REQUIREMENTS\n\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "- id: %s\n- name: %s\n- description: %s\n", r.ID, r.Name, r.Description)
		if r.Priority.Name != "" {
			fmt.Fprintf(&sb, "- priorityId: %s\n", r.Priority.Name)
		}
		fmt.Fprintf(&sb, "- typeId: %s\n", r.RequirementType.Name)
		if r.RequirementFocus.Name != "" {
			fmt.Fprintf(&sb, "- focus: %s\n", r.RequirementFocus.Name)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

const requirementInstructions = `Generate %d requirements for the mentioned software project. Do NOT include any identifier in the name like "Requirement 1", just use a normal title. For the requirement focus, use one of the available focus types, or create a new one if it makes sense, just give it a short name (maximum 3 words). Be vague with the requirement focus so that it can apply to multiple requirements, for example 'Core functionality', 'Security', 'Performance', 'Website' or 'Mobile app'. For the requirement type, always use one of the available types. Use realistic statistics in the description where appropriate and keep it to at most 4 sentences. For the priorityId, use the id of one of the provided priorities, NOT the name like "P0". Prioritize functional requirements over non-functional ones unless the user specifies otherwise or there are already too many functional requirements.`

// GenerateRequirements asks the model for new requirements. They are not
// stored; missing focus tags are created so the client can save them.
func GenerateRequirements(ctx context.Context, fb *firestore.Client, ai *AIClient, projectID string, amount int, prompt string) ([]model.RequirementRow, error) {
	if amount <= 0 {
		amount = 1
	}
	header, err := ProjectContextHeader(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	rows, err := RequirementTable(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	tags, err := loadRequirementTags(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}

	full := strings.Join([]string{
		header,
		"Given the following context, follow the instructions below to the best of your ability.",
		requirementsContext(rows),
		tagContext("Priority tags", tagList(tags.priorities)),
		tagContext("Existing requirement focus", tagList(tags.focuses)),
		tagContext("Existing requirement types", tagList(tags.types)),
		userPrompt("requirements", prompt),
		fmt.Sprintf(requirementInstructions, amount),
	}, "\n\n")

	generated, err := GenerateJSON[[]model.RequirementPreview](ctx, ai, full)
	if err != nil {
		return nil, err
	}

	defaultType, _ := DefaultRequirementType(tagList(tags.types))
	out := make([]model.RequirementRow, 0, len(generated))
	for _, g := range generated {
		focus, ok := tagByIDOrName(tags.focuses, g.RequirementFocus)
		if !ok {
			focus, err = CreateTag(ctx, fb, projectID, RequirementFocus, model.Tag{Name: g.RequirementFocus, Color: RandomColor()})
			if err != nil {
				return nil, err
			}
			tags.focuses[focus.ID] = focus
		}
		reqType, ok := tagByIDOrName(tags.types, g.RequirementTypeID)
		if !ok {
			reqType = defaultType
		}
		priority, _ := tagByIDOrName(tags.priorities, g.PriorityID)

		out = append(out, model.RequirementRow{
			Requirement: model.Requirement{
				BasicInfo: model.BasicInfo{
					ID:          uuid.New().String(),
					ScrumID:     -1,
					Name:        g.Name,
					Description: g.Description,
				},
				Size:               g.Size,
				PriorityID:         priority.ID,
				RequirementTypeID:  reqType.ID,
				RequirementFocusID: focus.ID,
			},
			Priority:         priority,
			RequirementType:  reqType,
			RequirementFocus: focus,
		})
	}
	return out, nil
}
