package model

// RequirementPreview is a requirement as returned by AI generation.
type RequirementPreview struct {
	Name              string `json:"name" jsonschema:"description=Short requirement title without numbering" validate:"required"`
	Description       string `json:"description" jsonschema:"description=At most four sentences" validate:"required"`
	Size              Size   `json:"size" jsonschema:"enum=XS,enum=S,enum=M,enum=L,enum=XL,enum=XXL" validate:"omitempty,oneof=XS S M L XL XXL"`
	PriorityID        string `json:"priorityId" jsonschema:"description=Id of one of the listed priorities"`
	RequirementTypeID string `json:"requirementTypeId" jsonschema:"description=Id of one of the listed requirement types" validate:"required"`
	RequirementFocus  string `json:"requirementFocus" jsonschema:"description=Name of a listed focus or a new one of at most three words" validate:"required"`
}

// UserStoryPreview is a user story as returned by AI generation.
type UserStoryPreview struct {
	Name               string   `json:"name" jsonschema:"description=Short user story title" validate:"required"`
	Description        string   `json:"description" jsonschema:"description=As a ... I want ... so that ..." validate:"required"`
	AcceptanceCriteria string   `json:"acceptanceCriteria" jsonschema:"description=Markdown list of acceptance criteria" validate:"required"`
	Size               Size     `json:"size" jsonschema:"enum=XS,enum=S,enum=M,enum=L,enum=XL,enum=XXL" validate:"omitempty,oneof=XS S M L XL XXL"`
	PriorityID         string   `json:"priorityId" jsonschema:"description=Id of one of the listed priorities"`
	EpicID             string   `json:"epicId" jsonschema:"description=Id of one of the listed epics or empty"`
	TagIDs             []string `json:"tagIds" jsonschema:"description=Ids of listed backlog tags"`
	DependencyIDs      []string `json:"dependencyIds" jsonschema:"description=Ids of existing user stories this one depends on"`
	RequiredByIDs      []string `json:"requiredByIds" jsonschema:"description=Ids of existing user stories that depend on this one"`
}

// Autocompletion is the assistant reply for in-editor completion.
type Autocompletion struct {
	AssistantMessage string `json:"assistant_message" jsonschema:"description=Brief description of the changes" validate:"required"`
	Autocompletion   string `json:"autocompletion" jsonschema:"description=The response to the user's message" validate:"required"`
}

// RequirementList is what the standalone requirement proxy returns.
type RequirementList struct {
	Functional    []string `json:"functional" validate:"required,min=1"`
	NonFunctional []string `json:"nonFunctional" validate:"required,min=1"`
}
