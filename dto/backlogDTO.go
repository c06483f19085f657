package dto

type RequirementRequest struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description"`
	Size               string `json:"size" binding:"omitempty,oneof=XS S M L XL XXL"`
	PriorityID         string `json:"priorityId"`
	RequirementTypeID  string `json:"requirementTypeId"`
	RequirementFocusID string `json:"requirementFocusId"`
}

type EpicRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// BacklogItemRequest holds the fields shared by user stories, issues and
// generic backlog items.
type BacklogItemRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Size        string   `json:"size" binding:"omitempty,oneof=XS S M L XL XXL"`
	PriorityID  string   `json:"priorityId"`
	TagIDs      []string `json:"tagIds"`
	SprintID    string   `json:"sprintId"`
	StatusID    string   `json:"statusId"`
}

type UserStoryRequest struct {
	BacklogItemRequest
	EpicID             string   `json:"epicId"`
	AcceptanceCriteria string   `json:"acceptanceCriteria"`
	DependencyIDs      []string `json:"dependencyIds"`
	RequiredByIDs      []string `json:"requiredByIds"`
}

type IssueRequest struct {
	BacklogItemRequest
	RelatedUserStoryID string `json:"relatedUserStoryId"`
	StepsToRecreate    string `json:"stepsToRecreate"`
}

type TagsRequest struct {
	TagIDs []string `json:"tagIds"`
}

type RelatedUserStoryRequest struct {
	UserStoryID string `json:"userStoryId"`
}

type DependencyRequest struct {
	DependencyID string `json:"dependencyId" binding:"required"`
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Amount int    `json:"amount" binding:"omitempty,min=1,max=20"`
}
