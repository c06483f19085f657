package model

import "time"

// BasicInfo is shared by every scrum-numbered document.
type BasicInfo struct {
	ID          string    `firestore:"-" json:"id"`
	ScrumID     int       `firestore:"scrumId" json:"scrumId"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description" json:"description"`
	Deleted     bool      `firestore:"deleted" json:"deleted"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
}

type BacklogItem struct {
	BasicInfo
	SprintID   string   `firestore:"sprintId" json:"sprintId"`
	TagIDs     []string `firestore:"tagIds" json:"tagIds"`
	Size       Size     `firestore:"size" json:"size"`
	PriorityID string   `firestore:"priorityId" json:"priorityId"`
	// StatusID is empty when the status follows the item's tasks.
	StatusID string `firestore:"statusId" json:"statusId"`
}

type UserStory struct {
	BacklogItem
	EpicID             string   `firestore:"epicId" json:"epicId"`
	AcceptanceCriteria string   `firestore:"acceptanceCriteria" json:"acceptanceCriteria"`
	DependencyIDs      []string `firestore:"dependencyIds" json:"dependencyIds"`
	RequiredByIDs      []string `firestore:"requiredByIds" json:"requiredByIds"`
}

type Issue struct {
	BacklogItem
	RelatedUserStoryID string `firestore:"relatedUserStoryId" json:"relatedUserStoryId"`
	StepsToRecreate    string `firestore:"stepsToRecreate" json:"stepsToRecreate"`
}

type Epic struct {
	BasicInfo
}

type Requirement struct {
	BasicInfo
	Size               Size   `firestore:"size" json:"size"`
	PriorityID         string `firestore:"priorityId" json:"priorityId"`
	RequirementTypeID  string `firestore:"requirementTypeId" json:"requirementTypeId"`
	RequirementFocusID string `firestore:"requirementFocusId" json:"requirementFocusId"`
}

// RequirementRow is a requirement joined with its tags for the table view.
type RequirementRow struct {
	Requirement
	ScrumLabel       string `json:"scrumLabel"`
	Priority         Tag    `json:"priority"`
	RequirementType  Tag    `json:"requirementType"`
	RequirementFocus Tag    `json:"requirementFocus"`
}

// BacklogRow is the common table row for user stories, issues and generic
// items.
type BacklogRow struct {
	ID            string    `json:"id"`
	ItemType      ItemType  `json:"itemType"`
	ScrumID       int       `json:"scrumId"`
	ScrumLabel    string    `json:"scrumLabel"`
	Name          string    `json:"name"`
	Size          Size      `json:"size"`
	Priority      *Tag      `json:"priority,omitempty"`
	Tags          []Tag     `json:"tags"`
	SprintID      string    `json:"sprintId"`
	SprintNumber  int       `json:"sprintNumber,omitempty"`
	TaskCount     int       `json:"taskCount"`
	TasksDone     int       `json:"tasksDone"`
	EpicScrumID   int       `json:"epicScrumId,omitempty"`
	AssigneeIDs   []string  `json:"assigneeIds"`
	StatusID      string    `json:"statusId"`
	CreatedAt     time.Time `json:"createdAt"`
	DependencyIDs []string  `json:"dependencyIds,omitempty"`
}

// Preview is the minimal view of a backlog item used by sprint planning.
type Preview struct {
	ID         string   `json:"id"`
	ItemType   ItemType `json:"itemType"`
	ScrumID    int      `json:"scrumId"`
	ScrumLabel string   `json:"scrumLabel"`
	Name       string   `json:"name"`
	Size       Size     `json:"size"`
	SprintID   string   `json:"sprintId"`
	TagIDs     []string `json:"tagIds"`
}

func (b *BasicInfo) SetID(id string) { b.ID = id }

// UserStoryDetail is a user story with its references resolved.
type UserStoryDetail struct {
	UserStory
	Epic         *Epic     `json:"epic,omitempty"`
	Priority     *Tag      `json:"priority,omitempty"`
	Status       StatusTag `json:"status"`
	Tags         []Tag     `json:"tags"`
	Dependencies []Preview `json:"dependencies"`
	RequiredBy   []Preview `json:"requiredBy"`
}

type IssueDetail struct {
	Issue
	Priority         *Tag      `json:"priority,omitempty"`
	Status           StatusTag `json:"status"`
	Tags             []Tag     `json:"tags"`
	RelatedUserStory *Preview  `json:"relatedUserStory,omitempty"`
}

type BacklogItemDetail struct {
	BacklogItem
	Priority *Tag      `json:"priority,omitempty"`
	Status   StatusTag `json:"status"`
	Tags     []Tag     `json:"tags"`
}
