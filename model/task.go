package model

import "time"

type Task struct {
	BasicInfo
	StatusID         string     `firestore:"statusId" json:"statusId"`
	AssigneeID       string     `firestore:"assigneeId" json:"assigneeId"`
	DueDate          *time.Time `firestore:"dueDate" json:"dueDate"`
	FinishedDate     *time.Time `firestore:"finishedDate" json:"finishedDate"`
	Size             Size       `firestore:"size" json:"size"`
	ItemType         ItemType   `firestore:"itemType" json:"itemType"`
	ItemID           string     `firestore:"itemId" json:"itemId"`
	DependencyIDs    []string   `firestore:"dependencyIds" json:"dependencyIds"`
	RequiredByIDs    []string   `firestore:"requiredByIds" json:"requiredByIds"`
	StatusChangeDate *time.Time `firestore:"statusChangeDate" json:"statusChangeDate"`
	AssignedDate     *time.Time `firestore:"assignedDate" json:"assignedDate"`
}

// TaskPreview is what AI generation returns before the user accepts it.
type TaskPreview struct {
	Name        string `json:"name" jsonschema:"description=Short task title" validate:"required"`
	Description string `json:"description" jsonschema:"description=Markdown description of the work" validate:"required"`
	Size        Size   `json:"size" jsonschema:"enum=XS,enum=S,enum=M,enum=L,enum=XL,enum=XXL" validate:"omitempty,oneof=XS S M L XL XXL"`
}

type TaskDetail struct {
	Task
	ScrumLabel   string    `json:"scrumLabel"`
	Status       StatusTag `json:"status"`
	Dependencies []Preview `json:"dependencies"`
	RequiredBy   []Preview `json:"requiredBy"`
}

// TaskRow is a task in the per-item task table.
type TaskRow struct {
	ID         string     `json:"id"`
	ScrumID    int        `json:"scrumId"`
	ScrumLabel string     `json:"scrumLabel"`
	Name       string     `json:"name"`
	Status     StatusTag  `json:"status"`
	AssigneeID string     `json:"assigneeId"`
	Size       Size       `json:"size"`
	DueDate    *time.Time `json:"dueDate"`
}
