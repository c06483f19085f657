package dto

import "time"

type TaskRequest struct {
	Name          string     `json:"name" binding:"required"`
	Description   string     `json:"description"`
	StatusID      string     `json:"statusId"`
	AssigneeID    string     `json:"assigneeId"`
	DueDate       *time.Time `json:"dueDate"`
	Size          string     `json:"size" binding:"omitempty,oneof=XS S M L XL XXL"`
	DependencyIDs []string   `json:"dependencyIds"`
	RequiredByIDs []string   `json:"requiredByIds"`
}

type TaskStatusRequest struct {
	StatusID string `json:"statusId" binding:"required"`
}

type DeleteTasksRequest struct {
	TaskIDs []string `json:"taskIds" binding:"required,min=1"`
}
