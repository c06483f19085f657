package dto

import "time"

type SprintRequest struct {
	// Number is -1 for a new sprint.
	Number      int       `json:"number"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	EndDate     time.Time `json:"endDate" binding:"required"`
}

type ItemRef struct {
	ID   string `json:"id" binding:"required"`
	Type string `json:"type" binding:"required,oneof=US IS IT"`
}

type AssignItemsRequest struct {
	// SprintID is empty to move the items back to the backlog.
	SprintID string    `json:"sprintId"`
	Items    []ItemRef `json:"items" binding:"required,dive"`
}
