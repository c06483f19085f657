package model

import "time"

type ActivityAction string

const (
	ActionCreate ActivityAction = "create"
	ActionUpdate ActivityAction = "update"
	ActionDelete ActivityAction = "delete"
)

// Activity is appended to projects/{id}/activity on every backlog write.
type Activity struct {
	ID     string         `firestore:"-" json:"id"`
	ItemID string         `firestore:"itemId" json:"itemId"`
	UserID string         `firestore:"userId" json:"userId"`
	Type   ItemType       `firestore:"type" json:"type"`
	Date   time.Time      `firestore:"date" json:"date"`
	Action ActivityAction `firestore:"action" json:"action"`
}

// ActivityDetail joins an activity with the item it points at.
type ActivityDetail struct {
	Activity
	ScrumLabel string `json:"scrumLabel"`
	Name       string `json:"name"`
}

func (a *Activity) SetID(id string) { a.ID = id }
