package model

import "time"

type Sprint struct {
	ID             string    `firestore:"-" json:"id"`
	Number         int       `firestore:"number" json:"number"`
	Description    string    `firestore:"description" json:"description"`
	StartDate      time.Time `firestore:"startDate" json:"startDate"`
	EndDate        time.Time `firestore:"endDate" json:"endDate"`
	Deleted        bool      `firestore:"deleted" json:"deleted"`
	UserStoryIDs   []string  `firestore:"userStoryIds" json:"userStoryIds"`
	IssueIDs       []string  `firestore:"issueIds" json:"issueIds"`
	GenericItemIDs []string  `firestore:"genericItemIds" json:"genericItemIds"`
}

// Active reports whether t falls inside the sprint, both ends inclusive.
func (s Sprint) Active(t time.Time) bool {
	return !t.Before(s.StartDate) && !t.After(s.EndDate)
}

// SprintItemField returns the sprint array holding ids of the given item type.
func SprintItemField(t ItemType) string {
	switch t {
	case ItemUserStory:
		return "userStoryIds"
	case ItemIssue:
		return "issueIds"
	case ItemBacklogItem:
		return "genericItemIds"
	}
	return ""
}

func (s *Sprint) SetID(id string) { s.ID = id }
