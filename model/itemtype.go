package model

import "fmt"

// ItemType is the two-letter code used in activity logs and scrum ids.
type ItemType string

const (
	ItemRequirement ItemType = "RE"
	ItemUserStory   ItemType = "US"
	ItemIssue       ItemType = "IS"
	ItemBacklogItem ItemType = "IT"
	ItemEpic        ItemType = "EP"
	ItemTask        ItemType = "TS"
	ItemSprint      ItemType = "SP"
	ItemProject     ItemType = "PJ"
)

// Collection returns the project subcollection holding items of this type.
func (t ItemType) Collection() string {
	switch t {
	case ItemRequirement:
		return "requirements"
	case ItemUserStory:
		return "userStories"
	case ItemIssue:
		return "issues"
	case ItemBacklogItem:
		return "backlogItems"
	case ItemEpic:
		return "epics"
	case ItemTask:
		return "tasks"
	case ItemSprint:
		return "sprints"
	}
	return ""
}

// Parent reports whether tasks may hang off items of this type.
func (t ItemType) Parent() bool {
	return t == ItemUserStory || t == ItemIssue || t == ItemBacklogItem
}

// FormatScrumID renders ids like US03 or "Sprint 2".
func FormatScrumID(t ItemType, n int) string {
	switch t {
	case ItemEpic:
		if n == 0 {
			return "No Epic"
		}
	case ItemSprint:
		return fmt.Sprintf("Sprint %d", n)
	case ItemProject:
		return ""
	}
	return fmt.Sprintf("%s%02d", t, n)
}
