package model

import "time"

type TimeWindow string

const (
	WindowWeek   TimeWindow = "Week"
	WindowMonth  TimeWindow = "Month"
	WindowSprint TimeWindow = "Sprint"
)

func (w TimeWindow) Valid() bool {
	return w == WindowWeek || w == WindowMonth || w == WindowSprint
}

type Productivity struct {
	Time                 TimeWindow `firestore:"time" json:"time"`
	UserStoriesCompleted int        `firestore:"userStoriesCompleted" json:"userStoriesCompleted"`
	UserStoriesTotal     int        `firestore:"userStoriesTotal" json:"userStoriesTotal"`
	IssuesCompleted      int        `firestore:"issuesCompleted" json:"issuesCompleted"`
	IssuesTotal          int        `firestore:"issuesTotal" json:"issuesTotal"`
	FetchDate            time.Time  `firestore:"fetchDate" json:"fetchDate"`
}

// ProductivityCache is stored in projects/{id}/performance/productivity,
// one entry per time window.
type ProductivityCache struct {
	Cached []Productivity `firestore:"cached" json:"cached"`
}

// DayActivity counts a user's activity for one calendar day.
type DayActivity struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ContributionOverview counts a user's activity per item kind.
type ContributionOverview struct {
	Tasks       int `json:"Tasks"`
	Issues      int `json:"Issues"`
	UserStories int `json:"User Stories"`
}

type BurndownPoint struct {
	SprintDay   int     `json:"sprintDay"`
	StoryPoints float64 `json:"storyPoints"`
	SeriesType  int     `json:"seriesType"` // 0 ideal, 1 actual
}

// BurndownHistory is the number of tasks completed by the end of a day.
type BurndownHistory struct {
	Day            int `json:"day"`
	CompletedCount int `json:"completedCount"`
}
