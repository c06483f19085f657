package model

import "time"

type TeamProgress struct {
	TotalIssues           int       `firestore:"totalIssues" json:"totalIssues"`
	CompletedIssues       int       `firestore:"completedIssues" json:"completedIssues"`
	TotalUserStories      int       `firestore:"totalUserStories" json:"totalUserStories"`
	CompletedUserStories  int       `firestore:"completedUserStories" json:"completedUserStories"`
	TotalBacklogItems     int       `firestore:"totalBacklogItems" json:"totalBacklogItems"`
	CompletedBacklogItems int       `firestore:"completedBacklogItems" json:"completedBacklogItems"`
	TotalStoryPoints      int       `firestore:"totalStoryPoints" json:"totalStoryPoints"`
	CompletedStoryPoints  int       `firestore:"completedStoryPoints" json:"completedStoryPoints"`
	UpdatedAt             time.Time `firestore:"updatedAt" json:"updatedAt"`
}

type PersonalProgress struct {
	SprintID             string    `firestore:"sprintId" json:"sprintId"`
	TotalTasks           int       `firestore:"totalTasks" json:"totalTasks"`
	CompletedTasks       int       `firestore:"completedTasks" json:"completedTasks"`
	TotalStoryPoints     float64   `firestore:"totalStoryPoints" json:"totalStoryPoints"`
	CompletedStoryPoints float64   `firestore:"completedStoryPoints" json:"completedStoryPoints"`
	UpdatedAt            time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// RetrospectiveAnswers is one member's answers for one sprint.
type RetrospectiveAnswers struct {
	UserID    string    `firestore:"-" json:"userId"`
	Answers   []string  `firestore:"answers" json:"answers"`
	Happiness int       `firestore:"happiness" json:"happiness"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

const RetrospectiveQuestionCount = 3

// ProcessedRetrospective is the AI rewrite of a member's answers.
type ProcessedRetrospective struct {
	Answers           []string `json:"answers" validate:"required,len=3"`
	HappinessRating   int      `json:"happinessRating" validate:"min=1,max=10"`
	HappinessAnalysis string   `json:"happinessAnalysis" validate:"required"`
}

func (a *RetrospectiveAnswers) SetID(id string) { a.UserID = id }
