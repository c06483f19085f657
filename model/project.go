package model

import "time"

const (
	DefaultProjectLogo         = "/icons/defaultProject.png"
	DefaultSprintDuration      = 7
	DefaultMaxSprintStoryPoint = 10000
	LogoSizeLimit              = 3 * 1024 * 1024
)

type Project struct {
	ID            string           `firestore:"-" json:"id"`
	Name          string           `firestore:"name" json:"name"`
	Description   string           `firestore:"description" json:"description"`
	Logo          string           `firestore:"logo" json:"logo"`
	Deleted       bool             `firestore:"deleted" json:"deleted"`
	ScrumCounters map[string]int64 `firestore:"scrumCounters,omitempty" json:"-"`
	CreatedAt     time.Time        `firestore:"createdAt" json:"createdAt"`
}

// ProjectMember lives in projects/{id}/users/{userId}.
type ProjectMember struct {
	UserID string `firestore:"-" json:"userId"`
	RoleID string `firestore:"roleId" json:"roleId"`
	Active bool   `firestore:"active" json:"active"`
}

type Settings struct {
	SprintDuration           int       `firestore:"sprintDuration" json:"sprintDuration"`
	MaximumSprintStoryPoints int       `firestore:"maximumSprintStoryPoints" json:"maximumSprintStoryPoints"`
	StoryPointSizes          []int     `firestore:"storyPointSizes" json:"storyPointSizes"`
	AIContext                AIContext `firestore:"aiContext" json:"aiContext"`
}

type AIContext struct {
	Text  string          `firestore:"text" json:"text"`
	Files []AIContextFile `firestore:"files" json:"files"`
	Links []AIContextLink `firestore:"links" json:"links"`
}

type AIContextFile struct {
	Name    string `firestore:"name" json:"name"`
	Type    string `firestore:"type" json:"type"`
	Content string `firestore:"content" json:"content"`
	Size    int    `firestore:"size" json:"size"`
}

type AIContextLink struct {
	Link    string `firestore:"link" json:"link"`
	Content string `firestore:"content" json:"content"`
}

func DefaultSettings() Settings {
	return Settings{
		SprintDuration:           DefaultSprintDuration,
		MaximumSprintStoryPoints: DefaultMaxSprintStoryPoint,
		StoryPointSizes:          append([]int(nil), DefaultStoryPointSizes...),
		AIContext: AIContext{
			Files: []AIContextFile{},
			Links: []AIContextLink{},
		},
	}
}

// String renders the AI context as prompt text.
func (a AIContext) String() string {
	s := "# PROJECT CONTEXT\n\n" + a.Text + "\n"
	for _, l := range a.Links {
		if l.Content == "" {
			continue
		}
		s += "\n## LINK " + l.Link + "\n\n" + l.Content + "\n"
	}
	for _, f := range a.Files {
		if f.Content == "" {
			continue
		}
		s += "\n## FILE " + f.Name + "\n\n" + f.Content + "\n"
	}
	return s
}

// ProjectStatus summarises the current sprint for the project list.
type ProjectStatus struct {
	ProjectID      string     `firestore:"projectId" json:"projectId"`
	Name           string     `firestore:"name" json:"name"`
	Logo           string     `firestore:"logo" json:"logo"`
	TaskCount      int        `firestore:"taskCount" json:"taskCount"`
	CompletedCount int        `firestore:"completedCount" json:"completedCount"`
	AssigneeIDs    []string   `firestore:"assigneeIds" json:"assigneeIds"`
	SprintNumber   int        `firestore:"sprintNumber" json:"sprintNumber,omitempty"`
	SprintEndDate  *time.Time `firestore:"sprintEndDate" json:"sprintEndDate,omitempty"`
}

// TopProjectsCache is stored in users/{uid}/cache/TopProjectsStatus.
type TopProjectsCache struct {
	Projects  []ProjectStatus `firestore:"projects" json:"projects"`
	FetchDate time.Time       `firestore:"fetchDate" json:"fetchDate"`
}

func (p *Project) SetID(id string) { p.ID = id }

func (m *ProjectMember) SetID(id string) { m.UserID = id }
