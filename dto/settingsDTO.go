package dto

type TagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"`
}

type StatusTypeRequest struct {
	Name            string `json:"name" binding:"required"`
	Color           string `json:"color" binding:"required"`
	MarksTaskAsDone bool   `json:"marksTaskAsDone"`
}

type ReorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type StoryPointSizesRequest struct {
	Sizes []int `json:"sizes" binding:"required,len=6,dive,min=0"`
}

type ScrumSettingsRequest struct {
	SprintDuration           int `json:"sprintDuration" binding:"required,min=1,max=365"`
	MaximumSprintStoryPoints int `json:"maximumSprintStoryPoints" binding:"omitempty,min=1"`
}

type RoleRequest struct {
	Label string `json:"label" binding:"required"`
}

type RolePermissionRequest struct {
	Flag  string `json:"flag" binding:"required"`
	Level *int   `json:"level" binding:"required,min=0,max=2"`
}

type AIContextTextRequest struct {
	Text string `json:"text"`
}

type AIContextLinksRequest struct {
	Links []string `json:"links" binding:"required,dive,url"`
}

type AIContextFilesRequest struct {
	Files []FileInput `json:"files" binding:"required,dive"`
}

type RemoveLinkRequest struct {
	Link string `json:"link" binding:"required"`
}

type RemoveFileRequest struct {
	Name string `json:"name" binding:"required"`
}
