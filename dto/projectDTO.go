package dto

type MemberInput struct {
	UserID string `json:"userId" binding:"required"`
	RoleID string `json:"roleId"`
}

// FileInput carries a document as a base64 data URL.
type FileInput struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type"`
	Content string `json:"content" binding:"required"`
	Size    int    `json:"size"`
}

type AIContextInput struct {
	Text  string      `json:"text"`
	Links []string    `json:"links" binding:"omitempty,dive,url"`
	Files []FileInput `json:"files" binding:"omitempty,dive"`
}

type CreateProjectRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Logo        string         `json:"logo"`
	Users       []MemberInput  `json:"users" binding:"omitempty,dive"`
	Context     AIContextInput `json:"context"`
}

type ModifyProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

type TopProjectsQuery struct {
	Count int `form:"count" binding:"omitempty,min=1,max=20"`
}
