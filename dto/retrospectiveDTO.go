package dto

type RetrospectiveAnswerRequest struct {
	Index  int    `json:"index" binding:"min=0,max=2"`
	Answer string `json:"answer"`
}

type HappinessRequest struct {
	Happiness int `json:"happiness"`
}

type RetrospectiveAnswersRequest struct {
	Answers []string `json:"answers" binding:"required"`
}

type RetrospectiveReportRequest struct {
	Answers []string `json:"answers" binding:"required"`
	// Summarize stores the AI-corrected answers instead of the raw ones.
	// It defaults to true.
	Summarize *bool `json:"summarize"`
}
