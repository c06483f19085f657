package dto

type ChatMessage struct {
	Role        string `json:"role" binding:"required"`
	Content     string `json:"content"`
	Explanation string `json:"explanation"`
}

type AutocompletionRequest struct {
	Messages       []ChatMessage  `json:"messages" binding:"required,dive"`
	RelatedContext map[string]any `json:"relatedContext"`
}

type GenerateREQRequest struct {
	Context string `json:"context" binding:"required"`
}

type TokenCountRequest struct {
	Text string `json:"text"`
}

type FileTextRequest struct {
	Base64 string `json:"base64" binding:"required"`
}
