package dto

type SearchUsersQuery struct {
	Query string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
	// Photo is a base64 data URL. Anything else keeps the current avatar.
	Photo string `json:"photo"`
}

type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type UpdateMemberRoleRequest struct {
	RoleID string `json:"roleId" binding:"required"`
}
