package dto

type TimeWindowQuery struct {
	Time string `form:"time" binding:"omitempty,oneof=Week Month Sprint"`
}
