package dto

// CreateReviewRequest 发表评论请求
type CreateReviewRequest struct {
	Rating  int    `json:"rating" example:"5"` // 1-5
	Comment string `json:"comment" example:"A masterpiece"`
}

// UpdateReviewRequest 修改评论请求，未提供的字段保持不变
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" example:"4"`
	Comment *string `json:"comment,omitempty" example:"Still great on a re-read"`
}
