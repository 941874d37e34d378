package review

import (
	"time"
)

// 评分范围
const (
	MinRating = 1
	MaxRating = 5
)

// Review 评论实体
// 同一用户对同一本书只能有一条评论(数据库唯一索引 user_id + book_id)
type Review struct {
	ID        uint
	Rating    int
	Comment   string
	UserID    uint
	BookID    uint
	Username  string // 仅在图书详情中填充
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReview 创建新评论(工厂方法)
func NewReview(bookID, userID uint, rating int, comment string) *Review {
	now := time.Now()
	return &Review{
		Rating:    rating,
		Comment:   comment,
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOwnedBy 检查评论是否属于指定用户
func (r *Review) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// Apply 部分更新，nil字段保持不变
func (r *Review) Apply(rating *int, comment *string) error {
	if rating != nil {
		if err := ValidateRating(*rating); err != nil {
			return err
		}
		r.Rating = *rating
	}
	if comment != nil {
		r.Comment = *comment
	}
	r.UpdatedAt = time.Now()
	return nil
}

// ValidateRating 评分必须是1-5的整数
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}
