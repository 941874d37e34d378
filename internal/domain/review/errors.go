package review

import (
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 评论领域错误定义
var (
	// ErrReviewNotFound 评论不存在或不属于当前用户
	// 两种情况返回同一个错误，不向非作者暴露评论是否存在
	ErrReviewNotFound = apperrors.New(apperrors.ErrCodeReviewNotFound, "Review not found or not yours")

	// ErrDuplicateReview 同一用户重复评论同一本书
	ErrDuplicateReview = apperrors.New(apperrors.ErrCodeDuplicateReview, "Already reviewed this book")

	// ErrBookReference 评论的图书不存在(外键约束失败)
	ErrBookReference = apperrors.New(apperrors.ErrCodeInvalidReference, "Foreign key constraint failed on the field: bookId")

	// ErrUserReference 评论的用户不存在(令牌有效但用户已被删除)
	ErrUserReference = apperrors.New(apperrors.ErrCodeInvalidReference, "Foreign key constraint failed on the field: userId")

	// ErrInvalidRating 评分超出范围
	ErrInvalidRating = apperrors.Validation("rating must be an integer between 1 and 5")
)
