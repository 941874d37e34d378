package book

import (
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "Book not found")

	ErrTitleRequired        = apperrors.Validation("title is required")
	ErrAuthorRequired       = apperrors.Validation("author is required")
	ErrGenreRequired        = apperrors.Validation("genre is required")
	ErrInvalidPublishedYear = apperrors.Validation("publishedYear must be a positive integer")
)
