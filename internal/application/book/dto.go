package book

import (
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
)

// 分页默认值
const (
	DefaultPage        = 1
	DefaultLimit       = 10
	DefaultReviewLimit = 5
)

const tracerName = "bookreview/application/book"

// BookDTO 图书响应
type BookDTO struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	PublishedYear int    `json:"publishedYear"`
}

// ReviewerDTO 评论者，只暴露用户名
type ReviewerDTO struct {
	Username string `json:"username"`
}

// BookReviewDTO 图书详情中的评论
type BookReviewDTO struct {
	ID      uint        `json:"id"`
	Rating  int         `json:"rating"`
	Comment string      `json:"comment"`
	UserID  uint        `json:"userId"`
	BookID  uint        `json:"bookId"`
	User    ReviewerDTO `json:"user"`
}

// BookDetailDTO 图书详情
// AverageRating为null表示还没有评论
type BookDetailDTO struct {
	BookDTO
	AverageRating *float64        `json:"averageRating"`
	Reviews       []BookReviewDTO `json:"reviews"`
}

// PageMeta 分页信息
type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// ListBooksResponse 列表响应
type ListBooksResponse struct {
	Data []BookDTO `json:"data"`
	Meta PageMeta  `json:"meta"`
}

func toBookDTO(b *book.Book) BookDTO {
	return BookDTO{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		PublishedYear: b.PublishedYear,
	}
}

func toBookDTOs(books []*book.Book) []BookDTO {
	list := make([]BookDTO, len(books))
	for i, b := range books {
		list[i] = toBookDTO(b)
	}
	return list
}

func toBookReviewDTOs(reviews []*review.Review) []BookReviewDTO {
	list := make([]BookReviewDTO, len(reviews))
	for i, r := range reviews {
		list[i] = BookReviewDTO{
			ID:      r.ID,
			Rating:  r.Rating,
			Comment: r.Comment,
			UserID:  r.UserID,
			BookID:  r.BookID,
			User:    ReviewerDTO{Username: r.Username},
		}
	}
	return list
}

// normalizePage 页码小于1按1处理，每页数量小于1使用默认值，不设上限
func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
