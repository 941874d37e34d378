package book

import (
	"strings"
	"time"
)

// Book 图书实体(聚合根)
// 创建后只读，不提供修改和删除操作
type Book struct {
	ID            uint
	Title         string
	Author        string
	Genre         string
	PublishedYear int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBook 创建新图书(工厂方法)
func NewBook(title, author, genre string, publishedYear int) *Book {
	now := time.Now()
	return &Book{
		Title:         title,
		Author:        author,
		Genre:         genre,
		PublishedYear: publishedYear,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate 校验必填字段
// 只含空白的字段视为缺失，但保存的值保持原样
func (b *Book) Validate() error {
	switch {
	case blank(b.Title):
		return ErrTitleRequired
	case blank(b.Author):
		return ErrAuthorRequired
	case blank(b.Genre):
		return ErrGenreRequired
	case b.PublishedYear <= 0:
		return ErrInvalidPublishedYear
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
