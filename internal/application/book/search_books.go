package book

import (
	"context"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// SearchBooksUseCase 搜索图书用例
type SearchBooksUseCase struct {
	bookService book.Service
}

// NewSearchBooksUseCase 创建搜索用例
func NewSearchBooksUseCase(bookService book.Service) *SearchBooksUseCase {
	return &SearchBooksUseCase{bookService: bookService}
}

// Execute 标题或作者包含query的图书，query为空时返回空数组
func (uc *SearchBooksUseCase) Execute(ctx context.Context, query string) (_ []BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "SearchBooks")
	defer func() { tracing.End(span, err) }()

	books, err := uc.bookService.SearchBooks(ctx, query)
	if err != nil {
		return nil, err
	}
	return toBookDTOs(books), nil
}
