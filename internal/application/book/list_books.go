package book

import (
	"context"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// ListBooksUseCase 图书列表查询用例
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表查询请求
type ListBooksRequest struct {
	Page   int
	Limit  int
	Author string // 作者包含，不区分大小写
	Genre  string // 类型相等，不区分大小写
}

// Execute 执行列表查询
// 1. 分页参数归一化
// 2. 查询当前页和过滤后的总数
// 3. 转换为DTO，meta中回显实际使用的page和limit
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (_ *ListBooksResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ListBooks")
	defer func() { tracing.End(span, err) }()

	// 1. 分页参数
	page, limit := normalizePage(req.Page, req.Limit, DefaultLimit)

	// 2. 查询
	books, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Page:   page,
		Limit:  limit,
		Author: req.Author,
		Genre:  req.Genre,
	})
	if err != nil {
		return nil, err
	}

	// 3. 转换
	return &ListBooksResponse{
		Data: toBookDTOs(books),
		Meta: PageMeta{Total: total, Page: page, Limit: limit},
	}, nil
}
