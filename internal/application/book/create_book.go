package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// CreateBookUseCase 创建图书用例
type CreateBookUseCase struct {
	bookService book.Service
	logger      *zap.Logger
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(bookService book.Service, logger *zap.Logger) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService, logger: logger}
}

// CreateBookRequest 创建图书请求
type CreateBookRequest struct {
	Title         string
	Author        string
	Genre         string
	PublishedYear int
}

// Execute 执行创建
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (_ *BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateBook")
	defer func() { tracing.End(span, err) }()

	b, err := uc.bookService.CreateBook(ctx, req.Title, req.Author, req.Genre, req.PublishedYear)
	if err != nil {
		return nil, err
	}

	metrics.BookCreated()
	uc.logger.Info("图书已创建",
		zap.Uint("book_id", b.ID),
		zap.String("title", b.Title),
		zap.String("trace_id", tracing.ExtractTraceID(ctx)))

	dto := toBookDTO(b)
	return &dto, nil
}
