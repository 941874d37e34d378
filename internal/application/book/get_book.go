package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// GetBookUseCase 图书详情用例
// 详情 = 图书字段 + 全部评论的平均分 + 分页评论
type GetBookUseCase struct {
	bookService   book.Service
	reviewService review.Service
	ratingCache   book.RatingCache
	logger        *zap.Logger
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(
	bookService book.Service,
	reviewService review.Service,
	ratingCache book.RatingCache,
	logger *zap.Logger,
) *GetBookUseCase {
	return &GetBookUseCase{
		bookService:   bookService,
		reviewService: reviewService,
		ratingCache:   ratingCache,
		logger:        logger,
	}
}

// GetBookRequest 详情请求
type GetBookRequest struct {
	ID          uint
	ReviewPage  int
	ReviewLimit int
}

// Execute 查询详情
// 1. 查询图书，不存在返回ErrBookNotFound
// 2. 分页查询评论（id升序，带用户名）
// 3. 平均分：先读缓存，未命中再聚合计算并回写
func (uc *GetBookUseCase) Execute(ctx context.Context, req GetBookRequest) (_ *BookDetailDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetBook")
	defer func() { tracing.End(span, err) }()

	// 1. 图书
	b, err := uc.bookService.GetBookByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	// 2. 评论
	page, limit := normalizePage(req.ReviewPage, req.ReviewLimit, DefaultReviewLimit)
	reviews, err := uc.reviewService.ListBookReviews(ctx, b.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	// 3. 平均分
	avg, err := uc.averageRating(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	return &BookDetailDTO{
		BookDTO:       toBookDTO(b),
		AverageRating: avg,
		Reviews:       toBookReviewDTOs(reviews),
	}, nil
}

// averageRating 缓存读写失败只记录日志，回源计算结果始终可用
func (uc *GetBookUseCase) averageRating(ctx context.Context, bookID uint) (*float64, error) {
	avg, version, found, cacheErr := uc.ratingCache.Get(ctx, bookID)
	if cacheErr != nil {
		metrics.RatingCache(metrics.ResultFailure)
		uc.logger.Warn("读取平均分缓存失败", zap.Uint("book_id", bookID), zap.Error(cacheErr))
	} else if found {
		return avg, nil
	}

	avg, err := uc.reviewService.AverageRating(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// 读缓存失败时拿不到版本号，不回写
	if cacheErr != nil {
		return avg, nil
	}
	stored, err := uc.ratingCache.Set(ctx, bookID, version, avg)
	if err != nil {
		uc.logger.Warn("写入平均分缓存失败", zap.Uint("book_id", bookID), zap.Error(err))
	} else if !stored {
		uc.logger.Debug("平均分已被评论写入更新，放弃回写", zap.Uint("book_id", bookID))
	}
	return avg, nil
}
