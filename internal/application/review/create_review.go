package review

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// CreateReviewUseCase 发表评论用例
type CreateReviewUseCase struct {
	reviewService review.Service
	after         *afterWrite
}

// NewCreateReviewUseCase 创建用例
func NewCreateReviewUseCase(
	reviewService review.Service,
	ratingCache book.RatingCache,
	publisher review.EventPublisher,
	logger *zap.Logger,
) *CreateReviewUseCase {
	return &CreateReviewUseCase{
		reviewService: reviewService,
		after:         &afterWrite{ratingCache: ratingCache, publisher: publisher, logger: logger},
	}
}

// CreateReviewRequest 发表评论请求
type CreateReviewRequest struct {
	BookID  uint
	UserID  uint
	Rating  int
	Comment string
}

// Execute 发表评论
// 同一用户对同一本书重复评论返回ErrDuplicateReview，图书不存在返回ErrBookReference
func (uc *CreateReviewUseCase) Execute(ctx context.Context, req CreateReviewRequest) (_ *ReviewDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateReview")
	defer func() {
		metrics.ReviewOperation(opCreate, err)
		tracing.End(span, err)
	}()

	r, err := uc.reviewService.CreateReview(ctx, req.BookID, req.UserID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	uc.after.run(ctx, review.EventCreated, r)
	return toReviewDTO(r), nil
}
