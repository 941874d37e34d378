package review

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// UpdateReviewUseCase 修改评论用例
type UpdateReviewUseCase struct {
	reviewService review.Service
	after         *afterWrite
}

// NewUpdateReviewUseCase 创建用例
func NewUpdateReviewUseCase(
	reviewService review.Service,
	ratingCache book.RatingCache,
	publisher review.EventPublisher,
	logger *zap.Logger,
) *UpdateReviewUseCase {
	return &UpdateReviewUseCase{
		reviewService: reviewService,
		after:         &afterWrite{ratingCache: ratingCache, publisher: publisher, logger: logger},
	}
}

// UpdateReviewRequest 修改评论请求，nil字段保持不变
type UpdateReviewRequest struct {
	ID      uint
	UserID  uint
	Rating  *int
	Comment *string
}

// Execute 修改评论
// 评论不存在或不属于当前用户统一返回ErrReviewNotFound
func (uc *UpdateReviewUseCase) Execute(ctx context.Context, req UpdateReviewRequest) (_ *ReviewDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateReview")
	defer func() {
		metrics.ReviewOperation(opUpdate, err)
		tracing.End(span, err)
	}()

	r, err := uc.reviewService.UpdateReview(ctx, req.ID, req.UserID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	uc.after.run(ctx, review.EventUpdated, r)
	return toReviewDTO(r), nil
}
