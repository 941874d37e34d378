package review

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// DeleteReviewUseCase 删除评论用例
type DeleteReviewUseCase struct {
	reviewService review.Service
	after         *afterWrite
}

// NewDeleteReviewUseCase 创建用例
func NewDeleteReviewUseCase(
	reviewService review.Service,
	ratingCache book.RatingCache,
	publisher review.EventPublisher,
	logger *zap.Logger,
) *DeleteReviewUseCase {
	return &DeleteReviewUseCase{
		reviewService: reviewService,
		after:         &afterWrite{ratingCache: ratingCache, publisher: publisher, logger: logger},
	}
}

// Execute 删除评论，只有作者本人可以删除
func (uc *DeleteReviewUseCase) Execute(ctx context.Context, id, userID uint) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "DeleteReview")
	defer func() {
		metrics.ReviewOperation(opDelete, err)
		tracing.End(span, err)
	}()

	r, err := uc.reviewService.DeleteReview(ctx, id, userID)
	if err != nil {
		return err
	}

	uc.after.run(ctx, review.EventDeleted, r)
	return nil
}
