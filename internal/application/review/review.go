package review

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

const tracerName = "bookreview/application/review"

// 评论写操作名称（指标标签）
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// ReviewDTO 评论响应
type ReviewDTO struct {
	ID      uint   `json:"id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	UserID  uint   `json:"userId"`
	BookID  uint   `json:"bookId"`
}

func toReviewDTO(r *review.Review) *ReviewDTO {
	return &ReviewDTO{
		ID:      r.ID,
		Rating:  r.Rating,
		Comment: r.Comment,
		UserID:  r.UserID,
		BookID:  r.BookID,
	}
}

// afterWrite 评论写入成功后的副作用
// 删除平均分缓存、发布事件，失败只记录日志，不影响本次请求结果
type afterWrite struct {
	ratingCache book.RatingCache
	publisher   review.EventPublisher
	logger      *zap.Logger
}

func (a *afterWrite) run(ctx context.Context, eventType string, r *review.Review) {
	if err := a.ratingCache.Invalidate(ctx, r.BookID); err != nil {
		a.logger.Warn("删除平均分缓存失败",
			zap.Uint("book_id", r.BookID),
			zap.Error(err))
	}

	if err := a.publisher.Publish(ctx, review.NewEvent(eventType, r)); err != nil {
		a.logger.Warn("发布评论事件失败",
			zap.String("event", eventType),
			zap.Uint("review_id", r.ID),
			zap.String("trace_id", tracing.ExtractTraceID(ctx)),
			zap.Error(err))
	}
}
