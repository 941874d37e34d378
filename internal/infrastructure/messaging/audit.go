package messaging

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/mq"
)

// AuditRoutingKeys 审计消费者订阅的全部评论事件
var AuditRoutingKeys = []string{"review.#"}

// NewAuditHandler 把评论事件写入审计日志
// 无法解析的消息记录后直接确认，重新入队只会无限重试
func NewAuditHandler(logger *zap.Logger) mq.Handler {
	return func(ctx context.Context, msg mq.Message) error {
		var event review.Event
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			logger.Error("评论事件格式错误，已丢弃",
				zap.String("routing_key", msg.RoutingKey),
				zap.ByteString("body", msg.Body),
				zap.Error(err),
			)
			return nil
		}

		logger.Info("评论审计",
			zap.String("type", event.Type),
			zap.Uint("review_id", event.ReviewID),
			zap.Uint("book_id", event.BookID),
			zap.Uint("user_id", event.UserID),
			zap.Int("rating", event.Rating),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}
