package messaging

import (
	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/pkg/mq"
)

// NewEventPublisher 按配置创建评论事件发布器
// mq.enabled=false时返回NopPublisher；连接失败时降级为NopPublisher并记录日志，不阻止服务启动
func NewEventPublisher(cfg config.MQConfig, logger *zap.Logger) (review.EventPublisher, func()) {
	if !cfg.Enabled {
		return review.NopPublisher{}, func() {}
	}

	pub, err := mq.NewPublisher(cfg.URL, cfg.Exchange, cfg.ExchangeType, logger)
	if err != nil {
		logger.Error("连接RabbitMQ失败，评论事件将不会发布", zap.Error(err))
		return review.NopPublisher{}, func() {}
	}

	cleanup := func() {
		if err := pub.Close(); err != nil {
			logger.Warn("关闭消息发布者失败", zap.Error(err))
		}
	}
	return NewReviewPublisher(pub, cfg, logger), cleanup
}
