// Package messaging 评论事件发布（RabbitMQ）
package messaging

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/pkg/circuitbreaker"
	"github.com/xiebiao/bookreview/pkg/metrics"
)

// Broker 消息代理，由*mq.Publisher实现
type Broker interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// ReviewPublisher 通过熔断器发布评论事件
// Broker不可用时熔断器打开，后续事件直接丢弃并计为rejected，不拖慢请求
type ReviewPublisher struct {
	pub    Broker
	cb     *circuitbreaker.CircuitBreaker
	logger *zap.Logger
}

var _ review.EventPublisher = (*ReviewPublisher)(nil)

// NewReviewPublisher 创建评论事件发布器
// 连续失败cfg.BreakerFailures次后熔断，cfg.BreakerTimeout后放行一个探测请求
func NewReviewPublisher(pub Broker, cfg config.MQConfig, logger *zap.Logger) *ReviewPublisher {
	metrics.InitMetrics()
	cb := circuitbreaker.NewCircuitBreaker("review-events", circuitbreaker.Config{
		Timeout:          cfg.BreakerTimeout,
		FailureThreshold: cfg.BreakerFailures,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.SetGaugeVec(metrics.CircuitBreakerState, prometheus.Labels{"name": name}, float64(to))
			logger.Warn("熔断器状态变化",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	metrics.SetGaugeVec(metrics.CircuitBreakerState, prometheus.Labels{"name": cb.Name()}, float64(cb.State()))

	return &ReviewPublisher{pub: pub, cb: cb, logger: logger}
}

// Publish 发布事件，路由键即事件类型
func (p *ReviewPublisher) Publish(ctx context.Context, event review.Event) error {
	err := p.cb.Execute(func() error {
		return p.pub.Publish(ctx, event.Type, event)
	})

	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = metrics.ResultRejected
	default:
		result = metrics.ResultFailure
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, prometheus.Labels{
		"routing_key": event.Type,
		"result":      result,
	})
	return err
}
