// review-audit 消费评论事件并写入审计日志
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/messaging"
	"github.com/xiebiao/bookreview/pkg/logger"
	"github.com/xiebiao/bookreview/pkg/mq"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("审计消费者异常退出: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	zlog, undo, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer undo()
	defer func() { _ = zlog.Sync() }()

	if !cfg.MQ.Enabled {
		zlog.Warn("mq.enabled=false，API不会发布评论事件")
	}

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType,
		cfg.MQ.AuditQueue, messaging.AuditRoutingKeys, zlog)
	if err != nil {
		return fmt.Errorf("创建消费者失败: %w", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			zlog.Warn("关闭消费者失败", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = consumer.Consume(ctx, messaging.NewAuditHandler(zlog))
	if errors.Is(err, mq.ErrChannelClosed) {
		return fmt.Errorf("Broker关闭了投递通道: %w", err)
	}
	return err
}
