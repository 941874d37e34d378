package main

import (
	"context"

	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	appreview "github.com/xiebiao/bookreview/internal/application/review"
	appuser "github.com/xiebiao/bookreview/internal/application/user"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/messaging"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/redis"
	apphttp "github.com/xiebiao/bookreview/internal/interface/http"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

// infrastructureSet 存储、缓存、消息
var infrastructureSet = wire.NewSet(
	persistence.Open,
	wire.FieldsOf(new(*persistence.Storage), "Books", "Reviews", "Users", "Tx"),
	provideRedisClient,
	provideRatingCache,
	provideSessionRecorder,
	provideEventPublisher,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	book.NewService,
	review.NewService,
	user.NewService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appbook.NewCreateBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewSearchBooksUseCase,
	appreview.NewCreateReviewUseCase,
	appreview.NewUpdateReviewUseCase,
	appreview.NewDeleteReviewUseCase,
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
)

// interfaceSet HTTP层
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewBookHandler,
	handler.NewReviewHandler,
	handler.NewUserHandler,
	apphttp.NewRouter,
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expire)
}

// provideRedisClient redis.enabled=false时返回nil，下游Provider据此选择Nop实现
func provideRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("关闭Redis连接失败", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

func provideRatingCache(cfg *config.Config, client *goredis.Client) book.RatingCache {
	if client == nil {
		return book.NopRatingCache{}
	}
	return redis.NewRatingCache(client, cfg.Cache.RatingTTL)
}

func provideSessionRecorder(cfg *config.Config, client *goredis.Client) appuser.SessionRecorder {
	if client == nil {
		return appuser.NopSessionRecorder{}
	}
	return redis.NewSessionStore(client, cfg.Cache.SessionTTL)
}

func provideEventPublisher(cfg *config.Config, logger *zap.Logger) (review.EventPublisher, func()) {
	return messaging.NewEventPublisher(cfg.MQ, logger)
}
