// Package persistence 按配置选择存储驱动
package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/mysql"
)

// Storage 进程级存储句柄
// 启动时创建一次，所有请求共享，关闭时释放连接池
type Storage struct {
	Books   book.Repository
	Reviews review.Repository
	Users   user.Repository
	Tx      review.TxManager

	driver string
	close  func() error
}

// Driver 当前使用的驱动名
func (s *Storage) Driver() string {
	return s.driver
}

// Close 释放底层连接
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open 打开存储
// 返回的cleanup用于wire注入，进程退出前调用
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, func(), error) {
	var (
		storage *Storage
		err     error
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		storage = OpenMemory()
	case config.DriverMySQL:
		storage, err = openMySQL(ctx, cfg, log)
	default:
		err = fmt.Errorf("不支持的存储驱动: %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	log.Info("存储已就绪", zap.String("driver", storage.driver))
	cleanup := func() {
		if err := storage.Close(); err != nil {
			log.Error("关闭存储失败", zap.Error(err))
		}
	}
	return storage, cleanup, nil
}

// OpenMemory 创建内存存储
func OpenMemory() *Storage {
	store := memory.NewStore()
	return &Storage{
		Books:   memory.NewBookRepository(store),
		Reviews: memory.NewReviewRepository(store),
		Users:   memory.NewUserRepository(store),
		Tx:      memory.NewTxManager(store),
		driver:  config.DriverMemory,
		close:   store.Close,
	}
}

func openMySQL(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	db, err := mysql.NewDB(ctx, cfg.Database, cfg.Server.Mode, log)
	if err != nil {
		return nil, err
	}
	return &Storage{
		Books:   mysql.NewBookRepository(db),
		Reviews: mysql.NewReviewRepository(db),
		Users:   mysql.NewUserRepository(db),
		Tx:      mysql.NewTxManager(db),
		driver:  config.DriverMySQL,
		close:   func() error { return mysql.Close(db) },
	}, nil
}
