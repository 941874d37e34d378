// Package memory 进程内存储驱动
// 与MySQL驱动实现同一组仓储接口，用于本地运行和端到端测试。
// 唯一索引、外键和不区分大小写的过滤均在内存中模拟。
package memory

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// Store 内存数据库
type Store struct {
	mu      sync.RWMutex
	users   map[uint]*userRow
	books   map[uint]*bookRow
	reviews map[uint]*reviewRow

	nextUserID   uint
	nextBookID   uint
	nextReviewID uint

	// txMu 串行化事务，相当于对整张表加锁
	txMu sync.Mutex

	now func() time.Time
}

type userRow struct {
	ID        uint
	Username  string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type bookRow struct {
	ID            uint
	Title         string
	Author        string
	Genre         string
	PublishedYear int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type reviewRow struct {
	ID        uint
	Rating    int
	Comment   string
	UserID    uint
	BookID    uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStore 创建空的内存数据库
func NewStore() *Store {
	return &Store{
		users:   make(map[uint]*userRow),
		books:   make(map[uint]*bookRow),
		reviews: make(map[uint]*reviewRow),
		now:     time.Now,
	}
}

// Close 清空数据
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[uint]*userRow)
	s.books = make(map[uint]*bookRow)
	s.reviews = make(map[uint]*reviewRow)
	return nil
}

// ctxErr ctx已取消或超时按存储错误返回，与MySQL驱动一致
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Store(err)
	}
	return nil
}

// txKey 标记ctx已处于事务中
type txKey struct{}

// TxManager 内存事务管理器
// 事务之间互斥执行，不支持回滚（fn中的写操作在返回错误前已经生效）
type TxManager struct {
	store *Store
}

// NewTxManager 创建事务管理器
func NewTxManager(s *Store) *TxManager {
	return &TxManager{store: s}
}

// Transaction 串行执行fn，嵌套调用时直接复用外层事务
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}
	if err := ctxErr(ctx); err != nil {
		return err
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}
