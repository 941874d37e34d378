package review

import (
	"context"
)

// Repository 评论仓储接口
type Repository interface {
	// Create 创建评论
	// 违反(user_id, book_id)唯一索引返回ErrDuplicateReview，图书不存在返回ErrBookReference
	Create(ctx context.Context, review *Review) error

	// FindByID 根据ID查找，不存在返回ErrReviewNotFound
	FindByID(ctx context.Context, id uint) (*Review, error)

	// FindByUserAndBook 查找用户对某本书的评论，不存在返回ErrReviewNotFound
	FindByUserAndBook(ctx context.Context, userID, bookID uint) (*Review, error)

	// LockByID 悲观锁查询(SELECT ... FOR UPDATE)，必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Review, error)

	// Update 更新评分和内容
	Update(ctx context.Context, review *Review) error

	// Delete 删除评论
	Delete(ctx context.Context, id uint) error

	// ListByBook 按ID升序分页查询某本书的评论，填充评论者用户名
	ListByBook(ctx context.Context, bookID uint, offset, limit int) ([]*Review, error)

	// AverageRating 某本书全部评论的平均分，没有评论时返回nil
	AverageRating(ctx context.Context, bookID uint) (*float64, error)
}

// TxManager 事务管理器
// fn中通过ctx调用的仓储方法都在同一事务内执行，fn返回错误则回滚
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
