package review

import (
	"context"
	"errors"
)

// Service 评论领域服务接口
type Service interface {
	// CreateReview 创建评论
	// 业务规则:
	// - 评分1-5
	// - 每个用户对每本书只能评论一次
	CreateReview(ctx context.Context, bookID, userID uint, rating int, comment string) (*Review, error)

	// UpdateReview 更新评论，只有作者本人可以修改，nil字段保持不变
	UpdateReview(ctx context.Context, id, userID uint, rating *int, comment *string) (*Review, error)

	// DeleteReview 删除评论，只有作者本人可以删除，返回被删除的评论
	DeleteReview(ctx context.Context, id, userID uint) (*Review, error)

	// ListBookReviews 分页查询某本书的评论
	ListBookReviews(ctx context.Context, bookID uint, offset, limit int) ([]*Review, error)

	// AverageRating 某本书的平均分，没有评论时返回nil
	AverageRating(ctx context.Context, bookID uint) (*float64, error)
}

type service struct {
	repo Repository
	tx   TxManager
}

// NewService 创建评论领域服务
func NewService(repo Repository, tx TxManager) Service {
	return &service{repo: repo, tx: tx}
}

// CreateReview 创建评论
// 先查询是否已评论，命中直接返回ErrDuplicateReview
// 并发重复提交由唯一索引兜底，仓储层同样返回ErrDuplicateReview
func (s *service) CreateReview(ctx context.Context, bookID, userID uint, rating int, comment string) (*Review, error) {
	// 1. 评分校验
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}

	// 2. 重复评论检查
	existing, err := s.repo.FindByUserAndBook(ctx, userID, bookID)
	if err == nil && existing != nil {
		return nil, ErrDuplicateReview
	}
	if err != nil && !errors.Is(err, ErrReviewNotFound) {
		return nil, err
	}

	// 3. 持久化
	review := NewReview(bookID, userID, rating, comment)
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReview 更新评论
// 权限检查和写入在同一事务中，评论行被锁定直到提交
func (s *service) UpdateReview(ctx context.Context, id, userID uint, rating *int, comment *string) (*Review, error) {
	var updated *Review
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		review, err := s.lockOwned(ctx, id, userID)
		if err != nil {
			return err
		}

		if err := review.Apply(rating, comment); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, review); err != nil {
			return err
		}
		updated = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteReview 删除评论
func (s *service) DeleteReview(ctx context.Context, id, userID uint) (*Review, error) {
	var deleted *Review
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		review, err := s.lockOwned(ctx, id, userID)
		if err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// lockOwned 锁定评论并校验归属，不存在和非本人都返回ErrReviewNotFound
func (s *service) lockOwned(ctx context.Context, id, userID uint) (*Review, error) {
	review, err := s.repo.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.IsOwnedBy(userID) {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

// ListBookReviews 分页查询某本书的评论
func (s *service) ListBookReviews(ctx context.Context, bookID uint, offset, limit int) ([]*Review, error) {
	return s.repo.ListByBook(ctx, bookID, offset, limit)
}

// AverageRating 平均分
func (s *service) AverageRating(ctx context.Context, bookID uint) (*float64, error) {
	return s.repo.AverageRating(ctx, bookID)
}
