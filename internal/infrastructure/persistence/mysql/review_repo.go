package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookreview/internal/domain/review"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// reviewRepository 评论仓储实现（MySQL）
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评论仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// Create 创建评论
// 1. 唯一索引idx_user_book冲突 → ErrDuplicateReview（并发重复提交时生效）
// 2. 外键约束失败 → ErrBookReference或ErrUserReference
func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := &ReviewModel{
		Rating:  rv.Rating,
		Comment: rv.Comment,
		UserID:  rv.UserID,
		BookID:  rv.BookID,
	}

	err := dbFrom(ctx, r.db).Omit(clause.Associations).Create(model).Error
	switch {
	case err == nil:
	case isDuplicateError(err):
		return review.ErrDuplicateReview
	case isForeignKeyError(err):
		return r.referenceError(ctx, rv, err)
	default:
		return apperrors.Store(err)
	}

	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt
	return nil
}

// referenceError 区分是哪个外键失败
// 驱动错误带列名时直接使用，否则查询图书是否存在
func (r *reviewRepository) referenceError(ctx context.Context, rv *review.Review, err error) error {
	switch foreignKeyColumn(err) {
	case "book_id":
		return review.ErrBookReference
	case "user_id":
		return review.ErrUserReference
	}

	var count int64
	if err := dbFrom(ctx, r.db).Model(&BookModel{}).Where("id = ?", rv.BookID).Count(&count).Error; err != nil {
		return apperrors.Store(err)
	}
	if count == 0 {
		return review.ErrBookReference
	}
	return review.ErrUserReference
}

// FindByID 根据ID查找评论
func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var model ReviewModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		return nil, reviewLookupError(err)
	}
	return toReviewEntity(&model), nil
}

// FindByUserAndBook 查找用户对某本书的评论（走唯一索引）
func (r *reviewRepository) FindByUserAndBook(ctx context.Context, userID, bookID uint) (*review.Review, error) {
	var model ReviewModel
	err := dbFrom(ctx, r.db).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&model).Error
	if err != nil {
		return nil, reviewLookupError(err)
	}
	return toReviewEntity(&model), nil
}

// LockByID 悲观锁查询
// 必须在TxManager.Transaction中调用，锁在事务提交或回滚时释放
func (r *reviewRepository) LockByID(ctx context.Context, id uint) (*review.Review, error) {
	var model ReviewModel
	err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		return nil, reviewLookupError(err)
	}
	return toReviewEntity(&model), nil
}

// Update 更新评分和内容
func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	now := time.Now()
	result := dbFrom(ctx, r.db).
		Model(&ReviewModel{ID: rv.ID}).
		Updates(map[string]interface{}{
			"rating":     rv.Rating,
			"comment":    rv.Comment,
			"updated_at": now,
		})
	if result.Error != nil {
		return apperrors.Store(result.Error)
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}

	rv.UpdatedAt = now
	return nil
}

// Delete 删除评论
func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&ReviewModel{}, id)
	if result.Error != nil {
		return apperrors.Store(result.Error)
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

// reviewWithUser 评论 + 评论者用户名
type reviewWithUser struct {
	ID        uint
	Rating    int
	Comment   string
	UserID    uint
	BookID    uint
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListByBook 按ID升序分页查询评论，JOIN users只取username
func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint, offset, limit int) ([]*review.Review, error) {
	var rows []reviewWithUser
	err := dbFrom(ctx, r.db).
		Table("reviews").
		Select("reviews.id, reviews.rating, reviews.comment, reviews.user_id, reviews.book_id, users.username, reviews.created_at, reviews.updated_at").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.book_id = ?", bookID).
		Order("reviews.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Store(err)
	}

	reviews := make([]*review.Review, len(rows))
	for i, row := range rows {
		reviews[i] = &review.Review{
			ID:        row.ID,
			Rating:    row.Rating,
			Comment:   row.Comment,
			UserID:    row.UserID,
			BookID:    row.BookID,
			Username:  row.Username,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
	}
	return reviews, nil
}

// AverageRating 聚合计算全部评论的平均分，没有评论时AVG返回NULL
func (r *reviewRepository) AverageRating(ctx context.Context, bookID uint) (*float64, error) {
	var avg sql.NullFloat64
	row := dbFrom(ctx, r.db).
		Model(&ReviewModel{}).
		Select("AVG(rating)").
		Where("book_id = ?", bookID).
		Row()
	if err := row.Scan(&avg); err != nil {
		return nil, apperrors.Store(err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func reviewLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return review.ErrReviewNotFound
	}
	return apperrors.Store(err)
}

// toReviewEntity GORM模型 → 领域实体
func toReviewEntity(model *ReviewModel) *review.Review {
	return &review.Review{
		ID:        model.ID,
		Rating:    model.Rating,
		Comment:   model.Comment,
		UserID:    model.UserID,
		BookID:    model.BookID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
