package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/bookreview/internal/domain/book"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// bookRepository 图书仓储实现（MySQL）
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := &BookModel{
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		PublishedYear: b.PublishedYear,
	}

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Store(err)
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Store(err)
	}
	return toBookEntity(&model), nil
}

// List 分页查询图书列表
// 1. author: 包含匹配，genre: 相等匹配，均不区分大小写
// 2. 先COUNT过滤后的总数，再按id升序取当前页
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	query := dbFrom(ctx, r.db).Model(&BookModel{})
	if params.Author != "" {
		query = query.Where("LOWER(author) LIKE ?", likePattern(params.Author))
	}
	if params.Genre != "" {
		query = query.Where("LOWER(genre) = ?", strings.ToLower(params.Genre))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Store(err)
	}

	var models []BookModel
	err := query.Order("id ASC").Offset(params.Offset()).Limit(params.Limit).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Store(err)
	}
	return toBookEntities(models), total, nil
}

// Search 标题或作者包含query的全部图书
func (r *bookRepository) Search(ctx context.Context, query string) ([]*book.Book, error) {
	pattern := likePattern(query)

	var models []BookModel
	err := dbFrom(ctx, r.db).
		Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return toBookEntities(models), nil
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:            model.ID,
		Title:         model.Title,
		Author:        model.Author,
		Genre:         model.Genre,
		PublishedYear: model.PublishedYear,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}
