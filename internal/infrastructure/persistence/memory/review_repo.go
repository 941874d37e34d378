package memory

import (
	"context"
	"sort"

	"github.com/xiebiao/bookreview/internal/domain/review"
)

type reviewRepository struct {
	s *Store
}

// NewReviewRepository 创建评论仓储（内存）
func NewReviewRepository(s *Store) review.Repository {
	return &reviewRepository{s: s}
}

// Create 模拟(user_id, book_id)唯一索引和book_id、user_id外键
func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.reviews {
		if row.UserID == rv.UserID && row.BookID == rv.BookID {
			return review.ErrDuplicateReview
		}
	}
	if _, ok := r.s.books[rv.BookID]; !ok {
		return review.ErrBookReference
	}
	if _, ok := r.s.users[rv.UserID]; !ok {
		return review.ErrUserReference
	}

	r.s.nextReviewID++
	now := r.s.now()
	row := &reviewRow{
		ID:        r.s.nextReviewID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		UserID:    rv.UserID,
		BookID:    rv.BookID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.reviews[row.ID] = row

	rv.ID = row.ID
	rv.CreatedAt = now
	rv.UpdatedAt = now
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.reviews[id]
	if !ok {
		return nil, review.ErrReviewNotFound
	}
	return row.toEntity(), nil
}

func (r *reviewRepository) FindByUserAndBook(ctx context.Context, userID, bookID uint) (*review.Review, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.reviews {
		if row.UserID == userID && row.BookID == bookID {
			return row.toEntity(), nil
		}
	}
	return nil, review.ErrReviewNotFound
}

// LockByID 事务已串行化，直接读取
func (r *reviewRepository) LockByID(ctx context.Context, id uint) (*review.Review, error) {
	return r.FindByID(ctx, id)
}

func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.reviews[rv.ID]
	if !ok {
		return review.ErrReviewNotFound
	}
	row.Rating = rv.Rating
	row.Comment = rv.Comment
	row.UpdatedAt = r.s.now()
	rv.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[id]; !ok {
		return review.ErrReviewNotFound
	}
	delete(r.s.reviews, id)
	return nil
}

// ListByBook id升序分页，填充评论者用户名
func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint, offset, limit int) ([]*review.Review, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	reviews := make([]*review.Review, 0)
	for _, row := range r.s.reviews {
		if row.BookID != bookID {
			continue
		}
		rv := row.toEntity()
		if u, ok := r.s.users[row.UserID]; ok {
			rv.Username = u.Username
		}
		reviews = append(reviews, rv)
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID < reviews[j].ID })
	return window(reviews, offset, limit), nil
}

// AverageRating 全部评论的平均分，没有评论返回nil
func (r *reviewRepository) AverageRating(ctx context.Context, bookID uint) (*float64, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sum, n int
	for _, row := range r.s.reviews {
		if row.BookID == bookID {
			sum += row.Rating
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, nil
}

func (row *reviewRow) toEntity() *review.Review {
	return &review.Review{
		ID:        row.ID,
		Rating:    row.Rating,
		Comment:   row.Comment,
		UserID:    row.UserID,
		BookID:    row.BookID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
