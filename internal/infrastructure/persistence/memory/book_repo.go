package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/xiebiao/bookreview/internal/domain/book"
)

type bookRepository struct {
	s *Store
}

// NewBookRepository 创建图书仓储（内存）
func NewBookRepository(s *Store) book.Repository {
	return &bookRepository{s: s}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextBookID++
	now := r.s.now()
	row := &bookRow{
		ID:            r.s.nextBookID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		PublishedYear: b.PublishedYear,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.s.books[row.ID] = row

	b.ID = row.ID
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return row.toEntity(), nil
}

// List author包含匹配、genre相等匹配，均不区分大小写，按id升序分页
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, 0, err
	}
	author := strings.ToLower(params.Author)
	genre := strings.ToLower(params.Genre)

	matched := r.filter(func(row *bookRow) bool {
		if author != "" && !strings.Contains(strings.ToLower(row.Author), author) {
			return false
		}
		if genre != "" && strings.ToLower(row.Genre) != genre {
			return false
		}
		return true
	})

	total := int64(len(matched))
	return window(matched, params.Offset(), params.Limit), total, nil
}

func (r *bookRepository) Search(ctx context.Context, query string) ([]*book.Book, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	return r.filter(func(row *bookRow) bool {
		return strings.Contains(strings.ToLower(row.Title), q) ||
			strings.Contains(strings.ToLower(row.Author), q)
	}), nil
}

// filter 返回满足条件的图书（id升序）
func (r *bookRepository) filter(match func(*bookRow) bool) []*book.Book {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	books := make([]*book.Book, 0)
	for _, row := range r.s.books {
		if match(row) {
			books = append(books, row.toEntity())
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books
}

func (row *bookRow) toEntity() *book.Book {
	return &book.Book{
		ID:            row.ID,
		Title:         row.Title,
		Author:        row.Author,
		Genre:         row.Genre,
		PublishedYear: row.PublishedYear,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// window 模拟OFFSET/LIMIT
func window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	end := len(items)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
