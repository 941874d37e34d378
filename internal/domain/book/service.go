package book

import (
	"context"
)

// Service 图书领域服务接口
type Service interface {
	// CreateBook 创建图书
	// 业务规则: title、author、genre、publishedYear均为必填
	CreateBook(ctx context.Context, title, author, genre string, publishedYear int) (*Book, error)

	// GetBookByID 根据ID获取图书
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// ListBooks 分页查询图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// SearchBooks 按标题或作者搜索，query为空时返回空列表
	SearchBooks(ctx context.Context, query string) ([]*Book, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateBook 创建图书
func (s *service) CreateBook(ctx context.Context, title, author, genre string, publishedYear int) (*Book, error) {
	// 1. 创建实体并校验
	book := NewBook(title, author, genre, publishedYear)
	if err := book.Validate(); err != nil {
		return nil, err
	}

	// 2. 持久化
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// SearchBooks 搜索图书
func (s *service) SearchBooks(ctx context.Context, query string) ([]*Book, error) {
	if query == "" {
		return []*Book{}, nil
	}
	return s.repo.Search(ctx, query)
}
