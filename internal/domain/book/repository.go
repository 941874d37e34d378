package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 由domain层定义，infrastructure层(mysql、memory)实现
type Repository interface {
	// Create 创建图书，成功后回填ID
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书，不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// List 按条件分页查询，返回当前页数据和过滤后的总数
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// Search 标题或作者包含query(不区分大小写)的全部图书，不分页
	Search(ctx context.Context, query string) ([]*Book, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page   int    // 页码(从1开始)
	Limit  int    // 每页数量
	Author string // 作者包含(不区分大小写)
	Genre  string // 类型相等(不区分大小写)
}

// Offset 分页偏移量 (page-1)*limit
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
