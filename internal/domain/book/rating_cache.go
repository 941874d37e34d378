package book

import (
	"context"
)

// RatingCache 平均评分缓存
//
// Get返回值:
//   - found=false: 未命中，需要回源计算，version为当前版本号
//   - found=true, avg=nil: 已缓存"没有评论"
//   - found=true, avg!=nil: 已缓存的平均分
//
// 每次Invalidate都会递增版本号。Set只在版本号仍等于Get返回的
// version时写入，回源期间有评论写入则放弃回写
type RatingCache interface {
	Get(ctx context.Context, bookID uint) (avg *float64, version int64, found bool, err error)
	Set(ctx context.Context, bookID uint, version int64, avg *float64) (stored bool, err error)
	Invalidate(ctx context.Context, bookID uint) error
}

// NopRatingCache 不缓存(未启用Redis时使用)
type NopRatingCache struct{}

func (NopRatingCache) Get(context.Context, uint) (*float64, int64, bool, error) {
	return nil, 0, false, nil
}
func (NopRatingCache) Set(context.Context, uint, int64, *float64) (bool, error) { return false, nil }
func (NopRatingCache) Invalidate(context.Context, uint) error                   { return nil }
