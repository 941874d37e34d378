package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/pkg/metrics"
)

// nullRating 缓存"没有评论"，避免每次都回源计算
const nullRating = "null"

// RatingCache 图书平均分缓存（Cache-Aside）
// Key: book:{id}:avg_rating 保存平均分
// Key: book:{id}:avg_rating:ver 版本号，评论写入时递增，不过期
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ book.RatingCache = (*RatingCache)(nil)

// setIfVersion 版本号未变化时才写入平均分
// KEYS[1]=平均分 KEYS[2]=版本号 ARGV[1]=读取时的版本 ARGV[2]=值 ARGV[3]=TTL(毫秒，0不过期)
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// NewRatingCache 创建平均分缓存
func NewRatingCache(client *redis.Client, ttl time.Duration) *RatingCache {
	return &RatingCache{client: client, ttl: ttl}
}

// Get 读取缓存，平均分和版本号一次MGET取出
func (c *RatingCache) Get(ctx context.Context, bookID uint) (*float64, int64, bool, error) {
	vals, err := c.client.MGet(ctx, ratingKey(bookID), versionKey(bookID)).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("获取平均分缓存失败: %w", err)
	}

	version, err := decodeVersion(vals[1])
	if err != nil {
		return nil, 0, false, err
	}

	val, ok := vals[0].(string)
	if !ok {
		metrics.RatingCache(metrics.ResultMiss)
		return nil, version, false, nil
	}

	avg, found, err := decodeRating(val)
	if err != nil {
		return nil, 0, false, err
	}
	metrics.RatingCache(metrics.ResultHit)
	return avg, version, found, nil
}

// Set 版本号仍为version时写入缓存
func (c *RatingCache) Set(ctx context.Context, bookID uint, version int64, avg *float64) (bool, error) {
	stored, err := setIfVersion.Run(ctx, c.client,
		[]string{ratingKey(bookID), versionKey(bookID)},
		strconv.FormatInt(version, 10), encodeRating(avg), c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("设置平均分缓存失败: %w", err)
	}
	return stored == 1, nil
}

// Invalidate 递增版本号并删除缓存
func (c *RatingCache) Invalidate(ctx context.Context, bookID uint) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(bookID))
		pipe.Del(ctx, ratingKey(bookID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("删除平均分缓存失败: %w", err)
	}
	return nil
}

func ratingKey(bookID uint) string {
	return fmt.Sprintf("book:%d:avg_rating", bookID)
}

func versionKey(bookID uint) string {
	return ratingKey(bookID) + ":ver"
}

func decodeVersion(val interface{}) (int64, error) {
	s, ok := val.(string)
	if !ok {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("解析平均分版本号失败: %w", err)
	}
	return v, nil
}

func encodeRating(avg *float64) string {
	if avg == nil {
		return nullRating
	}
	return strconv.FormatFloat(*avg, 'f', -1, 64)
}

func decodeRating(val string) (*float64, bool, error) {
	if val == nullRating {
		return nil, true, nil
	}
	avg, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, false, fmt.Errorf("解析平均分缓存失败: %w", err)
	}
	return &avg, true, nil
}
