package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore 登录会话记录
// Key: session:{user_id}，Hash字段为登录时间、客户端IP等
// 鉴权仍然只依赖JWT，这里的记录仅用于统计和审计
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// SaveSession 保存用户会话，HSet和Expire通过Pipeline一次发送
func (s *SessionStore) SaveSession(ctx context.Context, userID uint, data map[string]interface{}) error {
	key := sessionKey(userID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("保存会话失败: %w", err)
	}
	return nil
}

// GetSession 获取用户会话，不存在时返回空map
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("获取会话失败: %w", err)
	}
	return result, nil
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("session:%d", userID)
}
