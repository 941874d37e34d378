package review

import (
	"context"
	"time"
)

// 评论事件类型(同时作为消息路由键)
const (
	EventCreated = "review.created"
	EventUpdated = "review.updated"
	EventDeleted = "review.deleted"
)

// Event 评论变更事件
type Event struct {
	Type       string    `json:"type"`
	ReviewID   uint      `json:"reviewId"`
	BookID     uint      `json:"bookId"`
	UserID     uint      `json:"userId"`
	Rating     int       `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent 根据评论构建事件
func NewEvent(eventType string, r *Review) Event {
	return Event{
		Type:       eventType,
		ReviewID:   r.ID,
		BookID:     r.BookID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		OccurredAt: time.Now().UTC(),
	}
}

// EventPublisher 评论事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher 不发布事件(未启用消息队列时使用)
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
