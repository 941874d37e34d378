// Package mq 提供基于RabbitMQ的消息发布/订阅
//
// 拓扑：
//
//	Publisher --(routing key: review.created)--> Exchange(topic) --(binding: review.*)--> Queue --> Consumer
//
// Exchange和Queue都声明为持久化，消息以Persistent模式投递，
// Consumer手动Ack，处理失败时Nack并重新入队。
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrChannelClosed 消费过程中Broker关闭了投递Channel
var ErrChannelClosed = errors.New("mq: delivery channel closed")

// channel *amqp.Channel中用到的方法
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dial 连接Broker、打开Channel并声明持久化Exchange
func dial(url, exchange, exchangeType string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	if err := declareExchange(ch, exchange, exchangeType); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

func declareExchange(ch channel, exchange, exchangeType string) error {
	// durable=true, autoDelete=false, internal=false, noWait=false
	if err := ch.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		return fmt.Errorf("声明Exchange失败: %w", err)
	}
	return nil
}

// Publisher 消息发布者
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher 创建发布者并声明Exchange
func NewPublisher(url, exchange, exchangeType string, logger *zap.Logger) (*Publisher, error) {
	conn, ch, err := dial(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	p := newPublisher(ch, exchange, logger)
	p.conn = conn
	p.logger.Info("消息发布者已创建", zap.String("exchange", exchange), zap.String("type", exchangeType))
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{channel: ch, exchange: exchange, logger: logger}
}

// Publish 将message序列化为JSON后发布
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	p.logger.Debug("消息已发布", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
	return nil
}

// Close 关闭Channel和连接
func (p *Publisher) Close() error {
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// Message 投递给Handler的消息
type Message struct {
	RoutingKey string
	Body       []byte
	Timestamp  time.Time
}

// Handler 处理一条消息，返回错误时消息重新入队
type Handler func(ctx context.Context, msg Message) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel channel
	queue   string
	logger  *zap.Logger
}

// NewConsumer 创建消费者，声明Queue并按routingKeys绑定到Exchange
//
// Topic Exchange支持通配符：* 匹配一个单词，# 匹配零个或多个单词
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string, logger *zap.Logger) (*Consumer, error) {
	conn, ch, err := dial(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	c, err := newConsumer(ch, exchange, queue, routingKeys, logger)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func newConsumer(ch channel, exchange, queue string, routingKeys []string, logger *zap.Logger) (*Consumer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// durable=true, autoDelete=false, exclusive=false, noWait=false
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("绑定Queue失败: %w", err)
		}
	}

	logger.Info("消息消费者已创建", zap.String("queue", q.Name), zap.Strings("routing_keys", routingKeys))
	return &Consumer{channel: ch, queue: q.Name, logger: logger}, nil
}

// Queue 实际声明的Queue名称
func (c *Consumer) Queue() string {
	return c.queue
}

// Consume 阻塞消费消息，直到ctx取消或Broker关闭投递Channel
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	// PrefetchCount=1：处理完一条再取下一条
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	c.logger.Info("开始消费消息", zap.String("queue", c.queue))
	return c.dispatch(ctx, deliveries, handler)
}

func (c *Consumer) dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("消费者退出", zap.String("queue", c.queue))
			return nil

		case d, ok := <-deliveries:
			if !ok {
				return ErrChannelClosed
			}

			msg := Message{RoutingKey: d.RoutingKey, Body: d.Body, Timestamp: d.Timestamp}
			if err := handler(ctx, msg); err != nil {
				c.logger.Warn("消息处理失败，重新入队",
					zap.String("routing_key", d.RoutingKey),
					zap.Error(err),
				)
				if nackErr := d.Nack(false, true); nackErr != nil {
					c.logger.Error("Nack失败", zap.Error(nackErr))
				}
				continue
			}

			if ackErr := d.Ack(false); ackErr != nil {
				c.logger.Error("Ack失败", zap.Error(ackErr))
			}
		}
	}
}

// Close 关闭Channel和连接
func (c *Consumer) Close() error {
	var errs []error
	if c.channel != nil {
		errs = append(errs, c.channel.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}
