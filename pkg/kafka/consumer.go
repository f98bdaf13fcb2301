package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/pkg/log"
)

// Handler xử lý value của một message
type Handler func(ctx context.Context, value []byte) error

var ErrNoHandler = errors.New("no handler registered")

const defaultRetryDelay = time.Second

// MessageReader là phần của kafka.Reader mà Consumer dùng
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer đọc message từ topic và chuyển cho handler theo key
type Consumer struct {
	Config *cfg.Config
	Logger log.Logger
	// Thời gian chờ trước khi đọc lại sau một lỗi đọc
	RetryDelay time.Duration
	topic      string
	reader     MessageReader
	handlers   map[string]Handler
}

func NewConsumer(config *cfg.Config, logger log.Logger) (*Consumer, error) {
	if len(config.Kafka.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Kafka.Brokers,
		Topic:          config.Kafka.Topic,
		GroupID:        config.Kafka.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,        // 10MB
		MaxWait:        time.Second, // Thời gian chờ tối đa cho dữ liệu mới
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return NewConsumerWith(config, logger, config.Kafka.Topic, reader), nil
}

func NewConsumerWith(config *cfg.Config, logger log.Logger, topic string, reader MessageReader) *Consumer {
	return &Consumer{
		Config:     config,
		Logger:     logger,
		RetryDelay: defaultRetryDelay,
		topic:      topic,
		reader:     reader,
		handlers:   make(map[string]Handler),
	}
}

func (c *Consumer) RegisterHandler(key string, handler Handler) {
	if c.handlers == nil {
		c.handlers = make(map[string]Handler)
	}
	c.handlers[key] = handler
}

// Dispatch gọi handler tương ứng với key của message
func (c *Consumer) Dispatch(ctx context.Context, message kafka.Message) error {
	key := string(message.Key)
	handler, ok := c.handlers[key]
	if !ok {
		return fmt.Errorf("%w for key %q", ErrNoHandler, key)
	}
	if err := handler(ctx, message.Value); err != nil {
		return fmt.Errorf("handle message %q: %w", key, err)
	}
	return nil
}

// Start đọc message cho tới khi ctx bị huỷ. Lỗi của handler chỉ được log.
func (c *Consumer) Start(ctx context.Context) error {
	c.Logger.Info(ctx, "Bắt đầu consumer cho topic: %s", c.topic)

	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			// Reader đã bị đóng
			if errors.Is(err, io.EOF) {
				c.Logger.Warn(ctx, "Reader đã đóng, dừng consumer")
				return nil
			}
			c.Logger.Error(ctx, "Lỗi khi đọc message: %v", err)
			if !c.backoff(ctx) {
				return nil
			}
			continue
		}

		if err := c.Dispatch(ctx, message); err != nil {
			if errors.Is(err, ErrNoHandler) {
				c.Logger.Warn(ctx, "Không có handler cho message với key: %s", string(message.Key))
				continue
			}
			c.Logger.Error(ctx, "Lỗi khi xử lý message: %v", err)
			continue
		}
		c.Logger.Info(ctx, "Đã xử lý message với key: %s", string(message.Key))
	}
}

// backoff chờ RetryDelay, trả về false nếu ctx bị huỷ trong lúc chờ
func (c *Consumer) backoff(ctx context.Context) bool {
	if c.RetryDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(c.RetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
