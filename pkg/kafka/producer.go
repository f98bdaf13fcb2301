package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/pkg/log"
)

var ErrNoBrokers = errors.New("no kafka brokers configured")

// Producer ghi message vào một topic
type Producer struct {
	Config *cfg.Config
	Logger log.Logger
	writer *kafka.Writer
}

func NewProducer(config *cfg.Config, logger log.Logger) (*Producer, error) {
	if len(config.Kafka.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Kafka.Brokers...),
		Topic:        config.Kafka.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}

	return &Producer{
		Config: config,
		Logger: logger,
		writer: writer,
	}, nil
}

// Publish mã hoá value thành JSON rồi gửi với key
func (p *Producer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonBytes,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// PublishSnapshot gửi SnapshotEvent với key là loại snapshot
func (p *Producer) PublishSnapshot(ctx context.Context, ev SnapshotEvent) error {
	if err := p.Publish(ctx, ev.Kind, ev); err != nil {
		return err
	}
	p.Logger.Debug(ctx, "Đã gửi sự kiện %s cho file %s", ev.Kind, ev.Path)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
