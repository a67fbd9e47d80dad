package kafka_infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one fetched Kafka message. A nil return commits
// the offset; an error leaves it uncommitted for redelivery.
type MessageHandler func(ctx context.Context, msg kafka.Message) error

type Consumer struct {
	reader  *kafka.Reader
	logger  *zap.Logger
	topic   string
	groupID string
}

func NewConsumer(brokerURLs []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokerURLs,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		ReadBatchTimeout:  1 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		MaxAttempts:       3,
		Logger:            kafka.LoggerFunc(func(msg string, args ...interface{}) { logger.Debug(fmt.Sprintf(msg, args...)) }),
		ErrorLogger:       kafka.LoggerFunc(func(msg string, args ...interface{}) { logger.Error(fmt.Sprintf(msg, args...)) }),
	})

	return &Consumer{
		reader:  reader,
		logger:  logger,
		topic:   topic,
		groupID: groupID,
	}
}

// Run fetches messages until ctx is cancelled, handing each to handler and
// committing the offset only when the handler returns nil.
func (c *Consumer) Run(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Kafka consumer starting",
		zap.String("topic", c.topic),
		zap.String("group_id", c.groupID),
	)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				c.logger.Info("Kafka consumer stopping", zap.String("topic", c.topic))
				return nil
			}
			c.logger.Error("Failed to fetch message from Kafka", zap.String("topic", c.topic), zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(1 * time.Second):
			}
			continue
		}

		if handlerErr := handler(ctx, msg); handlerErr != nil {
			c.logger.Error("Error handling Kafka message, offset not committed",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(handlerErr),
			)
			continue
		}

		if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
			c.logger.Error("Failed to commit offset for Kafka message",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(commitErr),
			)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
