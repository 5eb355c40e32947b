package kafka

import (
	"context"
	"encoding/json"
	"time"

	"remark-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AuditHandler 处理审计事件的回调函数
type AuditHandler func(event *AuditEvent) error

// StartAuditConsumer 启动审计事件消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartAuditConsumer(ctx context.Context, brokers []string, topic, groupID string, handler AuditHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka audit consumer stopped")
	}()

	logger.Info("Kafka audit consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var event AuditEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("Failed to unmarshal audit event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		if err := handler(&event); err != nil {
			logger.Error("Failed to handle audit event",
				zap.Error(err),
				zap.Int64("actor_id", event.ActorID),
				zap.String("action", event.Action),
			)
		}
	}
}
