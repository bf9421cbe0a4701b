package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/config"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/redisutil"
)

// Processor 心率事件处理器接口（由 service 层实现）
type Processor interface {
	ProcessHeartRate(ctx context.Context, event models.HeartRateEvent) models.HeartRateClassification
}

// StreamConsumer 可穿戴设备心率遥测流消费者
type StreamConsumer struct {
	config      *config.Config
	redisClient *redis.Client
	processor   Processor
	logger      *zap.Logger
}

// NewStreamConsumer 创建流消费者
func NewStreamConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	processor Processor,
	logger *zap.Logger,
) *StreamConsumer {
	return &StreamConsumer{
		config:      cfg,
		redisClient: redisClient,
		processor:   processor,
		logger:      logger,
	}
}

// Start 启动消费循环
func (c *StreamConsumer) Start(ctx context.Context) error {
	stream := c.config.Telemetry.Stream
	group := c.config.Telemetry.ConsumerGroup

	if err := redisutil.EnsureGroup(ctx, c.redisClient, stream, group); err != nil {
		return fmt.Errorf("failed to create consumer group for %s: %w", stream, err)
	}

	c.logger.Info("Telemetry stream consumer started",
		zap.String("stream", stream),
		zap.String("consumer_group", group),
		zap.String("consumer_name", c.config.Telemetry.ConsumerName),
	)

	backoffDuration := time.Second // 初始退避时间
	maxBackoff := 30 * time.Second // 最大退避时间

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Telemetry stream consumer stopped")
			return nil
		default:
			if err := c.consumeOnce(ctx); err != nil {
				c.logger.Error("Failed to consume telemetry stream",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				// 指数退避：等待后重试
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				backoffDuration = time.Second
			}
		}
	}
}

// consumeOnce 读取并处理一批消息
func (c *StreamConsumer) consumeOnce(ctx context.Context) error {
	messages, err := redisutil.ReadGroup(
		ctx,
		c.redisClient,
		c.config.Telemetry.Stream,
		c.config.Telemetry.ConsumerGroup,
		c.config.Telemetry.ConsumerName,
		c.config.Telemetry.BatchSize,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		if err := c.processMessage(ctx, msg); err != nil {
			c.logger.Error("Failed to process telemetry message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			// 继续处理下一条消息，不中断
		}

		if err := redisutil.Ack(ctx, c.redisClient, c.config.Telemetry.Stream, c.config.Telemetry.ConsumerGroup, msg.ID); err != nil {
			c.logger.Warn("Failed to ack telemetry message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// processMessage 处理单条遥测消息
func (c *StreamConsumer) processMessage(ctx context.Context, msg redisutil.StreamMessage) error {
	event, err := parseHeartRateMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to parse heart rate message: %w", err)
	}

	cls := c.processor.ProcessHeartRate(ctx, event)

	c.logger.Info("Processed heart rate telemetry",
		zap.String("device_id", event.DeviceID),
		zap.Int("heart_rate", event.Value),
		zap.String("severity", cls.Severity),
	)

	return nil
}

// parseHeartRateMessage 从 Stream 消息解析心率事件
// 消息格式为 PublishJSON 产生的 {data: <json>, timestamp: <unix>}
func parseHeartRateMessage(msg redisutil.StreamMessage) (models.HeartRateEvent, error) {
	var event models.HeartRateEvent

	raw, ok := msg.Values["data"].(string)
	if !ok || raw == "" {
		return event, fmt.Errorf("message %s has no data field", msg.ID)
	}

	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return event, fmt.Errorf("invalid heart rate payload: %w", err)
	}

	if event.DeviceID == "" {
		return event, fmt.Errorf("heart rate event missing device_id")
	}
	if event.Value < 0 {
		return event, fmt.Errorf("invalid heart rate value: %d", event.Value)
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	return event, nil
}
