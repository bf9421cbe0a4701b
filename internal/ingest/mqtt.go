// Package ingest 提供可穿戴设备遥测的 MQTT 接入
//
// 设备在 guardian/wearable/<deviceID>/heartrate 主题上发布心率 JSON，
// 桥接器把载荷转发到 Redis 遥测流，由 StreamConsumer 统一消费。
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/config"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/redisutil"
)

// MQTTBridge 可穿戴设备遥测桥接器（MQTT -> Redis Stream）
type MQTTBridge struct {
	client      mqtt.Client
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewMQTTBridge 创建并连接 MQTT 桥接器
func NewMQTTBridge(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (*MQTTBridge, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.Broker)
	opts.SetClientID(cfg.MQTT.ClientID)

	if cfg.MQTT.Username != "" {
		opts.SetUsername(cfg.MQTT.Username)
	}
	if cfg.MQTT.Password != "" {
		opts.SetPassword(cfg.MQTT.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTBridge{
		client:      client,
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Start 订阅可穿戴设备遥测主题
func (b *MQTTBridge) Start() error {
	topic := b.config.MQTT.Topic

	token := b.client.Subscribe(topic, b.config.MQTT.QoS, func(client mqtt.Client, msg mqtt.Message) {
		if err := b.handleMessage(msg.Topic(), msg.Payload()); err != nil {
			// 记录错误，但不中断订阅
			b.logger.Warn("Failed to handle wearable message",
				zap.String("topic", msg.Topic()),
				zap.Error(err),
			)
		}
	})

	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}

	b.logger.Info("MQTT bridge started",
		zap.String("broker", b.config.MQTT.Broker),
		zap.String("topic", topic),
	)

	return nil
}

// Stop 断开 MQTT 连接
func (b *MQTTBridge) Stop() {
	b.client.Disconnect(250) // 250ms等待时间
}

// handleMessage 将设备载荷转发到遥测流
func (b *MQTTBridge) handleMessage(topic string, payload []byte) error {
	event, err := decodeWearablePayload(topic, payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisutil.PublishJSON(ctx, b.redisClient, b.config.Telemetry.Stream, event); err != nil {
		return fmt.Errorf("failed to publish to telemetry stream: %w", err)
	}

	b.logger.Debug("Forwarded wearable telemetry",
		zap.String("device_id", event.DeviceID),
		zap.Int("heart_rate", event.Value),
	)

	return nil
}

// decodeWearablePayload 解析可穿戴设备载荷
// device_id 缺失时回退到主题段 guardian/wearable/<deviceID>/heartrate
func decodeWearablePayload(topic string, payload []byte) (models.HeartRateEvent, error) {
	var event models.HeartRateEvent

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("invalid wearable payload: %w", err)
	}

	if event.DeviceID == "" {
		parts := strings.Split(topic, "/")
		if len(parts) >= 4 {
			event.DeviceID = parts[2]
		}
	}
	if event.DeviceID == "" {
		return event, fmt.Errorf("wearable payload missing device_id (topic: %s)", topic)
	}

	if event.Value < 0 {
		return event, fmt.Errorf("invalid heart rate value: %d", event.Value)
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	return event, nil
}
