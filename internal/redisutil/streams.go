// Package redisutil 提供 Redis Streams 读写辅助
package redisutil

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// StreamMessage Redis Streams 消息
type StreamMessage struct {
	Stream string
	ID     string
	Values map[string]interface{}
}

// PublishJSON 将数据 JSON 序列化后发布到 Stream
// 消息体为 {data: <json>, timestamp: <unix>}
func PublishJSON(ctx context.Context, client *redis.Client, stream string, data interface{}) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(jsonBytes),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
}

// ReadGroup 以消费者组方式读取 Stream 消息（阻塞 5 秒）
// 无新消息时返回空列表，不是错误
func ReadGroup(ctx context.Context, client *redis.Client, stream, group, consumer string, count int64) ([]StreamMessage, error) {
	streams, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    5 * time.Second,
	}).Result()

	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var messages []StreamMessage
	for _, s := range streams {
		for _, msg := range s.Messages {
			messages = append(messages, StreamMessage{
				Stream: s.Stream,
				ID:     msg.ID,
				Values: msg.Values,
			})
		}
	}

	return messages, nil
}

// EnsureGroup 创建消费者组（组已存在时忽略）
func EnsureGroup(ctx context.Context, client *redis.Client, stream, group string) error {
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Ack 确认消息已处理
func Ack(ctx context.Context, client *redis.Client, stream, group string, ids ...string) error {
	return client.XAck(ctx, stream, group, ids...).Err()
}
