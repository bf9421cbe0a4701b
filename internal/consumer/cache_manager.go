// Package consumer 提供心率遥测的流消费与最新分类缓存
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
)

// CachedVitals 设备最新心率分类缓存条目
type CachedVitals struct {
	Event          models.HeartRateEvent          `json:"event"`
	Classification models.HeartRateClassification `json:"classification"`
	UpdatedAt      int64                          `json:"updated_at"`
}

// CacheManager 最新心率分类缓存（按设备，带 TTL）
type CacheManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewCacheManager 创建缓存管理器
func NewCacheManager(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// UpdateLatest 写入设备最新心率分类
func (m *CacheManager) UpdateLatest(ctx context.Context, event models.HeartRateEvent, cls models.HeartRateClassification) error {
	entry := CachedVitals{
		Event:          event,
		Classification: cls,
		UpdatedAt:      time.Now().Unix(),
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cached vitals: %w", err)
	}

	key := m.cacheKey(event.DeviceID)
	ttl := time.Duration(m.config.Telemetry.CacheTTL) * time.Second

	if err := m.redisClient.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to update heart rate cache: %w", err)
	}

	return nil
}

// GetLatest 读取设备最新心率分类
func (m *CacheManager) GetLatest(ctx context.Context, deviceID string) (*CachedVitals, error) {
	key := m.cacheKey(deviceID)

	val, err := m.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("heart rate data not found for device: %s", deviceID)
		}
		return nil, fmt.Errorf("failed to get heart rate cache: %w", err)
	}

	var entry CachedVitals
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached vitals: %w", err)
	}

	return &entry, nil
}

// cacheKey 设备缓存键，如 "guardian:device:<id>:heartrate"
func (m *CacheManager) cacheKey(deviceID string) string {
	return m.config.Telemetry.CacheKeyPrefix + deviceID + m.config.Telemetry.CacheSuffix
}
