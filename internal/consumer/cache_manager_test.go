package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/config"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/vitals"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Telemetry.Stream = "guardian:heartrate:stream"
	cfg.Telemetry.ConsumerGroup = "eve-guard"
	cfg.Telemetry.ConsumerName = "eve-guard-test"
	cfg.Telemetry.BatchSize = 10
	cfg.Telemetry.CacheKeyPrefix = "guardian:device:"
	cfg.Telemetry.CacheSuffix = ":heartrate"
	cfg.Telemetry.CacheTTL = 300
	return cfg
}

func TestCacheManager_UpdateAndGetLatest(t *testing.T) {
	mr, client := newTestRedis(t)
	manager := NewCacheManager(newTestConfig(), client, zap.NewNop())
	ctx := context.Background()

	event := models.HeartRateEvent{Value: 35, DeviceID: "dev-1", Timestamp: 1700000000}
	cls := vitals.Classify(event.Value)

	require.NoError(t, manager.UpdateLatest(ctx, event, cls))

	entry, err := manager.GetLatest(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, 35, entry.Event.Value)
	assert.Equal(t, models.SeverityWarningLow, entry.Classification.Severity)
	assert.NotZero(t, entry.UpdatedAt)

	// TTL 已设置
	ttl := mr.TTL("guardian:device:dev-1:heartrate")
	assert.Equal(t, 300*time.Second, ttl)
}

func TestCacheManager_GetLatest_Miss(t *testing.T) {
	_, client := newTestRedis(t)
	manager := NewCacheManager(newTestConfig(), client, zap.NewNop())

	_, err := manager.GetLatest(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCacheManager_UpdateOverwritesPrevious(t *testing.T) {
	_, client := newTestRedis(t)
	manager := NewCacheManager(newTestConfig(), client, zap.NewNop())
	ctx := context.Background()

	first := models.HeartRateEvent{Value: 75, DeviceID: "dev-1"}
	require.NoError(t, manager.UpdateLatest(ctx, first, vitals.Classify(first.Value)))

	second := models.HeartRateEvent{Value: 0, DeviceID: "dev-1"}
	require.NoError(t, manager.UpdateLatest(ctx, second, vitals.Classify(second.Value)))

	entry, err := manager.GetLatest(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Event.Value)
	assert.Equal(t, models.SeverityCritical, entry.Classification.Severity)
}
