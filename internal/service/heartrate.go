package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/actuator"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/consumer"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/hub"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/vitals"
)

// HeartRateService 心率事件处理服务
// cache 可为 nil（未启用 Redis 时只做分类与通知）
type HeartRateService struct {
	cache   *consumer.CacheManager
	hub     *hub.Hub
	trigger *actuator.Trigger
	logger  *zap.Logger
}

// NewHeartRateService 创建心率服务
func NewHeartRateService(cache *consumer.CacheManager, h *hub.Hub, trigger *actuator.Trigger, logger *zap.Logger) *HeartRateService {
	return &HeartRateService{
		cache:   cache,
		hub:     h,
		trigger: trigger,
		logger:  logger,
	}
}

// ProcessHeartRate 分类心率事件并执行通知与联动
func (s *HeartRateService) ProcessHeartRate(ctx context.Context, event models.HeartRateEvent) models.HeartRateClassification {
	// 1. 按固定阈值分类
	cls := vitals.Classify(event.Value)

	// 2. 更新设备最新分类缓存（尽力而为）
	if s.cache != nil && event.DeviceID != "" {
		if err := s.cache.UpdateLatest(ctx, event, cls); err != nil {
			// 缓存失败不影响分类结果
			s.logger.Warn("Failed to cache heart rate classification",
				zap.String("device_id", event.DeviceID),
				zap.Error(err),
			)
		}
	}

	// 3. 非正常心率推送告警
	if cls.Severity != models.SeverityNormal {
		alert := models.NewHeartRateAlert(event, cls)
		if event.GuardianID != "" {
			s.hub.SendPersonal(event.GuardianID, alert)
		} else {
			s.hub.Broadcast(alert)
		}
	}

	// 4. 心跳停止时联动摄像头
	s.trigger.TriggerForHeartRate(ctx, event, cls)

	return cls
}
