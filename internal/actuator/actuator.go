// Package actuator 提供摄像头联动触发器（尽力而为的外部调用）
package actuator

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// Request 摄像头开启请求
type Request struct {
	Reason     string  `json:"reason"`
	Score      float64 `json:"score,omitempty"`
	HeartRate  int     `json:"heart_rate,omitempty"`
	DeviceID   string  `json:"device_id,omitempty"`
	GuardianID string  `json:"guardian_id,omitempty"`
	Excerpt    string  `json:"excerpt,omitempty"`
}

// 触发原因
const (
	ReasonThreatAssessment = "threat_assessment"
	ReasonHeartRate        = "heart_rate"
)

// Trigger 摄像头联动触发器
// 每个事件只尝试一次：超时与网络错误记录日志后丢弃，不影响主请求路径
type Trigger struct {
	client    *resty.Client
	url       string
	threshold float64
	logger    *zap.Logger
}

// NewTrigger 创建触发器
// url 为空时触发器处于禁用状态（所有调用为 no-op）
// 不配置重试：投递语义为每事件至多一次
func NewTrigger(url string, threshold float64, timeout time.Duration, logger *zap.Logger) *Trigger {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Trigger{
		client:    client,
		url:       url,
		threshold: threshold,
		logger:    logger,
	}
}

// TriggerForAssessment 融合评估分数跨过阈值时请求开启摄像头
func (t *Trigger) TriggerForAssessment(ctx context.Context, assessment models.FusedAssessment, guardianID, excerpt string) {
	if t.url == "" {
		return
	}
	if assessment.FinalScore < t.threshold {
		return
	}

	t.fire(ctx, Request{
		Reason:     ReasonThreatAssessment,
		Score:      assessment.FinalScore,
		GuardianID: guardianID,
		Excerpt:    excerpt,
	})
}

// TriggerForHeartRate 心率事件分类为 CRITICAL 时请求开启摄像头
func (t *Trigger) TriggerForHeartRate(ctx context.Context, event models.HeartRateEvent, cls models.HeartRateClassification) {
	if t.url == "" {
		return
	}
	if cls.Severity != models.SeverityCritical {
		return
	}

	t.fire(ctx, Request{
		Reason:     ReasonHeartRate,
		HeartRate:  event.Value,
		DeviceID:   event.DeviceID,
		GuardianID: event.GuardianID,
	})
}

// fire 发起外部调用（内联等待，超时受 client timeout 约束）
// 失败只记录日志，绝不向请求路径抛出
func (t *Trigger) fire(ctx context.Context, req Request) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(t.url)

	if err != nil {
		t.logger.Warn("Camera activation call failed",
			zap.String("reason", req.Reason),
			zap.Error(err),
		)
		return
	}

	if resp.IsError() {
		t.logger.Warn("Camera activation endpoint returned error",
			zap.String("reason", req.Reason),
			zap.Int("status_code", resp.StatusCode()),
		)
		return
	}

	t.logger.Info("Camera activation requested",
		zap.String("reason", req.Reason),
		zap.Float64("score", req.Score),
		zap.Int("heart_rate", req.HeartRate),
		zap.String("guardian_id", req.GuardianID),
	)
}
