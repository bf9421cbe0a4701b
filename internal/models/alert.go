package models

import (
	"time"

	"github.com/google/uuid"
)

// 告警消息类型
const (
	AlertTypeThreat    = "threat_alert"
	AlertTypeHeartRate = "heart_rate_alert"
)

// AlertMessage 推送给监护人客户端的实时告警
// 投递为尽力而为：无确认、无重试、至多一次
type AlertMessage struct {
	AlertID   string      `json:"alert_id"`
	Type      string      `json:"type"`
	Level     string      `json:"level"`
	Message   string      `json:"message"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// NewThreatAlert 构造文本威胁告警
func NewThreatAlert(assessment FusedAssessment) AlertMessage {
	return AlertMessage{
		AlertID:   uuid.New().String(),
		Type:      AlertTypeThreat,
		Level:     assessment.Level,
		Message:   assessment.Message,
		Payload:   assessment,
		Timestamp: time.Now().Unix(),
	}
}

// NewHeartRateAlert 构造心率告警
func NewHeartRateAlert(event HeartRateEvent, cls HeartRateClassification) AlertMessage {
	return AlertMessage{
		AlertID:   uuid.New().String(),
		Type:      AlertTypeHeartRate,
		Level:     cls.RiskLevel,
		Message:   cls.Message,
		Payload: map[string]interface{}{
			"event":          event,
			"classification": cls,
		},
		Timestamp: time.Now().Unix(),
	}
}
