// Package vitals 提供心率严重度分类
package vitals

import (
	"fmt"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// Classify 心率严重度分类（纯函数，按固定优先级顺序评估）
//
// ==0 → CRITICAL/danger；<40 → WARNING_LOW/warning；>180 → WARNING_HIGH/warning；
// <60 → LOW/suspicious；>100 → HIGH/suspicious；其余 → NORMAL/safe
// RequiresAction 仅在 CRITICAL 与两种 WARNING 时为 true
func Classify(bpm int) models.HeartRateClassification {
	switch {
	case bpm == 0:
		return models.HeartRateClassification{
			Severity:       models.SeverityCritical,
			RiskLevel:      models.RiskDanger,
			Message:        "No heartbeat detected (0 BPM). Immediate attention required.",
			RequiresAction: true,
		}
	case bpm < 40:
		return models.HeartRateClassification{
			Severity:       models.SeverityWarningLow,
			RiskLevel:      models.RiskWarning,
			Message:        fmt.Sprintf("Heart rate critically low: %d BPM.", bpm),
			RequiresAction: true,
		}
	case bpm > 180:
		return models.HeartRateClassification{
			Severity:       models.SeverityWarningHigh,
			RiskLevel:      models.RiskWarning,
			Message:        fmt.Sprintf("Heart rate critically high: %d BPM.", bpm),
			RequiresAction: true,
		}
	case bpm < 60:
		return models.HeartRateClassification{
			Severity:       models.SeverityLow,
			RiskLevel:      models.RiskSuspicious,
			Message:        fmt.Sprintf("Heart rate below normal: %d BPM.", bpm),
			RequiresAction: false,
		}
	case bpm > 100:
		return models.HeartRateClassification{
			Severity:       models.SeverityHigh,
			RiskLevel:      models.RiskSuspicious,
			Message:        fmt.Sprintf("Heart rate above normal: %d BPM.", bpm),
			RequiresAction: false,
		}
	default:
		return models.HeartRateClassification{
			Severity:       models.SeverityNormal,
			RiskLevel:      models.RiskSafe,
			Message:        fmt.Sprintf("Heart rate normal: %d BPM.", bpm),
			RequiresAction: false,
		}
	}
}
