package models

// 心率严重度（按 vitals.Classify 的优先级顺序产生）
const (
	SeverityCritical    = "CRITICAL"
	SeverityWarningLow  = "WARNING_LOW"
	SeverityWarningHigh = "WARNING_HIGH"
	SeverityLow         = "LOW"
	SeverityHigh        = "HIGH"
	SeverityNormal      = "NORMAL"
)

// HeartRateEvent 可穿戴设备上报的心率遥测事件
type HeartRateEvent struct {
	Value      int    `json:"heart_rate"`
	DeviceID   string `json:"device_id"`
	AlertType  string `json:"alert_type,omitempty"`
	Timestamp  int64  `json:"timestamp"`
	GuardianID string `json:"guardian_id,omitempty"`
}

// HeartRateClassification 心率严重度分类结果
type HeartRateClassification struct {
	Severity       string `json:"severity"`
	RiskLevel      string `json:"risk_level"`
	Message        string `json:"message"`
	RequiresAction bool   `json:"requires_action"`
}
