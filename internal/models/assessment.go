package models

// 风险等级（score 的单调映射，全系统统一使用）
const (
	RiskSafe       = "safe"
	RiskSuspicious = "suspicious"
	RiskWarning    = "warning"
	RiskDanger     = "danger"
)

// 词条严重等级
const (
	TierCritical   = "critical"
	TierWarning    = "warning"
	TierSuspicious = "suspicious"
)

// LexiconEntry 词库条目（进程级不可变）
type LexiconEntry struct {
	Term   string `json:"term"`
	Tier   string `json:"tier"`
	Locale string `json:"locale"`
}

// DetectionHit 单次扫描的命中词条（同一词条在一次扫描中只报告一次）
// Weight 由 Tier 固定决定，不随词条变化
type DetectionHit struct {
	Term   string  `json:"term"`
	Tier   string  `json:"tier"`
	Weight float64 `json:"weight"`
	Locale string  `json:"locale"`
}

// ThreatReport 词法威胁报告
type ThreatReport struct {
	Hits    []DetectionHit `json:"hits"`
	Score   float64        `json:"score"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
}

// SentimentSignal 仇恨言论分类器返回的情感信号
type SentimentSignal struct {
	Label      string  `json:"label"`
	RawScore   float64 `json:"raw_score"`
	IsHate     bool    `json:"is_hate"`
	Confidence float64 `json:"confidence"`
}

// AudioFeatures 音频特征统计（由特征提取协作方提供）
type AudioFeatures struct {
	Energy       float64 `json:"energy"`
	Pitch        float64 `json:"pitch"`
	ZeroCrossing float64 `json:"zero_crossing"`
}

// EmotionSignal 启发式音频情绪估计（仅音频请求携带）
type EmotionSignal struct {
	Label            string         `json:"label"`
	Confidence       float64        `json:"confidence"`
	Features         *AudioFeatures `json:"features,omitempty"`
	SuggestedMessage string         `json:"suggested_message,omitempty"`
}

// FusedAssessment 多信号融合评估结果
// FinalScore 恒不小于 LexicalScore（融合只会抬高分数）
type FusedAssessment struct {
	LexicalScore float64         `json:"lexical_score"`
	Sentiment    SentimentSignal `json:"sentiment"`
	Emotion      *EmotionSignal  `json:"emotion,omitempty"`
	FinalScore   float64         `json:"final_score"`
	Level        string          `json:"level"`
	Message      string          `json:"message"`
}

// AnalysisResult 一次文本/音频分析请求的完整结果
type AnalysisResult struct {
	Transcription string          `json:"transcription,omitempty"`
	Report        ThreatReport    `json:"report"`
	Assessment    FusedAssessment `json:"assessment"`
}
