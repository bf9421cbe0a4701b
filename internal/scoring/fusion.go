package scoring

import (
	"math"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// hateBoost 仇恨判定对分数的提升系数
const hateBoost = 0.3

// Fuse 将词法报告与情感信号（及可选的情绪信号）融合为最终评估
//
// combined = min(1.0, lexical + boost*confidence)，boost 仅在 isHate 时为 0.3
// finalScore = max(lexical, combined) —— 融合只会抬高分数，绝不降低
// 风险等级与提示信息由 finalScore 重新推导
// 情绪信号只随结果透出，不参与数值融合
func Fuse(report models.ThreatReport, sentiment models.SentimentSignal, emotion *models.EmotionSignal) models.FusedAssessment {
	boost := 0.0
	if sentiment.IsHate {
		boost = hateBoost
	}

	combined := math.Min(1.0, report.Score+boost*sentiment.Confidence)
	final := round3(math.Max(report.Score, combined))

	return models.FusedAssessment{
		LexicalScore: report.Score,
		Sentiment:    sentiment,
		Emotion:      emotion,
		FinalScore:   final,
		Level:        ClassifyScore(final),
		Message:      BuildMessage(report.Hits, final),
	}
}
