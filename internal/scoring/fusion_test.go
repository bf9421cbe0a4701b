package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

func TestFuse_HateBoostRaisesScore(t *testing.T) {
	report := BuildReport([]models.DetectionHit{{Term: "kill", Tier: models.TierCritical}}, 0.6)
	sentiment := models.SentimentSignal{Label: "hate", IsHate: true, Confidence: 0.5}

	fused := Fuse(report, sentiment, nil)

	// 0.6 + 0.3*0.5 = 0.75，warning 升级为 danger
	assert.Equal(t, 0.6, fused.LexicalScore)
	assert.Equal(t, 0.75, fused.FinalScore)
	assert.Equal(t, models.RiskDanger, fused.Level)
}

func TestFuse_NonHateSignalHasNoEffect(t *testing.T) {
	report := BuildReport([]models.DetectionHit{{Term: "kill", Tier: models.TierCritical}}, 0.6)
	sentiment := models.SentimentSignal{Label: "neutral", IsHate: false, Confidence: 0.9}

	fused := Fuse(report, sentiment, nil)
	assert.Equal(t, 0.6, fused.FinalScore)
	assert.Equal(t, models.RiskWarning, fused.Level)
}

func TestFuse_NeverLowersLexicalScore(t *testing.T) {
	report := BuildReport([]models.DetectionHit{{Term: "kill", Tier: models.TierCritical}}, 0.9)
	sentiment := models.SentimentSignal{Label: "hate", IsHate: true, Confidence: 0}

	fused := Fuse(report, sentiment, nil)
	assert.GreaterOrEqual(t, fused.FinalScore, report.Score)
}

func TestFuse_CapsAtOne(t *testing.T) {
	report := BuildReport([]models.DetectionHit{{Term: "kill", Tier: models.TierCritical}}, 0.95)
	sentiment := models.SentimentSignal{Label: "hate", IsHate: true, Confidence: 1.0}

	fused := Fuse(report, sentiment, nil)
	assert.Equal(t, 1.0, fused.FinalScore)
	assert.Equal(t, models.RiskDanger, fused.Level)
}

func TestFuse_ZeroLexicalWithHateStaysBounded(t *testing.T) {
	report := BuildReport(nil, 0)
	sentiment := models.SentimentSignal{Label: "hate", IsHate: true, Confidence: 1.0}

	fused := Fuse(report, sentiment, nil)
	// 无词法命中时仍可被情感信号抬到 0.3（suspicious）
	assert.Equal(t, 0.3, fused.FinalScore)
	assert.Equal(t, models.RiskSuspicious, fused.Level)

	// 提示语必须与等级一致：非 safe 等级不能携带 safe 文案
	assert.NotEqual(t, SafeMessage, fused.Message)
	assert.Contains(t, fused.Message, "30.0%")
}

func TestFuse_EmotionPassesThrough(t *testing.T) {
	report := BuildReport(nil, 0)
	emotion := &models.EmotionSignal{Label: "screaming", Confidence: 0.8}

	fused := Fuse(report, models.SentimentSignal{Label: "neutral"}, emotion)
	// 情绪信号只透出，不参与数值融合
	assert.Equal(t, 0.0, fused.FinalScore)
	assert.Equal(t, "screaming", fused.Emotion.Label)
}

func TestFuse_MessageRederivedFromFinalScore(t *testing.T) {
	hits := []models.DetectionHit{{Term: "kill", Tier: models.TierCritical}}
	report := BuildReport(hits, 0.6)
	sentiment := models.SentimentSignal{Label: "hate", IsHate: true, Confidence: 0.5}

	fused := Fuse(report, sentiment, nil)
	assert.Contains(t, fused.Message, "75.0%")
}
