package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

func TestClassifyScore_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.0, models.RiskSafe},
		{0.001, models.RiskSuspicious},
		{0.15, models.RiskSuspicious},
		{0.399, models.RiskSuspicious},
		{0.4, models.RiskWarning},
		{0.6, models.RiskWarning},
		{0.699, models.RiskWarning},
		{0.7, models.RiskDanger},
		{1.0, models.RiskDanger},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyScore(tt.score), "score=%v", tt.score)
	}
}

func TestBuildMessage_Safe(t *testing.T) {
	assert.Equal(t, SafeMessage, BuildMessage(nil, 0))
}

func TestBuildMessage_NonZeroScoreWithoutHits(t *testing.T) {
	// 融合抬分后可能出现零命中但分数非零，此时不能返回 safe 文案
	msg := BuildMessage(nil, 0.3)
	assert.NotEqual(t, SafeMessage, msg)
	assert.Contains(t, msg, "30.0%")
}

func TestBuildMessage_GroupsByTier(t *testing.T) {
	hits := []models.DetectionHit{
		{Term: "kill", Tier: models.TierCritical},
		{Term: "stupid", Tier: models.TierWarning},
		{Term: "shut up", Tier: models.TierWarning},
	}

	msg := BuildMessage(hits, 0.6)
	assert.Equal(t, "Threatening language detected (critical: kill; warning: stupid, shut up). Danger score: 60.0%", msg)
}

func TestBuildReport_ConsistentDerivation(t *testing.T) {
	hits := []models.DetectionHit{{Term: "kill", Tier: models.TierCritical}}
	report := BuildReport(hits, 0.6)

	assert.Equal(t, 0.6, report.Score)
	assert.Equal(t, models.RiskWarning, report.Level)
	assert.Contains(t, report.Message, "kill")

	empty := BuildReport(nil, 0)
	assert.Equal(t, models.RiskSafe, empty.Level)
	assert.Equal(t, SafeMessage, empty.Message)
}
