package scoring

import (
	"fmt"
	"strings"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// SafeMessage 无威胁时的固定提示语
const SafeMessage = "No threatening language detected. Everything looks safe."

// ClassifyScore 分数到风险等级的确定性单调映射
// >=0.7 danger；>=0.4 warning；>0 suspicious；==0 safe
func ClassifyScore(score float64) string {
	switch {
	case score >= 0.7:
		return models.RiskDanger
	case score >= 0.4:
		return models.RiskWarning
	case score > 0:
		return models.RiskSuspicious
	default:
		return models.RiskSafe
	}
}

// BuildMessage 生成面向监护人的提示信息
// 按等级归组命中词条，并附上百分比形式的分数
// 固定提示语只属于 score == 0：融合可能在零命中时抬高分数，
// 此时提示语必须反映最终分数，不能回落到 safe 文案
func BuildMessage(hits []models.DetectionHit, score float64) string {
	if score == 0 {
		return SafeMessage
	}

	if len(hits) == 0 {
		return fmt.Sprintf("Elevated risk detected by sentiment analysis. Danger score: %.1f%%", score*100)
	}

	byTier := map[string][]string{}
	for _, h := range hits {
		byTier[h.Tier] = append(byTier[h.Tier], h.Term)
	}

	var parts []string
	for _, tier := range []string{models.TierCritical, models.TierWarning, models.TierSuspicious} {
		if terms := byTier[tier]; len(terms) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", tier, strings.Join(terms, ", ")))
		}
	}

	return fmt.Sprintf("Threatening language detected (%s). Danger score: %.1f%%",
		strings.Join(parts, "; "), score*100)
}

// BuildReport 组装词法威胁报告（score -> level -> message 保持一致推导）
func BuildReport(hits []models.DetectionHit, score float64) models.ThreatReport {
	return models.ThreatReport{
		Hits:    hits,
		Score:   score,
		Level:   ClassifyScore(score),
		Message: BuildMessage(hits, score),
	}
}
