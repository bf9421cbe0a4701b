// Package scoring 提供危险分数聚合、风险分级与多信号融合
//
// 打分公式是刻意的非线性饱和设计：单个 critical 词条即把分数下限抬到 0.6，
// 体现"宁可误报"的告警策略。公式各步骤的数值必须与既有评分保持逐位一致。
package scoring

import (
	"math"
	"strings"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// ComputeScore 由命中列表与原始文本计算归一化危险分数 [0,1]
//
// 步骤：
//  1. 按等级统计命中数
//  2. 各等级封顶分：critical=min(c*0.4,1.0)，warning=min(w*0.2,0.6)，suspicious=min(s*0.1,0.3)
//  3. baseScore = critical + warning*0.7 + suspicious*0.5
//  4. 密度乘数：命中数/词数 >0.5→1.4，>0.3→1.25，>0.15→1.1，否则 1.0
//  5. 累计加成：n>=5→0.2，n>=3→0.1，n>=2→0.05
//  6. 混合等级加成（覆盖赋值，不是累加）：critical+warning→0.1，三个等级齐全→0.15
//  7. score = base*密度乘数 + 累计加成 + 混合加成
//  8. 下限兜底（按优先级取第一条命中规则）：c>=2→0.85，c==1→0.6，w>=3→0.55，w>=1→0.35，s>=1→0.15
//  9. 收敛到 [0,1]，保留 3 位小数；零命中恒为 0.0
func ComputeScore(hits []models.DetectionHit, text string) float64 {
	if len(hits) == 0 {
		return 0.0
	}

	// 1. 按等级统计
	var critical, warning, suspicious int
	for _, h := range hits {
		switch h.Tier {
		case models.TierCritical:
			critical++
		case models.TierWarning:
			warning++
		case models.TierSuspicious:
			suspicious++
		}
	}
	total := len(hits)

	// 2. 各等级封顶分
	criticalScore := math.Min(float64(critical)*0.4, 1.0)
	warningScore := math.Min(float64(warning)*0.2, 0.6)
	suspiciousScore := math.Min(float64(suspicious)*0.1, 0.3)

	// 3. 基础分
	baseScore := criticalScore + warningScore*0.7 + suspiciousScore*0.5

	// 4. 密度乘数
	words := wordCount(text)
	if words < 1 {
		words = 1
	}
	density := float64(total) / float64(words)
	multiplier := 1.0
	switch {
	case density > 0.5:
		multiplier = 1.4
	case density > 0.3:
		multiplier = 1.25
	case density > 0.15:
		multiplier = 1.1
	}

	// 5. 累计加成
	cumulativeBonus := 0.0
	switch {
	case total >= 5:
		cumulativeBonus = 0.2
	case total >= 3:
		cumulativeBonus = 0.1
	case total >= 2:
		cumulativeBonus = 0.05
	}

	// 6. 混合等级加成（覆盖赋值：三等级齐全时覆盖前一条，不做累加）
	mixedBonus := 0.0
	if critical > 0 && warning > 0 {
		mixedBonus = 0.1
	}
	if critical > 0 && warning > 0 && suspicious > 0 {
		mixedBonus = 0.15
	}

	// 7. 汇总
	score := baseScore*multiplier + cumulativeBonus + mixedBonus

	// 8. 下限兜底（第一条命中的规则生效）
	floor := 0.0
	switch {
	case critical >= 2:
		floor = 0.85
	case critical == 1:
		floor = 0.6
	case warning >= 3:
		floor = 0.55
	case warning >= 1:
		floor = 0.35
	case suspicious >= 1:
		floor = 0.15
	}
	if score < floor {
		score = floor
	}

	// 9. 收敛并保留 3 位小数
	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return round3(score)
}

// wordCount 按空白分词统计词数
func wordCount(text string) int {
	return len(strings.Fields(text))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
