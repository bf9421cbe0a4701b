// Package lexicon 提供威胁词库与词法扫描功能
//
// 词库分为两个分区，匹配策略不同：
//   - mixed 分区（拉丁/混合文字）：单词边界 + 大小写不敏感的正则匹配
//   - ar 分区（阿拉伯语）：纯子串包含匹配（该文字的边界语义不可靠）
//
// 两个策略对同一输入各自独立运行，结果合并后按词条去重。
package lexicon

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// LocaleArabic 阿拉伯语分区的 locale 标记
const LocaleArabic = "ar"

// TierWeight 返回词条等级对应的固定权重
// critical=1.0, warning=0.6, suspicious=0.3；权重只由等级决定
func TierWeight(tier string) float64 {
	switch tier {
	case models.TierCritical:
		return 1.0
	case models.TierWarning:
		return 0.6
	case models.TierSuspicious:
		return 0.3
	default:
		return 0
	}
}

// entry 编译后的词库条目
// mixed 分区的条目携带边界正则；ar 分区的条目 pattern 为 nil（子串匹配）
type entry struct {
	models.LexiconEntry
	pattern *regexp.Regexp
}

// Store 不可变的版本化词库（进程启动时构建一次，之后只读）
type Store struct {
	version string
	mixed   []entry
	arabic  []entry
}

// NewStore 构建词库
// 按 locale 分区：locale == "ar" 进入子串分区，其余进入边界分区
// 注意：边界正则也会为 mixed 分区中的非拉丁条目编译（与既有行为保持一致，
// ASCII \b 对这些条目可能永远不命中，不在此处纠正）
func NewStore(entries []models.LexiconEntry, version string, logger *zap.Logger) (*Store, error) {
	s := &Store{version: version}

	for _, e := range entries {
		switch e.Tier {
		case models.TierCritical, models.TierWarning, models.TierSuspicious:
		default:
			return nil, fmt.Errorf("invalid tier %q for term %q", e.Tier, e.Term)
		}
		if e.Term == "" {
			return nil, fmt.Errorf("empty term in lexicon (tier=%s)", e.Tier)
		}

		if e.Locale == LocaleArabic {
			s.arabic = append(s.arabic, entry{LexiconEntry: e})
			continue
		}

		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(e.Term) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern for term %q: %w", e.Term, err)
		}
		s.mixed = append(s.mixed, entry{LexiconEntry: e, pattern: pattern})
	}

	logger.Info("Lexicon store built",
		zap.String("version", version),
		zap.Int("mixed_terms", len(s.mixed)),
		zap.Int("arabic_terms", len(s.arabic)),
	)

	return s, nil
}

// Version 词库版本
func (s *Store) Version() string {
	return s.version
}

// Size 词条总数
func (s *Store) Size() int {
	return len(s.mixed) + len(s.arabic)
}

// DefaultEntries 内置默认词库（数据库未启用或加载失败时使用）
func DefaultEntries() []models.LexiconEntry {
	return []models.LexiconEntry{
		// 拉丁/混合分区 - critical
		{Term: "kill", Tier: models.TierCritical, Locale: "en"},
		{Term: "murder", Tier: models.TierCritical, Locale: "en"},
		{Term: "knife", Tier: models.TierCritical, Locale: "en"},
		{Term: "gun", Tier: models.TierCritical, Locale: "en"},
		{Term: "shoot", Tier: models.TierCritical, Locale: "en"},
		{Term: "stab", Tier: models.TierCritical, Locale: "en"},
		{Term: "kidnap", Tier: models.TierCritical, Locale: "en"},
		{Term: "hurt you", Tier: models.TierCritical, Locale: "en"},
		{Term: "weapon", Tier: models.TierCritical, Locale: "en"},

		// 拉丁/混合分区 - warning
		{Term: "shut up", Tier: models.TierWarning, Locale: "en"},
		{Term: "stupid", Tier: models.TierWarning, Locale: "en"},
		{Term: "hate you", Tier: models.TierWarning, Locale: "en"},
		{Term: "hit", Tier: models.TierWarning, Locale: "en"},
		{Term: "slap", Tier: models.TierWarning, Locale: "en"},
		{Term: "beat", Tier: models.TierWarning, Locale: "en"},
		{Term: "punish", Tier: models.TierWarning, Locale: "en"},
		{Term: "scream", Tier: models.TierWarning, Locale: "en"},
		{Term: "threat", Tier: models.TierWarning, Locale: "en"},

		// 拉丁/混合分区 - suspicious
		{Term: "secret", Tier: models.TierSuspicious, Locale: "en"},
		{Term: "alone", Tier: models.TierSuspicious, Locale: "en"},
		{Term: "don't tell", Tier: models.TierSuspicious, Locale: "en"},
		{Term: "quiet", Tier: models.TierSuspicious, Locale: "en"},
		{Term: "afraid", Tier: models.TierSuspicious, Locale: "en"},
		{Term: "scared", Tier: models.TierSuspicious, Locale: "en"},
		{Term: "crying", Tier: models.TierSuspicious, Locale: "en"},

		// 阿拉伯语分区 - critical
		{Term: "اقتل", Tier: models.TierCritical, Locale: LocaleArabic},
		{Term: "سكين", Tier: models.TierCritical, Locale: LocaleArabic},
		{Term: "مسدس", Tier: models.TierCritical, Locale: LocaleArabic},
		{Term: "اخطف", Tier: models.TierCritical, Locale: LocaleArabic},
		{Term: "اذبح", Tier: models.TierCritical, Locale: LocaleArabic},

		// 阿拉伯语分区 - warning
		{Term: "اضرب", Tier: models.TierWarning, Locale: LocaleArabic},
		{Term: "اخرس", Tier: models.TierWarning, Locale: LocaleArabic},
		{Term: "غبي", Tier: models.TierWarning, Locale: LocaleArabic},
		{Term: "اكرهك", Tier: models.TierWarning, Locale: LocaleArabic},

		// 阿拉伯语分区 - suspicious
		{Term: "وحدك", Tier: models.TierSuspicious, Locale: LocaleArabic},
		{Term: "خائف", Tier: models.TierSuspicious, Locale: LocaleArabic},
		{Term: "لا تخبر", Tier: models.TierSuspicious, Locale: LocaleArabic},
	}
}
