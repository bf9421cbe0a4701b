package lexicon

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// Scanner 词法威胁扫描器
// 无状态，可从多个请求并发调用
type Scanner struct {
	store  *Store
	logger *zap.Logger
}

// NewScanner 创建扫描器
func NewScanner(store *Store, logger *zap.Logger) *Scanner {
	return &Scanner{
		store:  store,
		logger: logger,
	}
}

// Scan 扫描输入文本，返回按词条去重后的命中列表
// 两个匹配策略独立运行在同一输入上，结果合并后去重（同一词条首次命中生效）
// 无命中返回空列表，不是错误
func (s *Scanner) Scan(text string) []models.DetectionHit {
	if text == "" {
		return nil
	}

	var hits []models.DetectionHit
	seen := make(map[string]bool)

	// 1. 边界匹配（mixed 分区，大小写不敏感）
	for _, e := range s.store.mixed {
		if !e.pattern.MatchString(text) {
			continue
		}
		if seen[e.Term] {
			continue
		}
		seen[e.Term] = true
		hits = append(hits, models.DetectionHit{
			Term:   e.Term,
			Tier:   e.Tier,
			Weight: TierWeight(e.Tier),
			Locale: e.Locale,
		})
	}

	// 2. 子串匹配（ar 分区，无边界要求）
	for _, e := range s.store.arabic {
		if !strings.Contains(text, e.Term) {
			continue
		}
		if seen[e.Term] {
			continue
		}
		seen[e.Term] = true
		hits = append(hits, models.DetectionHit{
			Term:   e.Term,
			Tier:   e.Tier,
			Weight: TierWeight(e.Tier),
			Locale: e.Locale,
		})
	}

	if len(hits) > 0 {
		s.logger.Debug("Lexicon scan hits",
			zap.Int("hit_count", len(hits)),
			zap.String("lexicon_version", s.store.version),
		)
	}

	return hits
}
