// Package repository 提供词库 term-tier 表的只读加载
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// LexiconRepository 词库仓库（仅启动时读取一次，无其它持久化）
type LexiconRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLexiconRepository 创建词库仓库
func NewLexiconRepository(db *sql.DB, logger *zap.Logger) *LexiconRepository {
	return &LexiconRepository{
		db:     db,
		logger: logger,
	}
}

// LoadEntries 加载全部词库条目
// 未知等级的条目跳过并告警，不中断加载
func (r *LexiconRepository) LoadEntries(ctx context.Context) ([]models.LexiconEntry, error) {
	query := `
		SELECT term, tier, locale
		FROM lexicon_terms
		ORDER BY tier, term`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lexicon_terms: %w", err)
	}
	defer rows.Close()

	var entries []models.LexiconEntry
	for rows.Next() {
		var e models.LexiconEntry
		if err := rows.Scan(&e.Term, &e.Tier, &e.Locale); err != nil {
			return nil, fmt.Errorf("failed to scan lexicon entry: %w", err)
		}

		switch e.Tier {
		case models.TierCritical, models.TierWarning, models.TierSuspicious:
			entries = append(entries, e)
		default:
			r.logger.Warn("Skipping lexicon entry with unknown tier",
				zap.String("term", e.Term),
				zap.String("tier", e.Tier),
			)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lexicon entries: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("lexicon_terms table is empty")
	}

	r.logger.Info("Lexicon entries loaded from database",
		zap.Int("entry_count", len(entries)),
	)

	return entries, nil
}
