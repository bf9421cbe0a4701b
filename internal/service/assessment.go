// Package service 提供危险评估与心率处理的编排层
//
// 单次请求的计算顺序固定：扫描 -> 聚合 -> 融合 -> 分级 -> (通知、联动)。
// 通知与联动是相互独立的副作用，失败都不会影响主响应。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/actuator"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/collaborator"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/hub"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/lexicon"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/scoring"
)

// ErrEmptyText 空文本请求（校验错误，核心流程不会执行）
var ErrEmptyText = errors.New("text is required")

// excerptLimit 联动请求携带的文本摘录长度上限
const excerptLimit = 80

// AssessmentService 文本/音频危险评估服务
type AssessmentService struct {
	scanner     *lexicon.Scanner
	sentiment   collaborator.SentimentAnalyzer
	emotion     collaborator.EmotionEstimator
	transcriber collaborator.Transcriber
	hub         *hub.Hub
	trigger     *actuator.Trigger
	logger      *zap.Logger
}

// NewAssessmentService 创建评估服务
func NewAssessmentService(
	scanner *lexicon.Scanner,
	sentiment collaborator.SentimentAnalyzer,
	emotion collaborator.EmotionEstimator,
	transcriber collaborator.Transcriber,
	h *hub.Hub,
	trigger *actuator.Trigger,
	logger *zap.Logger,
) *AssessmentService {
	return &AssessmentService{
		scanner:     scanner,
		sentiment:   sentiment,
		emotion:     emotion,
		transcriber: transcriber,
		hub:         h,
		trigger:     trigger,
		logger:      logger,
	}
}

// ScanAndScore 词法扫描并生成威胁报告
func (s *AssessmentService) ScanAndScore(text string) models.ThreatReport {
	hits := s.scanner.Scan(text)
	score := scoring.ComputeScore(hits, text)
	return scoring.BuildReport(hits, score)
}

// AnalyzeText 分析直接输入的文本
func (s *AssessmentService) AnalyzeText(ctx context.Context, text, guardianID string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	return s.analyze(ctx, text, guardianID, nil, ""), nil
}

// AnalyzeAudio 分析上传的音频文件
// 转写失败对请求致命；情绪估计失败由协作方降级为 unknown 信号
func (s *AssessmentService) AnalyzeAudio(ctx context.Context, audioPath, guardianID string) (*models.AnalysisResult, error) {
	text, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	emotion := s.emotion.Estimate(ctx, audioPath)

	return s.analyze(ctx, text, guardianID, &emotion, text), nil
}

// analyze 评估主流程
func (s *AssessmentService) analyze(ctx context.Context, text, guardianID string, emotion *models.EmotionSignal, transcription string) *models.AnalysisResult {
	// 1. 词法扫描与打分
	report := s.ScanAndScore(text)

	// 2. 情感信号（协作方失败时已降级为中性信号）
	sentiment := s.sentiment.Analyze(ctx, text)

	// 3. 融合与分级
	assessment := scoring.Fuse(report, sentiment, emotion)

	s.logger.Info("Assessment completed",
		zap.Float64("lexical_score", report.Score),
		zap.Float64("final_score", assessment.FinalScore),
		zap.String("level", assessment.Level),
		zap.Int("hit_count", len(report.Hits)),
		zap.Bool("is_hate", sentiment.IsHate),
	)

	// 4. 推送告警（仅当已知监护人身份）
	if guardianID != "" {
		s.hub.SendPersonal(guardianID, models.NewThreatAlert(assessment))
	}

	// 5. 摄像头联动（内联等待，超时受限；失败被触发器兜住）
	s.trigger.TriggerForAssessment(ctx, assessment, guardianID, excerpt(text))

	return &models.AnalysisResult{
		Transcription: transcription,
		Report:        report,
		Assessment:    assessment,
	}
}

// excerpt 截取联动请求携带的文本摘录
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit])
}
