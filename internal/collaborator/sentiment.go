package collaborator

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// SentimentAnalyzer 仇恨言论分类协作方接口
// 实现方必须在内部兜住失败并返回中性信号，保证核心流程总能完成
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) models.SentimentSignal
}

// NeutralSentiment 中性情感信号（协作方失败时的替代值）
func NeutralSentiment() models.SentimentSignal {
	return models.SentimentSignal{
		Label:      "neutral",
		RawScore:   0,
		IsHate:     false,
		Confidence: 0,
	}
}

// SentimentClient 仇恨言论分类服务客户端
type SentimentClient struct {
	client *resty.Client
	logger *zap.Logger
}

// NewSentimentClient 创建情感分类客户端
func NewSentimentClient(baseURL string, timeout time.Duration, logger *zap.Logger) *SentimentClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &SentimentClient{
		client: client,
		logger: logger,
	}
}

// Analyze 调用分类服务并映射为 SentimentSignal
// 任何失败（网络错误、非 2xx、畸形响应）都降级为中性信号，不向上传播
func (c *SentimentClient) Analyze(ctx context.Context, text string) models.SentimentSignal {
	var result struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		SetResult(&result).
		Post("/classify")

	if err != nil {
		c.logger.Warn("Sentiment service call failed, using neutral signal",
			zap.Error(err),
		)
		return NeutralSentiment()
	}
	if resp.IsError() {
		c.logger.Warn("Sentiment service returned error, using neutral signal",
			zap.Int("status_code", resp.StatusCode()),
		)
		return NeutralSentiment()
	}
	if result.Label == "" {
		c.logger.Warn("Sentiment service returned empty label, using neutral signal")
		return NeutralSentiment()
	}

	confidence := result.Score
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return models.SentimentSignal{
		Label:      result.Label,
		RawScore:   result.Score,
		IsHate:     isHateLabel(result.Label),
		Confidence: confidence,
	}
}

// isHateLabel 判断分类标签是否属于仇恨言论
func isHateLabel(label string) bool {
	switch strings.ToLower(label) {
	case "hate", "hateful", "hate_speech":
		return true
	default:
		return false
	}
}
