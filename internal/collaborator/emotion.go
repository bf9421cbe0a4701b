package collaborator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// EmotionEstimator 音频情绪估计接口
// 实现方必须降级为 unknown 信号而不是传播失败
type EmotionEstimator interface {
	Estimate(ctx context.Context, audioPath string) models.EmotionSignal
}

// FeatureExtractor 音频特征提取协作方接口
// 从原始音频提取能量/音高/过零率统计
type FeatureExtractor interface {
	Extract(ctx context.Context, audioPath string) (*models.AudioFeatures, error)
}

// NeutralEmotion 未知情绪信号（特征提取失败时的替代值）
func NeutralEmotion() models.EmotionSignal {
	return models.EmotionSignal{
		Label:      "unknown",
		Confidence: 0,
	}
}

// FeatureClient 音频特征提取服务客户端
type FeatureClient struct {
	client *resty.Client
	logger *zap.Logger
}

// NewFeatureClient 创建特征提取客户端
func NewFeatureClient(baseURL string, timeout time.Duration, logger *zap.Logger) *FeatureClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &FeatureClient{
		client: client,
		logger: logger,
	}
}

// Extract 调用特征提取服务
func (c *FeatureClient) Extract(ctx context.Context, audioPath string) (*models.AudioFeatures, error) {
	var result models.AudioFeatures

	resp, err := c.client.R().
		SetContext(ctx).
		SetFile("file", audioPath).
		SetResult(&result).
		Post("/features")

	if err != nil {
		return nil, fmt.Errorf("failed to call audio feature service: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("audio feature service returned status %d", resp.StatusCode())
	}

	return &result, nil
}

// HeuristicEstimator 启发式情绪估计器
// 特征提取交给协作方，标签判定为本地启发式规则
type HeuristicEstimator struct {
	features FeatureExtractor
	logger   *zap.Logger
}

// NewHeuristicEstimator 创建情绪估计器
func NewHeuristicEstimator(features FeatureExtractor, logger *zap.Logger) *HeuristicEstimator {
	return &HeuristicEstimator{
		features: features,
		logger:   logger,
	}
}

// Estimate 估计音频情绪
// 特征提取失败时降级为 unknown 信号，绝不向上传播失败
func (e *HeuristicEstimator) Estimate(ctx context.Context, audioPath string) models.EmotionSignal {
	feats, err := e.features.Extract(ctx, audioPath)
	if err != nil {
		e.logger.Warn("Audio feature extraction failed, using neutral emotion",
			zap.Error(err),
		)
		return NeutralEmotion()
	}

	return classifyFeatures(feats)
}

// classifyFeatures 基于能量/音高/过零率的启发式情绪规则
func classifyFeatures(f *models.AudioFeatures) models.EmotionSignal {
	switch {
	case f.Energy > 0.7 && f.Pitch > 300:
		return models.EmotionSignal{
			Label:            "screaming",
			Confidence:       0.8,
			Features:         f,
			SuggestedMessage: "High-distress vocal pattern detected.",
		}
	case f.Energy > 0.5 && f.ZeroCrossing > 0.3:
		return models.EmotionSignal{
			Label:            "crying",
			Confidence:       0.6,
			Features:         f,
			SuggestedMessage: "Crying-like vocal pattern detected.",
		}
	case f.Energy < 0.1:
		return models.EmotionSignal{
			Label:      "quiet",
			Confidence: 0.5,
			Features:   f,
		}
	default:
		return models.EmotionSignal{
			Label:      "calm",
			Confidence: 0.4,
			Features:   f,
		}
	}
}
