// Package collaborator 提供外部协作服务的客户端
//
// 三类协作方通过窄接口消费：
//   - 转写服务（Whisper）：失败对请求致命
//   - 情感分类服务：失败在边界处降级为中性信号
//   - 音频特征服务 + 本地启发式情绪估计：失败降级为 unknown 信号
package collaborator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Transcriber 语音转写协作方接口
type Transcriber interface {
	// Transcribe 将音频文件转写为文本，失败对请求致命
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperClient Whisper 转写服务客户端
type WhisperClient struct {
	client *resty.Client
	logger *zap.Logger
}

// NewWhisperClient 创建转写客户端
// token 非空时作为 Bearer Token 附带（转写服务的鉴权为可选）
func NewWhisperClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *WhisperClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	if token != "" {
		client.SetAuthToken(token)
	}

	return &WhisperClient{
		client: client,
		logger: logger,
	}
}

// Transcribe 调用转写服务
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	var result struct {
		Transcription string `json:"transcription"`
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFile("file", audioPath).
		SetResult(&result).
		Post("/transcribe")

	if err != nil {
		return "", fmt.Errorf("failed to call transcription service: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("transcription service returned status %d", resp.StatusCode())
	}

	c.logger.Info("Transcription completed",
		zap.Int("text_length", len(result.Transcription)),
	)

	return result.Transcription, nil
}
