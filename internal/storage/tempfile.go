// Package storage 提供上传音频的临时文件处理
package storage

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// SaveAudioFile 将音频字节写入临时文件并返回路径
// suffix 为空时默认 ".wav"
func SaveAudioFile(data []byte, suffix string) (string, error) {
	if suffix == "" {
		suffix = ".wav"
	}

	f, err := os.CreateTemp("", "eve-guard-audio-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return f.Name(), nil
}

// CleanupTempFile 删除临时文件（不存在时忽略）
func CleanupTempFile(path string, logger *zap.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to cleanup temp file",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}
