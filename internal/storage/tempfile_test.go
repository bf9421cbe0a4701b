package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaveAudioFile(t *testing.T) {
	path, err := SaveAudioFile([]byte("audio-bytes"), ".mp3")
	require.NoError(t, err)
	defer os.Remove(path)

	assert.True(t, strings.HasSuffix(path, ".mp3"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), data)
}

func TestSaveAudioFile_DefaultSuffix(t *testing.T) {
	path, err := SaveAudioFile([]byte("x"), "")
	require.NoError(t, err)
	defer os.Remove(path)

	assert.True(t, strings.HasSuffix(path, ".wav"))
}

func TestCleanupTempFile(t *testing.T) {
	path, err := SaveAudioFile([]byte("x"), ".wav")
	require.NoError(t, err)

	CleanupTempFile(path, zap.NewNop())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// 幂等：重复清理与空路径都不报错
	CleanupTempFile(path, zap.NewNop())
	CleanupTempFile("", zap.NewNop())
}
