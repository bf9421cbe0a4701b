package collaborator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.wav")
	require.NoError(t, os.WriteFile(path, []byte("fake-audio-bytes"), 0o644))
	return path
}

func TestWhisperClient_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "sample.wav", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"transcription": "I will kill you",
		})
	}))
	defer server.Close()

	client := NewWhisperClient(server.URL, "", 2*time.Second, zap.NewNop())
	text, err := client.Transcribe(context.Background(), writeTempAudio(t))

	require.NoError(t, err)
	assert.Equal(t, "I will kill you", text)
}

func TestWhisperClient_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"transcription": "ok"})
	}))
	defer server.Close()

	client := NewWhisperClient(server.URL, "secret-token", 2*time.Second, zap.NewNop())
	_, err := client.Transcribe(context.Background(), writeTempAudio(t))
	require.NoError(t, err)
}

func TestWhisperClient_ErrorStatusIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewWhisperClient(server.URL, "", 2*time.Second, zap.NewNop())
	_, err := client.Transcribe(context.Background(), writeTempAudio(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestWhisperClient_UnreachableIsFatal(t *testing.T) {
	client := NewWhisperClient("http://127.0.0.1:1", "", 100*time.Millisecond, zap.NewNop())
	_, err := client.Transcribe(context.Background(), writeTempAudio(t))
	require.Error(t, err)
}
