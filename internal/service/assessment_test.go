package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/actuator"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/hub"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/lexicon"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

// stubSentiment 固定情感信号
type stubSentiment struct {
	signal models.SentimentSignal
}

func (s *stubSentiment) Analyze(ctx context.Context, text string) models.SentimentSignal {
	return s.signal
}

// stubEmotion 固定情绪信号
type stubEmotion struct {
	signal models.EmotionSignal
}

func (s *stubEmotion) Estimate(ctx context.Context, audioPath string) models.EmotionSignal {
	return s.signal
}

// stubTranscriber 固定转写结果
type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return s.text, s.err
}

// fakeConn 测试用推送连接
type fakeConn struct {
	mu       sync.Mutex
	messages []interface{}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, v)
	return nil
}

func (c *fakeConn) first() (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return nil, false
	}
	return c.messages[0], true
}

func neutralSentimentStub() *stubSentiment {
	return &stubSentiment{signal: models.SentimentSignal{Label: "neutral"}}
}

func newTestService(t *testing.T, sentiment *stubSentiment, transcriber *stubTranscriber, emotion *stubEmotion, trigger *actuator.Trigger) (*AssessmentService, *hub.Hub) {
	t.Helper()
	log := zap.NewNop()

	store, err := lexicon.NewStore(lexicon.DefaultEntries(), "test", log)
	require.NoError(t, err)

	if trigger == nil {
		trigger = actuator.NewTrigger("", 0.5, time.Second, log)
	}

	h := hub.NewHub(log)
	svc := NewAssessmentService(
		lexicon.NewScanner(store, log),
		sentiment,
		emotion,
		transcriber,
		h,
		trigger,
		log,
	)
	return svc, h
}

func TestAnalyzeText_EmptyTextRejected(t *testing.T) {
	svc, _ := newTestService(t, neutralSentimentStub(), &stubTranscriber{}, &stubEmotion{}, nil)

	_, err := svc.AnalyzeText(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = svc.AnalyzeText(context.Background(), "   ", "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestAnalyzeText_SingleCriticalScenario(t *testing.T) {
	svc, _ := newTestService(t, neutralSentimentStub(), &stubTranscriber{}, &stubEmotion{}, nil)

	result, err := svc.AnalyzeText(context.Background(), "I will kill you", "")
	require.NoError(t, err)

	assert.Equal(t, 0.6, result.Report.Score)
	assert.Equal(t, models.RiskWarning, result.Assessment.Level)
	assert.Equal(t, 0.6, result.Assessment.FinalScore)
	assert.Empty(t, result.Transcription)
	require.Len(t, result.Report.Hits, 1)
	assert.Equal(t, "kill", result.Report.Hits[0].Term)
}

func TestAnalyzeText_SafeText(t *testing.T) {
	svc, _ := newTestService(t, neutralSentimentStub(), &stubTranscriber{}, &stubEmotion{}, nil)

	result, err := svc.AnalyzeText(context.Background(), "what a lovely sunny day", "")
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Assessment.FinalScore)
	assert.Equal(t, models.RiskSafe, result.Assessment.Level)
}

func TestAnalyzeText_HateSignalUpgradesLevel(t *testing.T) {
	sentiment := &stubSentiment{signal: models.SentimentSignal{
		Label: "hate", IsHate: true, Confidence: 0.5,
	}}
	svc, _ := newTestService(t, sentiment, &stubTranscriber{}, &stubEmotion{}, nil)

	result, err := svc.AnalyzeText(context.Background(), "I will kill you", "")
	require.NoError(t, err)

	// 0.6 + 0.3*0.5 = 0.75
	assert.Equal(t, 0.75, result.Assessment.FinalScore)
	assert.Equal(t, models.RiskDanger, result.Assessment.Level)
}

func TestAnalyzeText_NotifiesGuardian(t *testing.T) {
	svc, h := newTestService(t, neutralSentimentStub(), &stubTranscriber{}, &stubEmotion{}, nil)

	conn := &fakeConn{}
	h.Connect("g1", conn)

	_, err := svc.AnalyzeText(context.Background(), "I will kill you", "g1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, ok := conn.first()
		return ok
	}, time.Second, 10*time.Millisecond)

	msg, _ := conn.first()
	alert, ok := msg.(models.AlertMessage)
	require.True(t, ok)
	assert.Equal(t, models.AlertTypeThreat, alert.Type)
	assert.Equal(t, models.RiskWarning, alert.Level)
}

func TestAnalyzeText_TriggersActuatorAboveThreshold(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	trigger := actuator.NewTrigger(server.URL, 0.5, 2*time.Second, zap.NewNop())
	svc, _ := newTestService(t, neutralSentimentStub(), &stubTranscriber{}, &stubEmotion{}, trigger)

	// 0.6 >= 0.5 触发
	_, err := svc.AnalyzeText(context.Background(), "I will kill you", "")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// safe 文本不触发
	_, err = svc.AnalyzeText(context.Background(), "nice weather today", "")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAnalyzeAudio_FullPipeline(t *testing.T) {
	emotion := &stubEmotion{signal: models.EmotionSignal{Label: "screaming", Confidence: 0.8}}
	transcriber := &stubTranscriber{text: "I will kill you"}
	svc, _ := newTestService(t, neutralSentimentStub(), transcriber, emotion, nil)

	result, err := svc.AnalyzeAudio(context.Background(), "/tmp/audio.wav", "")
	require.NoError(t, err)

	assert.Equal(t, "I will kill you", result.Transcription)
	assert.Equal(t, 0.6, result.Assessment.FinalScore)
	require.NotNil(t, result.Assessment.Emotion)
	assert.Equal(t, "screaming", result.Assessment.Emotion.Label)
}

func TestAnalyzeAudio_TranscriptionFailureIsFatal(t *testing.T) {
	transcriber := &stubTranscriber{err: errors.New("whisper unavailable")}
	svc, _ := newTestService(t, neutralSentimentStub(), transcriber, &stubEmotion{}, nil)

	_, err := svc.AnalyzeAudio(context.Background(), "/tmp/audio.wav", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription failed")
}

func TestExcerpt_TruncatesLongText(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "abcd"
	}
	assert.Len(t, []rune(excerpt(long)), excerptLimit)
	assert.Equal(t, "short", excerpt("short"))
}
