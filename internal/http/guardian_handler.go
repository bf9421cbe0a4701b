package httpapi

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/consumer"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/service"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/storage"
)

// maxAudioUploadBytes 音频上传大小上限（32MB）
const maxAudioUploadBytes = 32 << 20

// allowedAudioExtensions 允许的音频文件后缀
var allowedAudioExtensions = map[string]bool{
	".ogg":  true,
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
}

// GuardianHandler 危险评估 API Handler
type GuardianHandler struct {
	assessment *service.AssessmentService
	heartRate  *service.HeartRateService
	cache      *consumer.CacheManager
	logger     *zap.Logger
}

// NewGuardianHandler 创建评估 Handler
// cache 可为 nil（未启用 Redis 时 latest 查询返回 503）
func NewGuardianHandler(
	assessment *service.AssessmentService,
	heartRate *service.HeartRateService,
	cache *consumer.CacheManager,
	logger *zap.Logger,
) *GuardianHandler {
	return &GuardianHandler{
		assessment: assessment,
		heartRate:  heartRate,
		cache:      cache,
		logger:     logger,
	}
}

// analyzeTextRequest 文本分析请求体
type analyzeTextRequest struct {
	Text       string `json:"text"`
	GuardianID string `json:"guardian_id,omitempty"`
}

// AnalyzeText 文本危险分析
func (h *GuardianHandler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. 参数解析
	var req analyzeTextRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	// 2. 调用 Service
	result, err := h.assessment.AnalyzeText(ctx, req.Text, req.GuardianID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyText) {
			writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
			return
		}
		h.logger.Error("AnalyzeText failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	// 3. 构建响应
	writeJSON(w, http.StatusOK, Ok(result))
}

// AnalyzeAudio 音频危险分析（multipart 上传，字段名 file）
func (h *GuardianHandler) AnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. 参数解析和验证
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("audio file is required (multipart field 'file')"))
		return
	}
	defer file.Close()

	if !isAllowedAudio(header) {
		writeJSON(w, http.StatusBadRequest, Fail("unsupported audio format: expected .ogg/.mp3/.wav/.m4a/.flac or audio/* content type"))
		return
	}

	// 多读 1 字节以区分"恰好达到上限"与"超限"，超限直接拒绝而不是静默截断
	data, err := io.ReadAll(io.LimitReader(file, maxAudioUploadBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("failed to read audio upload"))
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, Fail("audio file is empty"))
		return
	}
	if len(data) > maxAudioUploadBytes {
		writeJSON(w, http.StatusBadRequest, Fail("audio file exceeds 32MB limit"))
		return
	}

	guardianID := r.FormValue("guardian_id")
	if guardianID == "" {
		guardianID = r.URL.Query().Get("guardian_id")
	}

	// 2. 落盘临时文件（分析结束后清理）
	audioPath, err := storage.SaveAudioFile(data, filepath.Ext(header.Filename))
	if err != nil {
		h.logger.Error("Failed to save audio upload", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to save audio file"))
		return
	}
	defer storage.CleanupTempFile(audioPath, h.logger)

	// 3. 调用 Service（转写失败对请求致命）
	result, err := h.assessment.AnalyzeAudio(ctx, audioPath, guardianID)
	if err != nil {
		h.logger.Error("AnalyzeAudio failed",
			zap.String("filename", header.Filename),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	// 4. 构建响应
	writeJSON(w, http.StatusOK, Ok(result))
}

// HeartRate 直接上报心率事件（绕过 MQTT 链路的 HTTP 入口）
func (h *GuardianHandler) HeartRate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. 参数解析和验证
	var event models.HeartRateEvent
	if err := readBodyJSON(r, 1<<20, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	// 与遥测链路的解析校验保持一致：device_id 必填、心率非负
	if event.DeviceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("device_id is required"))
		return
	}
	if event.Value < 0 {
		writeJSON(w, http.StatusBadRequest, Fail("heart_rate must be non-negative"))
		return
	}

	// 2. 调用 Service
	cls := h.heartRate.ProcessHeartRate(ctx, event)

	// 3. 构建响应
	writeJSON(w, http.StatusOK, Ok(cls))
}

// LatestHeartRate 查询设备最新心率分类
func (h *GuardianHandler) LatestHeartRate(w http.ResponseWriter, r *http.Request, deviceID string) {
	ctx := r.Context()

	if h.cache == nil {
		writeJSON(w, http.StatusServiceUnavailable, Fail("heart rate cache is not enabled"))
		return
	}

	entry, err := h.cache.GetLatest(ctx, deviceID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(entry))
}

// Health 健康检查
func (h *GuardianHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
}

// isAllowedAudio 校验上传文件是否为支持的音频格式
// 后缀命中白名单，或 Content-Type 为 audio/* 时放行
func isAllowedAudio(header *multipart.FileHeader) bool {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if allowedAudioExtensions[ext] {
		return true
	}

	contentType := header.Header.Get("Content-Type")
	return strings.HasPrefix(contentType, "audio/")
}
