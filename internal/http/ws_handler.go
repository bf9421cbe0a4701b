package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/hub"
)

// WSHandler 监护人 WebSocket 订阅入口
type WSHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWSHandler 创建 WebSocket Handler
func NewWSHandler(h *hub.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 移动端 App 直连，不做同源限制
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve 升级连接并注册到通知中心
// guardian_id 查询参数必填；同一 guardian_id 重连时替换旧连接
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	guardianID := r.URL.Query().Get("guardian_id")
	if guardianID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("guardian_id is required"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 已经写出了错误响应
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("guardian_id", guardianID),
			zap.Error(err),
		)
		return
	}

	h.hub.Connect(guardianID, conn)

	// 读循环只用于感知对端断开（不处理入站消息）
	go func() {
		defer func() {
			h.hub.DisconnectConn(guardianID, conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
