package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/hub"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
)

func TestWSHandler_RequiresGuardianID(t *testing.T) {
	notifyHub := hub.NewHub(zap.NewNop())
	handler := NewWSHandler(notifyHub, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/guardian/api/v1/ws", nil)
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, notifyHub.Count())
}

func TestWSHandler_SubscribeAndReceiveAlert(t *testing.T) {
	notifyHub := hub.NewHub(zap.NewNop())
	handler := NewWSHandler(notifyHub, zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(handler.Serve))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?guardian_id=g1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return notifyHub.Count() == 1
	}, time.Second, 10*time.Millisecond)

	alert := models.AlertMessage{AlertID: "a1", Type: models.AlertTypeThreat, Level: models.RiskDanger}
	notifyHub.SendPersonal("g1", alert)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var received models.AlertMessage
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, "a1", received.AlertID)
	assert.Equal(t, models.AlertTypeThreat, received.Type)
}

func TestWSHandler_ClientDisconnectRemovesSubscriber(t *testing.T) {
	notifyHub := hub.NewHub(zap.NewNop())
	handler := NewWSHandler(notifyHub, zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(handler.Serve))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?guardian_id=g1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return notifyHub.Count() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool {
		return notifyHub.Count() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestWSHandler_ReconnectReplacesConnection(t *testing.T) {
	notifyHub := hub.NewHub(zap.NewNop())
	handler := NewWSHandler(notifyHub, zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(handler.Serve))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?guardian_id=g1"

	first, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer first.Close()

	second, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer second.Close()

	// 同一 guardian 重连后注册表仍只有一个条目
	require.Eventually(t, func() bool {
		return notifyHub.Count() == 1
	}, time.Second, 10*time.Millisecond)

	alert := models.AlertMessage{AlertID: "a2", Type: models.AlertTypeHeartRate}
	notifyHub.SendPersonal("g1", alert)

	second.SetReadDeadline(time.Now().Add(time.Second))
	var received models.AlertMessage
	require.NoError(t, second.ReadJSON(&received))
	assert.Equal(t, "a2", received.AlertID)
}
