package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMarker struct {
	mu    sync.Mutex
	calls [][2]int64
}

func (m *recordingMarker) MarkAsReadForParent(_ context.Context, parentID, notificationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, [2]int64{parentID, notificationID})
	return nil
}

func (m *recordingMarker) Calls() [][2]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][2]int64(nil), m.calls...)
}

func newTestServer(t *testing.T, userID int64) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { c.Set("userID", userID) }, NewHandler(hub, zerolog.Nop()).HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PushReachesUser(t *testing.T) {
	hub, srv, cancel := newTestServer(t, 7)
	defer cancel()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.GetClientsCount(7) == 1 }, time.Second, 10*time.Millisecond)

	assert.True(t, hub.Push(7, MessageTypeNotification, map[string]string{"title": "Vaccination"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string            `json:"type"`
		UserID  int64             `json:"userId"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTypeNotification, msg.Type)
	assert.Equal(t, int64(7), msg.UserID)
	assert.Equal(t, "Vaccination", msg.Payload["title"])
}

func TestHub_PushToOtherUserIsNotDelivered(t *testing.T) {
	hub, srv, cancel := newTestServer(t, 7)
	defer cancel()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.GetClientsCount(7) == 1 }, time.Second, 10*time.Millisecond)

	hub.Push(8, MessageTypeNotification, "not yours")

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub, srv, cancel := newTestServer(t, 3)
	defer cancel()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.GetClientsCount(3) == 1 }, time.Second, 10*time.Millisecond)

	conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.GetClientsCount(3) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMessageHandler_ReadAck(t *testing.T) {
	hub, srv, cancel := newTestServer(t, 11)
	defer cancel()

	marker := &recordingMarker{}
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	NewMessageHandler(marker, hub, zerolog.Nop()).Start(ctx)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.GetClientsCount(11) == 1 }, time.Second, 10*time.Millisecond)

	// userId in the payload is ignored in favor of the connection's user
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "read", "notificationId": 42, "userId": 99}))

	require.Eventually(t, func() bool { return len(marker.Calls()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, [2]int64{11, 42}, marker.Calls()[0])
}
