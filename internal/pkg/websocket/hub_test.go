package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/placementhub/internal/pkg/notify"
)

func startHub(t *testing.T, userID int64, role string) (*notify.Store, *Hub, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := notify.NewStore()
	hub := NewHub(store, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("roleType", role)
	}, NewHandler(hub, nil, zerolog.Nop()).HandleConnection)
	srv := httptest.NewServer(r)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		srv.Close()
	})

	require.Eventually(t, func() bool { return hub.ClientCount(userID) == 1 }, time.Second, 10*time.Millisecond)
	return store, hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_DeliversOnlyVisibleNotifications(t *testing.T) {
	store, _, conn := startHub(t, 7, "STUDENT")

	store.Add(notify.Notification{Type: notify.TypeApplication, Title: "other user", UserID: 8})
	store.Add(notify.Notification{Type: notify.TypeJob, Title: "companies only", Role: "COMPANY"})
	store.Add(notify.Notification{Type: notify.TypeApplication, Title: "yours", UserID: 7})

	msg := readMessage(t, conn)
	assert.Equal(t, "notification.added", msg.Type)
	require.NotNil(t, msg.Notification)
	assert.Equal(t, "yours", msg.Notification.Title)
	assert.Equal(t, 1, msg.UnreadCount)
}

func TestHub_BroadcastAndRead(t *testing.T) {
	store, _, conn := startHub(t, 3, "ADMIN")

	n := store.Add(notify.Notification{Type: notify.TypeSystem, Title: "maintenance"})
	msg := readMessage(t, conn)
	assert.Equal(t, "notification.added", msg.Type)

	require.NoError(t, store.MarkAsRead(n.ID))
	msg = readMessage(t, conn)
	assert.Equal(t, "notification.read", msg.Type)
	assert.Equal(t, 0, msg.UnreadCount)
}

func TestHub_PerUserChangesOnlyReachThatUser(t *testing.T) {
	store, _, conn := startHub(t, 7, "STUDENT")

	drive := store.Add(notify.Notification{Type: notify.TypeSystem, Title: "drive", Role: "STUDENT"})
	assert.Equal(t, "notification.added", readMessage(t, conn).Type)

	require.NoError(t, store.Hide(notify.Audience{UserID: 8, Role: "STUDENT"}, drive.ID))
	store.Add(notify.Notification{Type: notify.TypeApplication, Title: "yours", UserID: 7})

	msg := readMessage(t, conn)
	assert.Equal(t, "notification.added", msg.Type, "another student's dismissal is not pushed here")
	assert.Equal(t, 2, msg.UnreadCount)

	require.NoError(t, store.MarkReadFor(notify.Audience{UserID: 7, Role: "STUDENT"}, drive.ID))
	msg = readMessage(t, conn)
	assert.Equal(t, "notification.read", msg.Type)
	assert.Equal(t, 1, msg.UnreadCount)
}

func TestHub_ClosesClientsOnStop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := notify.NewStore()
	hub := NewHub(store, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, store.Subscribers())
	assert.False(t, hub.add(&Client{userID: 1, send: make(chan []byte, 1)}))
}

func TestNewUpgrader_CheckOrigin(t *testing.T) {
	up := NewUpgrader([]string{"http://app.local"})

	req := httptest.NewRequest("GET", "/ws", nil)
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "http://app.local")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, up.CheckOrigin(req))
}
