package signal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsflux/encore/internal/app"
	"github.com/jsflux/encore/internal/domain"
	"github.com/jsflux/encore/internal/store"
	"github.com/jsflux/encore/internal/store/memory"
)

func newWSServer(t *testing.T) (*httptest.Server, store.Store, *app.Relay) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	broker := app.NewBroker()
	relay := app.NewRelay(app.NewPresence(), broker)
	ctl := NewController(relay, broker, st, 32768, 54*time.Second)

	r := gin.New()
	r.GET("/ws/rooms/:roomID", func(c *gin.Context) {
		ctl.HandleWS(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	user, err := domain.NewAppUser("host@example.com", "pw", "host")
	require.NoError(t, err)
	require.NoError(t, st.Users().Create(ctx, user))
	room, err := domain.NewRoom("room", domain.RoomModeListening, domain.RoomPublic, "", user.ID)
	require.NoError(t, err)
	require.NoError(t, st.Rooms().Create(ctx, room))

	return srv, st, relay
}

func dial(t *testing.T, srv *httptest.Server, roomID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/rooms/" + roomID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(frame))
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

// readUntil skips frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, frameType string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		frame := readFrame(t, conn)
		if frame["type"] == frameType {
			return frame
		}
	}
	t.Fatalf("no %q frame received", frameType)
	return nil
}

func TestWSUnknownRoomRejected(t *testing.T) {
	srv, _, _ := newWSServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/rooms/99"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWSJoinDeliversRoster(t *testing.T) {
	srv, _, relay := newWSServer(t)

	conn := dial(t, srv, "1")
	send(t, conn, gin.H{"type": "join", "userId": 10, "displayName": "alice"})

	joined := readUntil(t, conn, "user-joined")
	part := joined["participant"].(map[string]any)
	assert.Equal(t, float64(10), part["userId"])

	roster := readUntil(t, conn, "roster")
	assert.Len(t, roster["participants"], 1)

	require.Eventually(t, func() bool {
		return len(relay.Roster(1)) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWSSignalRoutedToTarget(t *testing.T) {
	srv, _, _ := newWSServer(t)

	alice := dial(t, srv, "1")
	send(t, alice, gin.H{"type": "join", "userId": 10, "displayName": "alice"})
	readUntil(t, alice, "roster")

	bob := dial(t, srv, "1")
	send(t, bob, gin.H{"type": "join", "userId": 11, "displayName": "bob"})
	readUntil(t, bob, "roster")

	send(t, alice, gin.H{
		"type": "signal", "targetUserId": 11, "kind": "offer",
		"payload": gin.H{"sdp": "v=0"},
	})

	frame := readUntil(t, bob, "signal")
	assert.Equal(t, "offer", frame["kind"])
	from := frame["from"].(map[string]any)
	assert.Equal(t, float64(10), from["userId"])
}

func TestWSChatBroadcastAndPersisted(t *testing.T) {
	srv, st, _ := newWSServer(t)

	alice := dial(t, srv, "1")
	send(t, alice, gin.H{"type": "join", "userId": 10, "displayName": "alice"})
	readUntil(t, alice, "roster")

	bob := dial(t, srv, "1")
	send(t, bob, gin.H{"type": "join", "userId": 11, "displayName": "bob"})
	readUntil(t, bob, "roster")

	send(t, alice, gin.H{"type": "chat", "content": "hello room"})

	frame := readUntil(t, bob, "chat")
	assert.Equal(t, "hello room", frame["content"])
	assert.Equal(t, "alice", frame["nickname"])

	require.Eventually(t, func() bool {
		msgs, err := st.Chat().ByRoom(context.Background(), 1, 0)
		return err == nil && len(msgs) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWSLeaveAndDisconnect(t *testing.T) {
	srv, _, relay := newWSServer(t)

	alice := dial(t, srv, "1")
	send(t, alice, gin.H{"type": "join", "userId": 10, "displayName": "alice"})
	readUntil(t, alice, "roster")

	bob := dial(t, srv, "1")
	send(t, bob, gin.H{"type": "join", "userId": 11, "displayName": "bob"})
	readUntil(t, bob, "roster")

	// Explicit leave.
	send(t, bob, gin.H{"type": "leave"})
	readUntil(t, bob, "left")
	left := readUntil(t, alice, "user-left")
	assert.Equal(t, float64(11), left["userId"])

	// Dropping the transport clears presence like a leave would.
	alice.Close()
	require.Eventually(t, func() bool {
		return len(relay.Roster(1)) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestWSRequiresJoinBeforeSignal(t *testing.T) {
	srv, _, _ := newWSServer(t)

	conn := dial(t, srv, "1")
	send(t, conn, gin.H{"type": "signal", "targetUserId": 11, "kind": "offer"})

	frame := readUntil(t, conn, "error")
	assert.Equal(t, "not_joined", frame["error"])
}

func TestWSPingPong(t *testing.T) {
	srv, _, _ := newWSServer(t)

	conn := dial(t, srv, "1")
	send(t, conn, gin.H{"type": "ping"})
	readUntil(t, conn, "pong")
}

func TestWSUnknownFrameType(t *testing.T) {
	srv, _, _ := newWSServer(t)

	conn := dial(t, srv, "1")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"nope"}`)))
	frame := readUntil(t, conn, "error")
	assert.Equal(t, "unknown_type", frame["error"])
}
