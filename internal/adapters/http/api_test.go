package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsflux/encore/internal/adapters/janus"
	"github.com/jsflux/encore/internal/adapters/signal"
	"github.com/jsflux/encore/internal/app"
	"github.com/jsflux/encore/internal/config"
	"github.com/jsflux/encore/internal/store/memory"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	presence := app.NewPresence()
	broker := app.NewBroker()
	relay := app.NewRelay(presence, broker)
	api := &API{
		Store:    st,
		Relay:    relay,
		Playback: app.NewPlayback(st),
		Queue:    app.NewQueue(st),
	}
	cfg := &config.Config{Mode: "release", Secret: "test-secret", ReadLimit: 32768, PingPeriod: 54 * time.Second}
	sigCtl := signal.NewController(relay, broker, st, cfg.ReadLimit, cfg.PingPeriod)
	tunnel := janus.New("http://127.0.0.1:1")
	return SetupRouter(context.Background(), cfg, api, sigCtl, tunnel)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func registerUser(t *testing.T, r *gin.Engine, email, nickname string) int64 {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email": email, "password": "pw", "nickname": nickname,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

func createTrack(t *testing.T, r *gin.Engine, title string) int64 {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/tracks", gin.H{"title": title, "artist": "band"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

func createRoom(t *testing.T, r *gin.Engine, hostID int64, title string) int64 {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/rooms", gin.H{
		"title": title, "mode": "KARAOKE", "hostId": hostID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter(t)

	registerUser(t, r, "alice@example.com", "alice")

	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email": "alice@example.com", "password": "other", "nickname": "alice2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email": "alice@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())

	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{"email": "", "password": "pw", "nickname": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackSearch(t *testing.T) {
	r := newTestRouter(t)

	createTrack(t, r, "Bohemian Rhapsody")
	createTrack(t, r, "Yesterday")

	w := doJSON(t, r, http.MethodGet, "/tracks/search?query=rhapsody", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tracks []json.RawMessage
	decode(t, w, &tracks)
	assert.Len(t, tracks, 1)

	w = doJSON(t, r, http.MethodGet, "/tracks/search?query=nothing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/tracks/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomLifecycle(t *testing.T) {
	r := newTestRouter(t)

	hostID := registerUser(t, r, "host@example.com", "host")
	guestID := registerUser(t, r, "guest@example.com", "guest")
	createRoom(t, r, hostID, "friday night")

	// The creator is seeded as HOST member.
	w := doJSON(t, r, http.MethodGet, "/rooms/1/members", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []memberResponse
	decode(t, w, &members)
	require.Len(t, members, 1)
	assert.Equal(t, "HOST", string(members[0].Role))

	w = doJSON(t, r, http.MethodPost, "/rooms/1/join", gin.H{"userId": guestID})
	require.Equal(t, http.StatusOK, w.Code)
	var joined memberResponse
	decode(t, w, &joined)
	assert.Equal(t, "PERFORMER", string(joined.Role))
	assert.Equal(t, "guest", joined.Nickname)

	// Duplicate membership is rejected.
	w = doJSON(t, r, http.MethodPost, "/rooms/1/join", gin.H{"userId": guestID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summaries []roomSummaryResponse
	decode(t, w, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].MemberCount)
	assert.Equal(t, "host", summaries[0].HostNickname)

	w = doJSON(t, r, http.MethodGet, "/rooms/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail roomDetailResponse
	decode(t, w, &detail)
	assert.Len(t, detail.Members, 2)

	w = doJSON(t, r, http.MethodPost, "/rooms/1/leave", gin.H{"userId": guestID})
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/rooms/1/members", nil)
	decode(t, w, &members)
	assert.Len(t, members, 1)
}

func TestRoomErrors(t *testing.T) {
	r := newTestRouter(t)

	hostID := registerUser(t, r, "host@example.com", "host")

	w := doJSON(t, r, http.MethodPost, "/rooms", gin.H{"title": "no such host", "hostId": hostID + 5})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/rooms", gin.H{"title": "", "hostId": hostID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/rooms/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/rooms/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	createRoom(t, r, hostID, "room")
	w = doJSON(t, r, http.MethodPost, "/rooms/1/leave", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueEndpoints(t *testing.T) {
	r := newTestRouter(t)

	hostID := registerUser(t, r, "host@example.com", "host")
	createRoom(t, r, hostID, "room")
	trackID := createTrack(t, r, "song one")

	w := doJSON(t, r, http.MethodPost, "/rooms/1/queue", gin.H{
		"trackId": trackID, "requestedBy": hostID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var item queueItemResponse
	decode(t, w, &item)
	assert.Equal(t, "PENDING", string(item.Status))
	assert.Equal(t, 1, item.SortOrder)
	assert.Equal(t, "song one", item.TrackTitle)

	w = doJSON(t, r, http.MethodPatch, "/rooms/1/queue/1", gin.H{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &item)
	assert.Equal(t, "APPROVED", string(item.Status))

	// Item addressed through the wrong room.
	createRoom(t, r, hostID, "other room")
	w = doJSON(t, r, http.MethodPatch, "/rooms/2/queue/1", gin.H{"status": "PLAYED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/rooms/1/queue/99", gin.H{"status": "PLAYED"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/rooms/1/queue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []queueItemResponse
	decode(t, w, &items)
	assert.Len(t, items, 1)

	w = doJSON(t, r, http.MethodPost, "/rooms/1/queue", gin.H{
		"trackId": trackID + 9, "requestedBy": hostID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaybackEndpoints(t *testing.T) {
	r := newTestRouter(t)

	hostID := registerUser(t, r, "host@example.com", "host")
	createRoom(t, r, hostID, "room")
	trackID := createTrack(t, r, "song")

	w := doJSON(t, r, http.MethodGet, "/rooms/1/playback", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "no state before first update")

	w = doJSON(t, r, http.MethodPatch, "/rooms/1/playback", gin.H{
		"trackId": trackID, "positionMs": 1500, "playing": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pb playbackResponse
	decode(t, w, &pb)
	assert.Equal(t, int64(1500), pb.PositionMs)
	assert.True(t, pb.Playing)
	require.NotNil(t, pb.TrackTitle)
	assert.Equal(t, "song", *pb.TrackTitle)

	// Pause without naming a track keeps the current one.
	w = doJSON(t, r, http.MethodPatch, "/rooms/1/playback", gin.H{
		"positionMs": 2000, "playing": false,
	})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &pb)
	require.NotNil(t, pb.TrackID)
	assert.False(t, pb.Playing)

	w = doJSON(t, r, http.MethodPatch, "/rooms/1/playback", gin.H{"positionMs": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/rooms/9/playback", gin.H{"positionMs": 0})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLivePresenceStartsEmpty(t *testing.T) {
	r := newTestRouter(t)

	hostID := registerUser(t, r, "host@example.com", "host")
	createRoom(t, r, hostID, "room")

	w := doJSON(t, r, http.MethodGet, "/rooms/1/presence", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
