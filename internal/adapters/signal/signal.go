// Package signal is the websocket gateway onto the relay: one connection is
// one session, carrying join/leave/chat/signal frames for a single room.
package signal

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/jsflux/encore/internal/app"
	"github.com/jsflux/encore/internal/domain"
	"github.com/jsflux/encore/internal/monitoring"
	"github.com/jsflux/encore/internal/store"
)

type Controller struct {
	Relay  *app.Relay
	Broker *app.Broker
	Store  store.Store

	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(relay *app.Relay, broker *app.Broker, st store.Store, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		Relay:      relay,
		Broker:     broker,
		Store:      st,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// session is the per-connection state. joined is set once a join frame has
// been accepted and cleared again on leave.
type session struct {
	id   domain.SessionID
	room domain.RoomID
	conn *websocket.Conn
	sub  *app.Subscription

	mu     sync.Mutex
	joined *domain.Participant
}

func (s *session) participant() *domain.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined
}

func (s *session) setParticipant(p *domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined = p
}

func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	rawID, err := strconv.ParseInt(c.Param("roomID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad room id"})
		return
	}
	roomID := domain.RoomID(rawID)
	if _, err := ctl.Store.Rooms().ByID(c.Request.Context(), roomID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sid := domain.SessionID(uuid.NewString())
	sub := ctl.Broker.Subscribe(32)
	sess := &session{id: sid, room: roomID, conn: ws, sub: sub}
	ctl.Relay.BindSession(sid, sub)
	monitoring.SessionOpened()
	log.Info().Str("module", "signal").Str("sid", string(sid)).Int64("room", rawID).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, sess)
	ctl.readPump(ctx, sess)
	cancel()

	// Transport-level disconnect clears presence just like an explicit leave.
	if p := sess.participant(); p != nil {
		ctl.Relay.Leave(sess.room, p.UserID)
	}
	ctl.Relay.UnbindSession(sid)
	ctl.Broker.Unsubscribe(sub)
	monitoring.SessionClosed()
	_ = ws.Close()
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("WS connection closed")
}

// roomTopics are the broadcast channels every participant of a room hears,
// plus the signal channel addressed to that user alone.
func roomTopics(roomID domain.RoomID, userID domain.UserID) []app.Topic {
	return []app.Topic{
		{Room: roomID, Kind: app.KindUserJoined},
		{Room: roomID, Kind: app.KindUserLeft},
		{Room: roomID, Kind: app.KindChat},
		{Room: roomID, Kind: app.KindSignal, Target: userID},
	}
}
