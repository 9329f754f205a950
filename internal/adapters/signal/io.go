package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/jsflux/encore/internal/app"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, s *session) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(s.id)).Msg("writePump ping")
				return
			}
		case msg, ok := <-s.sub.C:
			if !ok {
				return
			}
			frame := toFrame(msg)
			if frame == nil {
				continue
			}
			payload, err := json.Marshal(frame)
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump marshal")
				continue
			}
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(s.id)).Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, s *session) {
	if ctl.ReadLimit > 0 {
		s.conn.SetReadLimit(ctl.ReadLimit)
	}
	readWait := ctl.PingPeriod + writeWait
	_ = s.conn.SetReadDeadline(time.Now().Add(readWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(s.id)).Msg("readPump read error")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(readWait))
		ctl.handleFrame(s, data)
	}
}

// sendDirect queues a point-to-point frame on the session's own inbox so it
// shares the write pump with relayed traffic.
func (s *session) sendDirect(kind app.ChannelKind, data any) {
	_ = s.sub.TrySend(app.Message{Topic: app.Topic{Room: s.room, Kind: kind}, Data: data})
}

func (s *session) sendError(reason string) {
	s.sendDirect(kindError, reason)
}
