package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jsflux/encore/internal/app"
	"github.com/jsflux/encore/internal/domain"
)

// Adapter-local kinds for frames that never travel through broker topics.
const (
	kindError app.ChannelKind = "error"
	kindPong  app.ChannelKind = "pong"
	kindLeft  app.ChannelKind = "left"
)

type rosterFrame struct {
	Type         string               `json:"type"`
	Participants []domain.Participant `json:"participants"`
}

type userJoinedFrame struct {
	Type        string             `json:"type"`
	Participant domain.Participant `json:"participant"`
}

type userLeftFrame struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type chatFrame struct {
	Type string `json:"type"`
	domain.ChatMessage
}

type signalFrame struct {
	Type string `json:"type"`
	domain.SignalEnvelope
}

type simpleFrame struct {
	Type string `json:"type"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// toFrame converts a relayed message into its wire shape.
func toFrame(m app.Message) any {
	switch m.Topic.Kind {
	case app.KindRoster:
		return rosterFrame{Type: "roster", Participants: m.Data.([]domain.Participant)}
	case app.KindUserJoined:
		return userJoinedFrame{Type: "user-joined", Participant: m.Data.(domain.Participant)}
	case app.KindUserLeft:
		return userLeftFrame{Type: "user-left", UserID: m.Data.(domain.UserID)}
	case app.KindChat:
		return chatFrame{Type: "chat", ChatMessage: m.Data.(domain.ChatMessage)}
	case app.KindSignal:
		return signalFrame{Type: "signal", SignalEnvelope: m.Data.(domain.SignalEnvelope)}
	case kindError:
		return errorFrame{Type: "error", Error: m.Data.(string)}
	case kindPong:
		return simpleFrame{Type: "pong"}
	case kindLeft:
		return simpleFrame{Type: "left"}
	default:
		log.Warn().Str("module", "signal").Str("kind", string(m.Topic.Kind)).Msg("unknown outbound kind")
		return nil
	}
}

func (ctl *Controller) handleFrame(s *session, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		s.sendError("bad_payload")
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(s, data)
	case "leave":
		ctl.handleLeave(s)
	case "chat":
		ctl.handleChat(s, data)
	case "signal":
		ctl.handleSignal(s, data)
	case "ping":
		s.sendDirect(kindPong, nil)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown frame")
		s.sendError("unknown_type")
	}
}

func (ctl *Controller) handleJoin(s *session, data []byte) {
	var p struct {
		Type        string        `json:"type"`
		UserID      domain.UserID `json:"userId"`
		DisplayName string        `json:"displayName"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.UserID == 0 || p.DisplayName == "" {
		s.sendError("bad_payload")
		return
	}

	// Rejoin under a different user rebinds the signal channel.
	if prev := s.participant(); prev != nil && prev.UserID != p.UserID {
		ctl.Broker.Unbind(s.sub, roomTopics(s.room, prev.UserID)...)
		ctl.Relay.Leave(s.room, prev.UserID)
		s.setParticipant(nil)
	}

	part := domain.Participant{UserID: p.UserID, DisplayName: p.DisplayName, SessionID: s.id}
	if s.participant() == nil {
		ctl.Broker.Bind(s.sub, roomTopics(s.room, p.UserID)...)
	}
	s.setParticipant(&part)
	ctl.Relay.Join(s.room, part)
}

func (ctl *Controller) handleLeave(s *session) {
	p := s.participant()
	if p == nil {
		s.sendDirect(kindLeft, nil)
		return
	}
	ctl.Relay.Leave(s.room, p.UserID)
	ctl.Broker.Unbind(s.sub, roomTopics(s.room, p.UserID)...)
	s.setParticipant(nil)
	s.sendDirect(kindLeft, nil)
}

func (ctl *Controller) handleChat(s *session, data []byte) {
	p := s.participant()
	if p == nil {
		s.sendError("not_joined")
		return
	}
	var payload struct {
		Type     string `json:"type"`
		Nickname string `json:"nickname"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		s.sendError("bad_payload")
		return
	}
	nickname := payload.Nickname
	if nickname == "" {
		nickname = p.DisplayName
	}
	msg := domain.ChatMessage{
		ID:       uuid.NewString(),
		RoomID:   s.room,
		UserID:   p.UserID,
		Nickname: nickname,
		Content:  payload.Content,
		SentAt:   time.Now(),
	}
	if err := ctl.Store.Chat().Append(context.Background(), &msg); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("chat append")
	}
	ctl.Relay.Chat(s.room, msg)
}

func (ctl *Controller) handleSignal(s *session, data []byte) {
	p := s.participant()
	if p == nil {
		s.sendError("not_joined")
		return
	}
	var payload struct {
		Type         string            `json:"type"`
		TargetUserID domain.UserID     `json:"targetUserId"`
		Kind         domain.SignalKind `json:"kind"`
		Payload      json.RawMessage   `json:"payload"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.TargetUserID == 0 {
		s.sendError("bad_payload")
		return
	}
	if !payload.Kind.Valid() {
		s.sendError("unknown_signal_kind")
		return
	}
	env := domain.SignalEnvelope{
		From:       *p,
		TargetUser: payload.TargetUserID,
		Kind:       payload.Kind,
		Payload:    payload.Payload,
	}
	ctl.Relay.Signal(s.room, env)
}
