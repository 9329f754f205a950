package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jsflux/encore/internal/domain"
)

// Relay routes join/leave/chat/signal traffic for a room over the broker.
// Delivery is best-effort with no acknowledgement or retry; a target with
// no live subscriber simply misses the message.
type Relay struct {
	presence *Presence
	broker   *Broker

	mu       sync.RWMutex
	sessions map[domain.SessionID]*Subscription
}

func NewRelay(presence *Presence, broker *Broker) *Relay {
	return &Relay{
		presence: presence,
		broker:   broker,
		sessions: make(map[domain.SessionID]*Subscription),
	}
}

// BindSession registers the session's inbox for private deliveries.
// The boundary layer owns the subscription lifecycle.
func (r *Relay) BindSession(sid domain.SessionID, sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = sub
}

func (r *Relay) UnbindSession(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
}

func (r *Relay) session(sid domain.SessionID) *Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[sid]
}

// Join registers presence, announces the participant on the room's
// user-joined channel, and hands the full roster privately to the joining
// session alone.
func (r *Relay) Join(roomID domain.RoomID, part domain.Participant) []domain.Participant {
	roster := r.presence.Join(roomID, part)
	r.broker.Publish(Topic{Room: roomID, Kind: KindUserJoined}, part)
	if sub := r.session(part.SessionID); sub != nil {
		if !sub.TrySend(Message{Topic: Topic{Room: roomID, Kind: KindRoster}, Data: roster}) {
			log.Warn().Str("module", "app.relay").Str("sid", string(part.SessionID)).Msg("roster delivery dropped")
		}
	}
	log.Info().Str("module", "app.relay").Int64("room", int64(roomID)).Int64("user", int64(part.UserID)).Msg("joined")
	return roster
}

// Leave removes presence and publishes a leave notice. Leaving a room the
// user is not in is safe.
func (r *Relay) Leave(roomID domain.RoomID, userID domain.UserID) {
	r.presence.Leave(roomID, userID)
	r.broker.Publish(Topic{Room: roomID, Kind: KindUserLeft}, userID)
	log.Info().Str("module", "app.relay").Int64("room", int64(roomID)).Int64("user", int64(userID)).Msg("left")
}

// Chat publishes the message verbatim to the room's chat channel.
func (r *Relay) Chat(roomID domain.RoomID, msg domain.ChatMessage) {
	r.broker.Publish(Topic{Room: roomID, Kind: KindChat}, msg)
}

// Signal forwards the envelope verbatim to the channel scoped to the exact
// (room, target user) pair. Only subscribers bound to that target see it.
func (r *Relay) Signal(roomID domain.RoomID, env domain.SignalEnvelope) {
	r.broker.Publish(Topic{Room: roomID, Kind: KindSignal, Target: env.TargetUser}, env)
	log.Debug().Str("module", "app.relay").Int64("room", int64(roomID)).
		Int64("from", int64(env.From.UserID)).Int64("to", int64(env.TargetUser)).
		Str("kind", string(env.Kind)).Msg("signal relayed")
}

// Roster exposes the live presence snapshot for the gateway.
func (r *Relay) Roster(roomID domain.RoomID) []domain.Participant {
	return r.presence.Roster(roomID)
}
