package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jsflux/encore/internal/domain"
)

// Presence tracks which user sessions are currently connected to each room.
// One entry per user: a second join for the same user replaces the prior
// entry, so a reconnect just refreshes the session id.
type Presence struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.UserID]domain.Participant
}

func NewPresence() *Presence {
	return &Presence{rooms: make(map[domain.RoomID]map[domain.UserID]domain.Participant)}
}

// Join adds or replaces the participant and returns the updated roster.
// Roster order is unspecified.
func (p *Presence) Join(roomID domain.RoomID, part domain.Participant) []domain.Participant {
	p.mu.Lock()
	defer p.mu.Unlock()
	room, ok := p.rooms[roomID]
	if !ok {
		room = make(map[domain.UserID]domain.Participant)
		p.rooms[roomID] = room
	}
	room[part.UserID] = part
	log.Debug().Str("module", "app.presence").Int64("room", int64(roomID)).Int64("user", int64(part.UserID)).Msg("join")
	return rosterLocked(room)
}

// Leave removes the participant. Absent participants are a no-op, not an error.
func (p *Presence) Leave(roomID domain.RoomID, userID domain.UserID) (domain.Participant, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	room, ok := p.rooms[roomID]
	if !ok {
		return domain.Participant{}, false
	}
	part, ok := room[userID]
	if !ok {
		return domain.Participant{}, false
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(p.rooms, roomID)
	}
	log.Debug().Str("module", "app.presence").Int64("room", int64(roomID)).Int64("user", int64(userID)).Msg("leave")
	return part, true
}

// Roster returns a snapshot of the room's participants. Never fails.
func (p *Presence) Roster(roomID domain.RoomID) []domain.Participant {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return rosterLocked(p.rooms[roomID])
}

func rosterLocked(room map[domain.UserID]domain.Participant) []domain.Participant {
	out := make([]domain.Participant, 0, len(room))
	for _, part := range room {
		out = append(out, part)
	}
	return out
}
