// Package memory is an in-process Store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jsflux/encore/internal/domain"
	"github.com/jsflux/encore/internal/store"
)

type Memory struct {
	mu sync.RWMutex

	users    map[domain.UserID]domain.AppUser
	rooms    map[domain.RoomID]domain.Room
	tracks   map[domain.TrackID]domain.Track
	members  map[int64]domain.RoomMember
	queue    map[domain.QueueItemID]domain.QueueItem
	playback map[domain.RoomID]domain.PlaybackState
	chat     map[domain.RoomID][]domain.ChatMessage

	nextUser   domain.UserID
	nextRoom   domain.RoomID
	nextTrack  domain.TrackID
	nextMember int64
	nextQueue  domain.QueueItemID
}

func New() *Memory {
	return &Memory{
		users:    make(map[domain.UserID]domain.AppUser),
		rooms:    make(map[domain.RoomID]domain.Room),
		tracks:   make(map[domain.TrackID]domain.Track),
		members:  make(map[int64]domain.RoomMember),
		queue:    make(map[domain.QueueItemID]domain.QueueItem),
		playback: make(map[domain.RoomID]domain.PlaybackState),
		chat:     make(map[domain.RoomID][]domain.ChatMessage),
	}
}

func (m *Memory) Users() store.UserStore       { return (*users)(m) }
func (m *Memory) Rooms() store.RoomStore       { return (*rooms)(m) }
func (m *Memory) Tracks() store.TrackStore     { return (*tracks)(m) }
func (m *Memory) Members() store.MemberStore   { return (*members)(m) }
func (m *Memory) Queue() store.QueueStore      { return (*queue)(m) }
func (m *Memory) Playback() store.PlaybackStore { return (*playback)(m) }
func (m *Memory) Chat() store.ChatStore        { return (*chat)(m) }

type users Memory

func (s *users) Create(_ context.Context, u *domain.AppUser) error {
	m := (*Memory)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email %q: %w", u.Email, domain.ErrConflict)
		}
	}
	m.nextUser++
	u.ID = m.nextUser
	m.users[u.ID] = *u
	return nil
}

func (s *users) ByID(_ context.Context, id domain.UserID) (*domain.AppUser, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

func (s *users) ByEmail(_ context.Context, email string) (*domain.AppUser, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
}

type rooms Memory

func (s *rooms) Create(_ context.Context, r *domain.Room) error {
	m := (*Memory)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRoom++
	r.ID = m.nextRoom
	m.rooms[r.ID] = *r
	return nil
}

func (s *rooms) ByID(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

func (s *rooms) All(_ context.Context) ([]domain.Room, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type tracks Memory

func (s *tracks) Create(_ context.Context, t *domain.Track) error {
	m := (*Memory)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTrack++
	t.ID = m.nextTrack
	m.tracks[t.ID] = *t
	return nil
}

func (s *tracks) ByID(_ context.Context, id domain.TrackID) (*domain.Track, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tracks[id]
	if !ok {
		return nil, fmt.Errorf("track %d: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

func (s *tracks) Search(_ context.Context, query string) ([]domain.Track, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	var out []domain.Track
	for _, t := range m.tracks {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Artist), q) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type members Memory

func (s *members) Create(_ context.Context, rm *domain.RoomMember) error {
	m := (*Memory)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.members {
		if existing.RoomID == rm.RoomID && existing.UserID == rm.UserID {
			return fmt.Errorf("member room=%d user=%d: %w", rm.RoomID, rm.UserID, domain.ErrConflict)
		}
	}
	m.nextMember++
	rm.ID = m.nextMember
	m.members[rm.ID] = *rm
	return nil
}

func (s *members) ByRoom(_ context.Context, roomID domain.RoomID) ([]domain.RoomMember, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.RoomMember
	for _, rm := range m.members {
		if rm.RoomID == roomID {
			out = append(out, rm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *members) ByRoomAndUser(_ context.Context, roomID domain.RoomID, userID domain.UserID) (*domain.RoomMember, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rm := range m.members {
		if rm.RoomID == roomID && rm.UserID == userID {
			out := rm
			return &out, nil
		}
	}
	return nil, fmt.Errorf("member room=%d user=%d: %w", roomID, userID, domain.ErrNotFound)
}

func (s *members) DeleteByRoomAndUser(_ context.Context, roomID domain.RoomID, userID domain.UserID) error {
	m := (*Memory)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rm := range m.members {
		if rm.RoomID == roomID && rm.UserID == userID {
			delete(m.members, id)
		}
	}
	return nil
}

func (s *members) CountByRoom(_ context.Context, roomID domain.RoomID) (int64, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, rm := range m.members {
		if rm.RoomID == roomID {
			n++
		}
	}
	return n, nil
}

type queue Memory

func (s *queue) Create(_ context.Context, item *domain.QueueItem) error {
	m := (*Memory)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextQueue++
	item.ID = m.nextQueue
	m.queue[item.ID] = *item
	return nil
}

func (s *queue) ByID(_ context.Context, id domain.QueueItemID) (*domain.QueueItem, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.queue[id]
	if !ok {
		return nil, fmt.Errorf("queue item %d: %w", id, domain.ErrNotFound)
	}
	return &item, nil
}

func (s *queue) ByRoom(_ context.Context, roomID domain.RoomID) ([]domain.QueueItem, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.QueueItem
	for _, item := range m.queue {
		if item.RoomID == roomID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *queue) Save(_ context.Context, item *domain.QueueItem) error {
	m := (*Memory)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.queue[item.ID]; !ok {
		return fmt.Errorf("queue item %d: %w", item.ID, domain.ErrNotFound)
	}
	m.queue[item.ID] = *item
	return nil
}

type playback Memory

func (s *playback) ByRoom(_ context.Context, roomID domain.RoomID) (*domain.PlaybackState, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.playback[roomID]
	if !ok {
		return nil, fmt.Errorf("playback room=%d: %w", roomID, domain.ErrNotFound)
	}
	return &st, nil
}

func (s *playback) Save(_ context.Context, st *domain.PlaybackState) error {
	m := (*Memory)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playback[st.RoomID] = *st
	return nil
}

type chat Memory

func (s *chat) Append(_ context.Context, msg *domain.ChatMessage) error {
	m := (*Memory)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chat[msg.RoomID] = append(m.chat[msg.RoomID], *msg)
	return nil
}

func (s *chat) ByRoom(_ context.Context, roomID domain.RoomID, limit int) ([]domain.ChatMessage, error) {
	m := (*Memory)(s)
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.chat[roomID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
