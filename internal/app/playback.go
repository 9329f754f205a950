package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jsflux/encore/internal/domain"
	"github.com/jsflux/encore/internal/store"
)

// Playback keeps one authoritative playback state per room.
//
// Merge policy is last-write-wins: the update processed later overwrites an
// earlier one even if it was issued from stale state. The per-room lock only
// guarantees that each read-modify-write is atomic and UpdatedAt never goes
// backwards; it does not order concurrent editors.
type Playback struct {
	store store.Store

	mu    sync.Mutex
	locks map[domain.RoomID]*sync.Mutex
}

func NewPlayback(st store.Store) *Playback {
	return &Playback{store: st, locks: make(map[domain.RoomID]*sync.Mutex)}
}

func (p *Playback) roomLock(roomID domain.RoomID) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		p.locks[roomID] = l
	}
	return l
}

// Get returns the current state, or ErrNotFound if no update ever ran.
func (p *Playback) Get(ctx context.Context, roomID domain.RoomID) (*domain.PlaybackState, error) {
	return p.store.Playback().ByRoom(ctx, roomID)
}

// Update creates the state lazily and merges the request into it. A nil
// trackID keeps the existing track; position and playing always overwrite.
func (p *Playback) Update(ctx context.Context, roomID domain.RoomID, trackID *domain.TrackID, positionMs int64, playing bool) (*domain.PlaybackState, error) {
	if positionMs < 0 {
		return nil, fmt.Errorf("positionMs must be >= 0: %w", domain.ErrValidation)
	}
	if _, err := p.store.Rooms().ByID(ctx, roomID); err != nil {
		return nil, err
	}
	if trackID != nil {
		if _, err := p.store.Tracks().ByID(ctx, *trackID); err != nil {
			return nil, err
		}
	}

	l := p.roomLock(roomID)
	l.Lock()
	defer l.Unlock()

	st, err := p.store.Playback().ByRoom(ctx, roomID)
	if err != nil {
		st = &domain.PlaybackState{RoomID: roomID}
	}
	if trackID != nil {
		st.TrackID = trackID
	}
	st.PositionMs = positionMs
	st.Playing = playing
	st.UpdatedAt = time.Now()
	if err := p.store.Playback().Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}
