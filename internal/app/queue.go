package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jsflux/encore/internal/domain"
	"github.com/jsflux/encore/internal/store"
)

// Queue manages the ordered track request list of a room.
type Queue struct {
	store store.Store
}

func NewQueue(st store.Store) *Queue {
	return &Queue{store: st}
}

// List returns the room's items sorted by sort order ascending.
func (q *Queue) List(ctx context.Context, roomID domain.RoomID) ([]domain.QueueItem, error) {
	return q.store.Queue().ByRoom(ctx, roomID)
}

// Add appends a request. Status defaults to PENDING; sort order defaults to
// current list length + 1. Tail-append can collide with older orders once
// items were removed; readers must treat sort order as advisory.
func (q *Queue) Add(ctx context.Context, roomID domain.RoomID, trackID domain.TrackID, requestedBy domain.UserID, status *domain.QueueStatus, sortOrder *int) (*domain.QueueItem, error) {
	if _, err := q.store.Rooms().ByID(ctx, roomID); err != nil {
		return nil, err
	}
	if _, err := q.store.Tracks().ByID(ctx, trackID); err != nil {
		return nil, err
	}
	if _, err := q.store.Users().ByID(ctx, requestedBy); err != nil {
		return nil, err
	}

	st := domain.QueuePending
	if status != nil {
		st = *status
	}
	order := 0
	if sortOrder != nil {
		order = *sortOrder
	} else {
		items, err := q.store.Queue().ByRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		order = len(items) + 1
	}

	item := &domain.QueueItem{
		RoomID:      roomID,
		TrackID:     trackID,
		RequestedBy: requestedBy,
		Status:      st,
		SortOrder:   order,
		CreatedAt:   time.Now(),
	}
	if err := q.store.Queue().Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update changes status and/or sort order. Omitted fields keep their prior
// values. No transition table restricts status changes.
func (q *Queue) Update(ctx context.Context, roomID domain.RoomID, itemID domain.QueueItemID, status *domain.QueueStatus, sortOrder *int) (*domain.QueueItem, error) {
	item, err := q.store.Queue().ByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.RoomID != roomID {
		return nil, fmt.Errorf("queue item %d belongs to room %d: %w", itemID, item.RoomID, domain.ErrRoomMismatch)
	}
	if status != nil {
		item.Status = *status
	}
	if sortOrder != nil {
		item.SortOrder = *sortOrder
	}
	if err := q.store.Queue().Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
