// Package store defines the persistence boundary consumed by the services.
// Implementations live in subpackages; the core never sees a concrete one.
package store

import (
	"context"

	"github.com/jsflux/encore/internal/domain"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.AppUser) error
	ByID(ctx context.Context, id domain.UserID) (*domain.AppUser, error)
	ByEmail(ctx context.Context, email string) (*domain.AppUser, error)
}

type RoomStore interface {
	Create(ctx context.Context, r *domain.Room) error
	ByID(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	All(ctx context.Context) ([]domain.Room, error)
}

type TrackStore interface {
	Create(ctx context.Context, t *domain.Track) error
	ByID(ctx context.Context, id domain.TrackID) (*domain.Track, error)
	Search(ctx context.Context, query string) ([]domain.Track, error)
}

type MemberStore interface {
	Create(ctx context.Context, m *domain.RoomMember) error
	ByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.RoomMember, error)
	ByRoomAndUser(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (*domain.RoomMember, error)
	DeleteByRoomAndUser(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error
	CountByRoom(ctx context.Context, roomID domain.RoomID) (int64, error)
}

type QueueStore interface {
	Create(ctx context.Context, item *domain.QueueItem) error
	ByID(ctx context.Context, id domain.QueueItemID) (*domain.QueueItem, error)
	// ByRoom returns items ordered by sort order ascending, created-at as tiebreaker.
	ByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.QueueItem, error)
	Save(ctx context.Context, item *domain.QueueItem) error
}

type PlaybackStore interface {
	ByRoom(ctx context.Context, roomID domain.RoomID) (*domain.PlaybackState, error)
	Save(ctx context.Context, st *domain.PlaybackState) error
}

type ChatStore interface {
	Append(ctx context.Context, msg *domain.ChatMessage) error
	ByRoom(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.ChatMessage, error)
}

type Store interface {
	Users() UserStore
	Rooms() RoomStore
	Tracks() TrackStore
	Members() MemberStore
	Queue() QueueStore
	Playback() PlaybackStore
	Chat() ChatStore
}
