package domain

import "time"

// SessionID identifies one live connection. A user who reconnects gets a
// fresh SessionID while keeping the same UserID.
type SessionID string

// Participant is a user's live membership record in a room, distinct from
// the durable RoomMember row.
type Participant struct {
	UserID      UserID    `json:"userId"`
	DisplayName string    `json:"displayName"`
	SessionID   SessionID `json:"sessionId"`
}

type RoomRole string

const (
	RoleHost      RoomRole = "HOST"
	RolePerformer RoomRole = "PERFORMER"
	RoleAudience  RoomRole = "AUDIENCE"
)

// RoomMember is the durable membership record kept by the store.
type RoomMember struct {
	ID         int64     `json:"id"`
	RoomID     RoomID    `json:"roomId"`
	UserID     UserID    `json:"userId"`
	Role       RoomRole  `json:"role"`
	Muted      bool      `json:"muted"`
	DeviceInfo string    `json:"deviceInfo"`
	JoinedAt   time.Time `json:"joinedAt"`
}
