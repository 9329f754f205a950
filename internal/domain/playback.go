package domain

import "time"

// PlaybackState is the single shared "now playing" record of a room.
// There is at most one per room, created lazily on the first update.
type PlaybackState struct {
	RoomID     RoomID    `json:"roomId"`
	TrackID    *TrackID  `json:"trackId"`
	PositionMs int64     `json:"positionMs"`
	Playing    bool      `json:"playing"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
