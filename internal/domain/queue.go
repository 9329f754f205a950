package domain

import "time"

type QueueItemID int64

type QueueStatus string

const (
	QueuePending  QueueStatus = "PENDING"
	QueueApproved QueueStatus = "APPROVED"
	QueuePlayed   QueueStatus = "PLAYED"
	QueueRejected QueueStatus = "REJECTED"
)

// QueueItem is a track request inside a room. Display order is SortOrder
// ascending with CreatedAt as the tiebreaker. Status transitions are
// deliberately unconstrained.
type QueueItem struct {
	ID          QueueItemID `json:"id"`
	RoomID      RoomID      `json:"roomId"`
	TrackID     TrackID     `json:"trackId"`
	RequestedBy UserID      `json:"requestedBy"`
	Status      QueueStatus `json:"status"`
	SortOrder   int         `json:"sortOrder"`
	CreatedAt   time.Time   `json:"createdAt"`
}
