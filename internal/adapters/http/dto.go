package http

import (
	"time"

	"github.com/jsflux/encore/internal/domain"
)

type userResponse struct {
	ID        domain.UserID `json:"id"`
	Email     string        `json:"email"`
	Nickname  string        `json:"nickname"`
	Provider  string        `json:"provider"`
	CreatedAt time.Time     `json:"createdAt"`
}

func toUserResponse(u *domain.AppUser) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Nickname: u.Nickname, Provider: u.Provider, CreatedAt: u.CreatedAt}
}

type roomSummaryResponse struct {
	ID           domain.RoomID         `json:"id"`
	Title        string                `json:"title"`
	Mode         domain.RoomMode       `json:"mode"`
	Visibility   domain.RoomVisibility `json:"visibility"`
	HostNickname string                `json:"hostNickname"`
	MemberCount  int64                 `json:"memberCount"`
	CreatedAt    time.Time             `json:"createdAt"`
}

type memberResponse struct {
	ID         int64           `json:"id"`
	UserID     domain.UserID   `json:"userId"`
	Nickname   string          `json:"nickname"`
	Role       domain.RoomRole `json:"role"`
	Muted      bool            `json:"muted"`
	DeviceInfo string          `json:"deviceInfo"`
	JoinedAt   time.Time       `json:"joinedAt"`
}

type roomDetailResponse struct {
	ID           domain.RoomID         `json:"id"`
	Title        string                `json:"title"`
	Mode         domain.RoomMode       `json:"mode"`
	Visibility   domain.RoomVisibility `json:"visibility"`
	HostNickname string                `json:"hostNickname"`
	CreatedAt    time.Time             `json:"createdAt"`
	Members      []memberResponse      `json:"members"`
}

type queueItemResponse struct {
	ID          domain.QueueItemID `json:"id"`
	TrackID     domain.TrackID     `json:"trackId"`
	TrackTitle  string             `json:"trackTitle"`
	TrackArtist string             `json:"trackArtist"`
	RequestedBy domain.UserID      `json:"requestedBy"`
	Status      domain.QueueStatus `json:"status"`
	SortOrder   int                `json:"sortOrder"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type playbackResponse struct {
	RoomID     domain.RoomID   `json:"roomId"`
	TrackID    *domain.TrackID `json:"trackId"`
	TrackTitle *string         `json:"trackTitle"`
	PositionMs int64           `json:"positionMs"`
	Playing    bool            `json:"playing"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}
