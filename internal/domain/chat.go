package domain

import "time"

type ChatMessage struct {
	ID       string    `json:"id"`
	RoomID   RoomID    `json:"roomId"`
	UserID   UserID    `json:"userId"`
	Nickname string    `json:"nickname"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
}
