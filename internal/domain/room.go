package domain

import (
	"fmt"
	"strings"
	"time"
)

type RoomID int64

const MaxRoomTitleLen = 200

type RoomMode string

const (
	RoomModeKaraoke   RoomMode = "KARAOKE"
	RoomModeListening RoomMode = "LISTENING"
)

type RoomVisibility string

const (
	RoomPublic  RoomVisibility = "PUBLIC"
	RoomPrivate RoomVisibility = "PRIVATE"
)

type Room struct {
	ID           RoomID         `json:"id"`
	Title        string         `json:"title"`
	Mode         RoomMode       `json:"mode"`
	Visibility   RoomVisibility `json:"visibility"`
	PasswordHash string         `json:"-"`
	HostID       UserID         `json:"hostId"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func NewRoom(title string, mode RoomMode, visibility RoomVisibility, passwordHash string, hostID UserID) (*Room, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	if len(title) > MaxRoomTitleLen {
		return nil, fmt.Errorf("title too long: %w", ErrValidation)
	}
	if mode == "" {
		mode = RoomModeListening
	}
	if visibility == "" {
		visibility = RoomPublic
	}
	return &Room{
		Title:        title,
		Mode:         mode,
		Visibility:   visibility,
		PasswordHash: passwordHash,
		HostID:       hostID,
		CreatedAt:    time.Now(),
	}, nil
}
