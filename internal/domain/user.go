// Package domain contains entities without logic, just meta-data.
package domain

import (
	"fmt"
	"strings"
	"time"
)

const MaxNicknameLen = 36

type UserID int64

type AppUser struct {
	ID        UserID    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Nickname  string    `json:"nickname"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewAppUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewAppUser(email, password, nickname string) (*AppUser, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("email is required: %w", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required: %w", ErrValidation)
	}
	if strings.TrimSpace(nickname) == "" {
		return nil, fmt.Errorf("nickname is required: %w", ErrValidation)
	}
	if len(nickname) > MaxNicknameLen {
		return nil, fmt.Errorf("nickname too long: %w", ErrValidation)
	}
	return &AppUser{
		Email:     email,
		Password:  password,
		Nickname:  nickname,
		Provider:  "local",
		CreatedAt: time.Now(),
	}, nil
}
