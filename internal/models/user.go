package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `json:"display_name"`

	// NotificationsEnabled mirrors the client's notification permission.
	// The presenter suppresses (but still acknowledges) records for users
	// who have it switched off.
	NotificationsEnabled bool `gorm:"default:true" json:"notifications_enabled"`

	Messages []Message `gorm:"foreignKey:SenderID" json:"-"`
}

type UserResponse struct {
	ID                   uint   `json:"id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	DisplayName          string `json:"display_name"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		DisplayName:          u.DisplayName,
		NotificationsEnabled: u.NotificationsEnabled,
	}
}

// Name returns the best display label for notification records.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
