package models

import (
	"time"
)

const NotificationTypeChatMessage = "chat_message"

// NotificationRecord is a per-recipient pending notification created by
// message fan-out. Records are terminal: every path (presented,
// suppressed, or bulk-flushed by a group read) ends in deletion.
type NotificationRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	RecipientID uint      `gorm:"not null;index:idx_recipient_group,priority:1" json:"recipient_id"`

	Type      string `gorm:"type:varchar(32);not null;default:'chat_message'" json:"type"`
	GroupID   uint   `gorm:"not null;index:idx_recipient_group,priority:2" json:"group_id"`
	GroupName string `gorm:"size:100" json:"group_name"`

	SenderID   uint   `gorm:"not null" json:"sender_id"`
	SenderName string `json:"sender_name"`
	Message    string `gorm:"type:text" json:"message"`
}
